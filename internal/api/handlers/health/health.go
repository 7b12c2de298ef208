package health

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pingTimeout 單一依賴檢查的逾時
const pingTimeout = 2 * time.Second

// Checker 可檢查連線狀態的依賴（MongoDB、Redis）
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc 讓普通函式成為 Checker
type CheckerFunc func(ctx context.Context) error

// Ping 實現 Checker
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// StatsProvider 提供快取統計
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Handler 健康檢查
type Handler struct {
	version  string
	checkers map[string]Checker
	stats    StatsProvider
}

// NewHandler 創建健康檢查處理器；stats 可為 nil
func NewHandler(version string, checkers map[string]Checker, stats StatsProvider) *Handler {
	return &Handler{version: version, checkers: checkers, stats: stats}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// 構建響應
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.stats != nil {
		response.Cache = h.stats.GetStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：逐一檢查外部依賴
func (h *Handler) ReadinessCheck(c *gin.Context) {
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		err := h.checkers[name].Ping(ctx)
		cancel()
		if err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			common.LogWarn("依賴檢查失敗", zap.String("dependency", name), zap.Error(err))
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
