package common

import (
	"sync"

	"go.uber.org/zap"
)

// WarningKind 資料品質警告類型
type WarningKind string

const (
	WarnUnknownUnit        WarningKind = "unknown_unit"
	WarnUnknownNutrient    WarningKind = "unknown_nutrient"
	WarnMissingProfile     WarningKind = "missing_profile"
	WarnUnknownStatus      WarningKind = "unknown_status"
	WarnMealWithoutContent WarningKind = "meal_without_ingredients"
)

// Warning 非致命的資料品質訊號
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Ingredient string      `json:"ingredient,omitempty"`
	Value      string      `json:"value,omitempty"`
}

// WarningSink 接收資料品質警告
type WarningSink interface {
	Warn(w Warning)
}

// WarningFunc 讓普通函式成為 WarningSink
type WarningFunc func(Warning)

// Warn 實現 WarningSink
func (f WarningFunc) Warn(w Warning) { f(w) }

// LogSink 將警告寫入 zap 日誌
var LogSink WarningSink = WarningFunc(func(w Warning) {
	LogDataQuality(string(w.Kind),
		zap.String("ingredient", w.Ingredient),
		zap.String("value", w.Value),
	)
})

// Collector 收集警告，可同時轉送到下一個 sink
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
	next     WarningSink
}

// NewCollector 創建收集器；next 可為 nil
func NewCollector(next WarningSink) *Collector {
	return &Collector{next: next}
}

// Warn 實現 WarningSink
func (c *Collector) Warn(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
	if c.next != nil {
		c.next.Warn(w)
	}
}

// Warnings 回傳目前收集到的警告副本
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// SinkOrDefault nil 時回傳 LogSink
func SinkOrDefault(s WarningSink) WarningSink {
	if s == nil {
		return LogSink
	}
	return s
}
