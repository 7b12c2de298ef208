package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger 請求完成後依狀態碼分級記錄一行存取日誌
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		logAccess(status)("請求完成", fields...)
	}
}

// logAccess 5xx 為 error，4xx 為 warn，其餘為 info
func logAccess(status int) func(string, ...zap.Field) {
	switch {
	case status >= http.StatusInternalServerError:
		return common.LogError
	case status >= http.StatusBadRequest:
		return common.LogWarn
	default:
		return common.LogInfo
	}
}

// Recovery 攔截 panic，回傳 500 ErrorResponse
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			common.LogError("Panic recovered",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
				Code:    common.ErrCodeInternalError,
				Message: "Internal server error",
			})
		}()
		c.Next()
	}
}
