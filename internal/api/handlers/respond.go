// Package handlers 放置各 API 處理器共用的回應與參數解析工具。
package handlers

import (
	"strconv"
	"strings"

	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID；未經 requestid 中間件時自行產生
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// RespondError 依錯誤種類輸出 ErrorResponse
func RespondError(c *gin.Context, requestID string, err error) {
	ce := common.ToCustomError(err)
	_ = c.Error(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無法完成", fields...)
	}

	resp := common.ErrorResponse{Code: ce.Code, Message: ce.Message}
	if gin.IsDebugging() && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}

// RespondBadRequest 請求格式錯誤
func RespondBadRequest(c *gin.Context, requestID string, err error) {
	RespondError(c, requestID, common.NewValidationErrorf("invalid request: %v", err))
}

// QueryInt 解析整數查詢參數，缺少時回傳 def
func QueryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationErrorf("query parameter %s must be an integer", key)
	}
	return v, nil
}

// QueryBool 解析布林查詢參數；缺少時回傳 nil
func QueryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, common.NewValidationErrorf("query parameter %s must be a boolean", key)
	}
	return &v, nil
}

// QueryList 支援重複參數與逗號分隔兩種寫法
func QueryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
