package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// NewValidationErrorf 以格式字串創建驗證錯誤
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrCollaboratorUnavailable 外部資料來源（資料庫、快取、遠端目錄）無法使用
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ErrNoCandidates 沒有可推薦的餐點
var ErrNoCandidates = errors.New("no candidate meals available")

// CollaboratorError 外部查詢失敗，引擎本身不重試
type CollaboratorError struct {
	Source string
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
}

// Unwrap 回傳原始錯誤
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is(err, ErrCollaboratorUnavailable) 成立
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

// NewCollaboratorError 包裝外部查詢錯誤
func NewCollaboratorError(source string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Source: source, Err: err}
}

// IsCollaboratorError 檢查是否為外部查詢錯誤
func IsCollaboratorError(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)

	// 業務錯誤
	ErrCacheFull     = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled = NewError("CACHE_DISABLED", "緩存已禁用", http.StatusServiceUnavailable, nil)
	ErrMealNotFound  = NewError("MEAL_NOT_FOUND", "餐點不存在", http.StatusNotFound, nil)
)

// ToCustomError 將引擎錯誤對應到 API 錯誤
func ToCustomError(err error) *CustomError {
	var ce *CustomError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return ce
	case IsValidationError(err):
		return NewError(ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest, err)
	case IsCollaboratorError(err):
		return NewError(ErrCodeServiceUnavailable, "資料來源暫時不可用", http.StatusServiceUnavailable, err)
	case errors.Is(err, ErrNoCandidates):
		return NewError(ErrCodeNotFound, "no suggestions available", http.StatusNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrCodeGatewayTimeout, "請求逾時", http.StatusGatewayTimeout, err)
	default:
		return NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, err)
	}
}
