package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string      `json:"code"`              // 錯誤代碼
	Message string      `json:"message"`           // 錯誤信息
	Details interface{} `json:"details,omitempty"` // 詳細信息
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
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is 可以對包裝後的錯誤生效
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Code == e.Code
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

// Wrap 以預定義錯誤為基底包裝原始錯誤
func Wrap(base *CustomError, err error) *CustomError {
	return NewError(base.Code, base.Message, base.Status, err)
}

// AsCustomError 取出錯誤鏈中的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
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

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeConflict         = "CONFLICT"           // 409
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503

	// 業務錯誤
	ErrCodeInsufficientInventory  = "INSUFFICIENT_INVENTORY"
	ErrCodeDuplicateBookmark      = "DUPLICATE_BOOKMARK"
	ErrCodeInvalidUnit            = "INVALID_UNIT"
	ErrCodeInvalidBackupFile      = "INVALID_BACKUP_FILE"
	ErrCodeExternalServiceFailure = "EXTERNAL_SERVICE_FAILURE"
	ErrCodeNothingToLearn         = "NOTHING_TO_LEARN"
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)

	ErrInsufficientInventory  = NewError(ErrCodeInsufficientInventory, "材料が足りません", http.StatusUnprocessableEntity, nil)
	ErrDuplicateBookmark      = NewError(ErrCodeDuplicateBookmark, "このレシピは既にブックマークされています。", http.StatusConflict, nil)
	ErrInvalidUnit            = NewError(ErrCodeInvalidUnit, "「その他」を選択した場合は単位を入力してください。", http.StatusBadRequest, nil)
	ErrInvalidBackupFile      = NewError(ErrCodeInvalidBackupFile, "無効なバックアップファイルです。", http.StatusBadRequest, nil)
	ErrExternalServiceFailure = NewError(ErrCodeExternalServiceFailure, "AI サービスの呼び出しに失敗しました。", http.StatusServiceUnavailable, nil)

	// ErrNothingToLearn 不是錯誤狀態，僅提示使用者尚無評價紀錄
	ErrNothingToLearn = NewError(ErrCodeNothingToLearn, "評価済みの履歴がありません。", http.StatusOK, nil)
)
