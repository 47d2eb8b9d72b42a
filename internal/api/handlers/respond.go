// Package handlers 提供各 API 處理器共用的請求解析與錯誤回應
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/pantry"
	"meal-planner/internal/pkg/common"
)

// BindJSON 解析 JSON 本文，失敗時直接回應 400 或 413
func BindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
			zap.String("path", c.Request.URL.Path),
		)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(status, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: common.ErrInvalidRequest.Message,
			Details: err.Error(),
		})
		return false
	}
	return true
}

// RespondError 將錯誤轉為 {code, message, details} 回應
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, body := errorBody(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", body.Code),
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求被拒絕", fields...)
	}

	c.AbortWithStatusJSON(status, body)
}

func errorBody(err error) (int, common.ErrorResponse) {
	var insufficient *pantry.InsufficientInventoryError
	if errors.As(err, &insufficient) {
		return common.ErrInsufficientInventory.Status, common.ErrorResponse{
			Code:    common.ErrCodeInsufficientInventory,
			Message: common.ErrInsufficientInventory.Message,
			Details: gin.H{"missing": insufficient.Missing},
		}
	}

	if ce, ok := common.AsCustomError(err); ok {
		resp := common.ErrorResponse{Code: ce.Code, Message: ce.Message}
		if ce.Err != nil && ce.Status < http.StatusInternalServerError {
			resp.Details = ce.Err.Error()
		}
		return ce.Status, resp
	}

	if common.IsValidationError(err) {
		return http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: common.ErrInternalError.Message,
	}
}
