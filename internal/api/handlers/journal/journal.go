// Package journal 評價、歷史、書籤與偏好學習的 API 處理器
package journal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"meal-planner/internal/api/handlers"
	journalCore "meal-planner/internal/core/journal"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// Handler 歷史與書籤處理器
type Handler struct {
	planner *planner.Planner
}

// NewHandler 建立處理器
func NewHandler(p *planner.Planner) *Handler {
	return &Handler{planner: p}
}

// RateRequest 評價請求
type RateRequest struct {
	Recipe   recipe.Suggestion    `json:"recipe"`
	Feedback journalCore.Feedback `json:"feedback"`
}

// Rate POST /history/rate
func (h *Handler) Rate(c *gin.Context) {
	var req RateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	if req.Feedback == journalCore.FeedbackNone {
		handlers.RespondError(c, common.NewValidationError("feedback is required"))
		return
	}
	res, err := h.planner.Rate(c.Request.Context(), req.Recipe, req.Feedback)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RemoveHistory DELETE /history/:id
func (h *Handler) RemoveHistory(c *gin.Context) {
	removed, err := h.planner.RemoveHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// AddBookmark POST /bookmarks
func (h *Handler) AddBookmark(c *gin.Context) {
	var req recipe.Suggestion
	if !handlers.BindJSON(c, &req) {
		return
	}
	bm, err := h.planner.AddBookmark(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bm)
}

// RemoveBookmark DELETE /bookmarks/:id
func (h *Handler) RemoveBookmark(c *gin.Context) {
	removed, err := h.planner.RemoveBookmark(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Learn POST /preferences/learn
func (h *Handler) Learn(c *gin.Context) {
	summary, err := h.planner.Learn(c.Request.Context())
	if errors.Is(err, common.ErrNothingToLearn) {
		c.JSON(http.StatusOK, gin.H{"learned": false, "message": common.ErrNothingToLearn.Message})
		return
	}
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"learned": true, "summary": summary})
}
