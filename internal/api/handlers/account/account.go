// Package account 全部資料、個人設定與備份的 API 處理器
package account

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/state"
	"meal-planner/internal/pkg/common"
)

// Handler 資料與設定處理器
type Handler struct {
	planner *planner.Planner
	now     func() time.Time
}

// NewHandler 建立處理器
func NewHandler(p *planner.Planner) *Handler {
	return &Handler{planner: p, now: time.Now}
}

// StateResponse 目前的全部資料
type StateResponse struct {
	state.Backup
	PendingRestock *pantry.Move `json:"pendingRestock"`
}

// GetState GET /state
func (h *Handler) GetState(c *gin.Context) {
	resp := StateResponse{Backup: state.Export(h.planner.Snapshot())}
	if move, ok := h.planner.PendingRestock(); ok {
		resp.PendingRestock = &move
	}
	c.JSON(http.StatusOK, resp)
}

// Options GET /options
func (h *Handler) Options(c *gin.Context) {
	table := h.planner.Table()
	ages := gin.H{}
	for _, g := range []nutrition.Gender{nutrition.Male, nutrition.Female} {
		ages[string(g)] = table.AgeBuckets(g)
	}
	c.JSON(http.StatusOK, gin.H{
		"units":      append(append([]string{}, pantry.UnitOptions...), pantry.OtherUnit),
		"ageBuckets": ages,
		"mealTypes":  table.MealTypeCorrection,
		"nutrients":  table.Nutrients,
	})
}

// SetProfile PUT /profile
func (h *Handler) SetProfile(c *gin.Context) {
	var req nutrition.Profile
	if !handlers.BindJSON(c, &req) {
		return
	}
	if err := h.planner.SetProfile(c.Request.Context(), req); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Export GET /backup
func (h *Handler) Export(c *gin.Context) {
	data, err := h.planner.Export()
	if err != nil {
		handlers.RespondError(c, common.Wrap(common.ErrInternalError, err))
		return
	}
	filename := fmt.Sprintf("ai-recipe-backup-%s.json", h.now().UTC().Format("2006-01-02_15-04-05"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import POST /backup
func (h *Handler) Import(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		handlers.RespondError(c, common.Wrap(common.ErrInvalidRequest, err))
		return
	}
	if err := h.planner.Import(c.Request.Context(), data); err != nil {
		handlers.RespondError(c, err)
		return
	}
	common.LogInfo("備份已還原", zap.Int("bytes", len(data)))
	c.JSON(http.StatusOK, gin.H{"imported": true})
}
