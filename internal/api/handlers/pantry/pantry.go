// Package pantry 食材、過敏原與購物清單的 API 處理器
package pantry

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/planner"
)

// Handler 食材處理器
type Handler struct {
	planner *planner.Planner
}

// NewHandler 建立食材處理器
func NewHandler(p *planner.Planner) *Handler {
	return &Handler{planner: p}
}

// AddIngredient POST /ingredients
func (h *Handler) AddIngredient(c *gin.Context) {
	var req planner.AddIngredientInput
	if !handlers.BindJSON(c, &req) {
		return
	}
	ing, err := h.planner.AddIngredient(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

// UpdateIngredient PATCH /ingredients/:id
func (h *Handler) UpdateIngredient(c *gin.Context) {
	var req planner.UpdateIngredientInput
	if !handlers.BindJSON(c, &req) {
		return
	}
	ing, found, err := h.planner.UpdateIngredient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "ingredient": ing})
}

// RemoveIngredient DELETE /ingredients/:id
func (h *Handler) RemoveIngredient(c *gin.Context) {
	removed, err := h.planner.RemoveIngredient(c.Request.Context(), c.Param("id"))
	respondRemoved(c, removed, err)
}

// ToggleMustUse POST /ingredients/:id/must-use
func (h *Handler) ToggleMustUse(c *gin.Context) {
	ing, found, err := h.planner.ToggleMustUse(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "ingredient": ing})
}

// AddAllergy POST /allergies
func (h *Handler) AddAllergy(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if !handlers.BindJSON(c, &req) {
		return
	}
	allergy, err := h.planner.AddAllergy(c.Request.Context(), req.Name)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, allergy)
}

// RemoveAllergy DELETE /allergies/:id
func (h *Handler) RemoveAllergy(c *gin.Context) {
	removed, err := h.planner.RemoveAllergy(c.Request.Context(), c.Param("id"))
	respondRemoved(c, removed, err)
}

// RemoveShoppingEntry DELETE /shopping-list/:id
func (h *Handler) RemoveShoppingEntry(c *gin.Context) {
	removed, err := h.planner.RemoveShoppingEntry(c.Request.Context(), c.Param("id"))
	respondRemoved(c, removed, err)
}

// Restock POST /shopping-list/:id/restock
func (h *Handler) Restock(c *gin.Context) {
	move, moved, err := h.planner.Restock(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if !moved {
		c.JSON(http.StatusOK, gin.H{"moved": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": true, "move": move})
}

// UndoRestock POST /shopping-list/restock/undo
func (h *Handler) UndoRestock(c *gin.Context) {
	move, undone, err := h.planner.UndoRestock(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if !undone {
		c.JSON(http.StatusOK, gin.H{"undone": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": true, "move": move})
}

// 未知 id 視為成功的 no-op
func respondRemoved(c *gin.Context, removed bool, err error) {
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
