// Package recipe 食譜提案、製作與營養評估的 API 處理器
package recipe

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/assistant"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/planner"
	recipeCore "meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// Handler 食譜處理器
type Handler struct {
	planner *planner.Planner
}

// NewHandler 建立食譜處理器
func NewHandler(p *planner.Planner) *Handler {
	return &Handler{planner: p}
}

// ReasonRequest 提案理由請求
type ReasonRequest struct {
	Recipe         recipeCore.Suggestion `json:"recipe"`
	IgnoreFeedback bool                  `json:"ignoreFeedback"`
}

// EvaluateRequest 未提供 nutritionValues 時使用食譜本身的數值
type EvaluateRequest struct {
	Recipe          *recipeCore.Suggestion `json:"recipe"`
	NutritionValues nutrition.NutrientSet  `json:"nutritionValues"`
	MealType        nutrition.MealType     `json:"mealType"`
}

// Suggest POST /recipes/suggest
func (h *Handler) Suggest(c *gin.Context) {
	var req assistant.SuggestRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理食譜提案請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("servings", req.Servings),
		zap.Bool("ignore_feedback", req.IgnoreFeedback),
		zap.Bool("retry", req.Rejected != nil),
	)

	s, err := h.planner.Suggest(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Reason POST /recipes/reason
func (h *Handler) Reason(c *gin.Context) {
	var req ReasonRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	reason, err := h.planner.Reason(c.Request.Context(), req.Recipe, req.IgnoreFeedback)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reason": reason})
}

// Analyze POST /recipes/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req recipeCore.Suggestion
	if !handlers.BindJSON(c, &req) {
		return
	}
	res, err := h.planner.Analyze(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Make POST /recipes/make
func (h *Handler) Make(c *gin.Context) {
	var req recipeCore.Suggestion
	if !handlers.BindJSON(c, &req) {
		return
	}
	item, err := h.planner.MakeRecipe(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ShoppingList POST /recipes/shopping-list
func (h *Handler) ShoppingList(c *gin.Context) {
	var req recipeCore.Suggestion
	if !handlers.BindJSON(c, &req) {
		return
	}
	added, err := h.planner.AddToShoppingList(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// Evaluate POST /recipes/evaluate
func (h *Handler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	values, mealType := req.NutritionValues, req.MealType
	if req.Recipe != nil {
		if values == nil {
			values = req.Recipe.NutritionValues
		}
		if mealType == "" {
			mealType = req.Recipe.MealType
		}
	}
	if values == nil {
		handlers.RespondError(c, common.NewValidationError("nutritionValues is required"))
		return
	}
	c.JSON(http.StatusOK, h.planner.Evaluate(values, mealType))
}
