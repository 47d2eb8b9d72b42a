// Package recipe 定義文字生成服務提案的食譜結構
package recipe

import (
	"fmt"
	"math"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// IngredientRef 食譜對單一食材的使用量。
// BaseQuantity/BaseUnit 與庫存單位可比較，DisplayText 是給人看的份量
type IngredientRef struct {
	Name         string  `json:"name"`
	DisplayText  string  `json:"displayText"`
	BaseQuantity float64 `json:"baseQuantity"`
	BaseUnit     string  `json:"baseUnit"`
}

// Suggestion 文字生成服務回傳的食譜提案
type Suggestion struct {
	RecipeName            string                `json:"recipeName"`
	Description           string                `json:"description"`
	MealType              nutrition.MealType    `json:"mealType"`
	Servings              float64               `json:"servings"`
	TimeRequired          float64               `json:"timeRequired"`
	UsedIngredients       []IngredientRef       `json:"usedIngredients"`
	AdditionalIngredients []IngredientRef       `json:"additionalIngredients"`
	Instructions          []string              `json:"instructions"`
	NutritionValues       nutrition.NutrientSet `json:"nutritionValues"`
	SuggestionReason      string                `json:"suggestionReason,omitempty"`
	CustomRequestUsed     string                `json:"customRequestUsed,omitempty"`
}

// AllIngredients 手持食材與追加食材，依宣告順序
func (s Suggestion) AllIngredients() []IngredientRef {
	all := make([]IngredientRef, 0, len(s.UsedIngredients)+len(s.AdditionalIngredients))
	all = append(all, s.UsedIngredients...)
	return append(all, s.AdditionalIngredients...)
}

// ServingsOrDefault 未提供份數時視為 1 人份
func (s Suggestion) ServingsOrDefault() float64 {
	if s.Servings <= 0 {
		return 1
	}
	return s.Servings
}

// Validate 檢查提案是否具備必要欄位
func (s Suggestion) Validate() error {
	switch {
	case s.RecipeName == "":
		return errMissing("recipeName")
	case s.UsedIngredients == nil:
		return errMissing("usedIngredients")
	case s.AdditionalIngredients == nil:
		return errMissing("additionalIngredients")
	case s.Instructions == nil:
		return errMissing("instructions")
	case s.NutritionValues == nil:
		return errMissing("nutritionValues")
	}
	return s.ValidateQuantities()
}

// ValidateQuantities 用量不可為負數
func (s Suggestion) ValidateQuantities() error {
	for _, ref := range s.AllIngredients() {
		if ref.BaseQuantity < 0 || math.IsNaN(ref.BaseQuantity) || math.IsInf(ref.BaseQuantity, 0) {
			return common.NewValidationError(fmt.Sprintf("invalid baseQuantity for %s", ref.Name))
		}
	}
	return nil
}
