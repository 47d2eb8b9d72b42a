package assistant

import (
	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/nutrition"
)

func numberProps(keys ...string) map[string]interface{} {
	props := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		props[k] = ai.Schema{"type": "NUMBER"}
	}
	return props
}

var ingredientSchema = ai.Schema{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"name":         ai.Schema{"type": "STRING"},
		"displayText":  ai.Schema{"type": "STRING"},
		"baseQuantity": ai.Schema{"type": "NUMBER"},
		"baseUnit":     ai.Schema{"type": "STRING"},
	},
	"required": []string{"name", "displayText", "baseQuantity", "baseUnit"},
}

// suggestionSchema 食譜提案只要求主要營養素
var suggestionSchema = ai.Schema{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"recipeName":  ai.Schema{"type": "STRING"},
		"description": ai.Schema{"type": "STRING"},
		"mealType": ai.Schema{
			"type":        "STRING",
			"description": "レシピの種類（主菜, 副菜, 汁物, デザートのいずれか）",
		},
		"servings":              ai.Schema{"type": "NUMBER"},
		"timeRequired":          ai.Schema{"type": "NUMBER"},
		"usedIngredients":       ai.Schema{"type": "ARRAY", "items": ingredientSchema},
		"additionalIngredients": ai.Schema{"type": "ARRAY", "items": ingredientSchema},
		"instructions":          ai.Schema{"type": "ARRAY", "items": ai.Schema{"type": "STRING"}},
		"nutritionValues": ai.Schema{
			"type":       "OBJECT",
			"properties": numberProps(nutrition.Calories, nutrition.Protein, nutrition.Fat, nutrition.Carbs, nutrition.Salt),
		},
	},
	"required": []string{
		"recipeName", "description", "mealType", "servings", "timeRequired",
		"usedIngredients", "additionalIngredients", "instructions", "nutritionValues",
	},
}

// analysisSchema 營養分析要求全部 13 種營養素
var analysisSchema = ai.Schema{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"nutritionValues": ai.Schema{
			"type": "OBJECT",
			"properties": numberProps(
				nutrition.Calories, nutrition.Protein, nutrition.Fat, nutrition.Carbs, nutrition.Salt,
				nutrition.VitaminA, nutrition.VitaminC, nutrition.VitaminD, nutrition.VitaminB6,
				nutrition.VitaminB12, nutrition.Calcium, nutrition.Iron, nutrition.Zinc,
			),
		},
		"impression": ai.Schema{"type": "STRING"},
		"suggestion": ai.Schema{"type": "STRING"},
	},
	"required": []string{"nutritionValues", "impression", "suggestion"},
}
