package planner

import (
	"context"

	"meal-planner/internal/core/assistant"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

func (p *Planner) assistantContext() assistant.Context {
	snap := p.store.Snapshot()
	return assistant.Context{
		Ingredients:       snap.Ingredients,
		Allergies:         snap.Allergies,
		History:           snap.History,
		PreferenceSummary: snap.PreferenceSummary,
		Profile:           snap.UserProfile,
		Now:               p.now(),
	}
}

// Suggest 請求一道食譜提案
func (p *Planner) Suggest(ctx context.Context, req assistant.SuggestRequest) (recipe.Suggestion, error) {
	if p.assistant == nil {
		return recipe.Suggestion{}, common.ErrServiceUnavailable
	}
	return p.assistant.Suggest(ctx, p.assistantContext(), req)
}

// Reason 請求提案理由
func (p *Planner) Reason(ctx context.Context, s recipe.Suggestion, ignoreFeedback bool) (string, error) {
	if p.assistant == nil {
		return "", common.ErrServiceUnavailable
	}
	return p.assistant.Reason(ctx, p.assistantContext(), s, ignoreFeedback)
}

// AnalysisResult 營養分析與依個人設定的評估
type AnalysisResult struct {
	assistant.Analysis
	Evaluation Evaluation `json:"evaluation"`
}

// Analyze 請求營養分析，並以分析出的營養值評估
func (p *Planner) Analyze(ctx context.Context, s recipe.Suggestion) (AnalysisResult, error) {
	if p.assistant == nil {
		return AnalysisResult{}, common.ErrServiceUnavailable
	}
	analysis, err := p.assistant.Analyze(ctx, p.assistantContext(), s)
	if err != nil {
		return AnalysisResult{}, err
	}
	values := analysis.NutritionValues
	if len(values) == 0 {
		values = s.NutritionValues
	}
	return AnalysisResult{
		Analysis:   analysis,
		Evaluation: p.Evaluate(values, s.MealType),
	}, nil
}

// EvaluateRecipe 以食譜本身的營養值評估
func (p *Planner) EvaluateRecipe(s recipe.Suggestion) Evaluation {
	return p.Evaluate(s.NutritionValues, s.MealType)
}
