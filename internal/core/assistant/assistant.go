// Package assistant 組出文字生成請求並解析回應為食譜、提案理由、營養分析與偏好摘要
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// DefaultServings 未指定時的份數
const DefaultServings = 2

// 請求用途
const (
	PurposeSuggest = "suggest"
	PurposeReason  = "reason"
	PurposeAnalyze = "analyze"
	PurposeSummary = "summary"
)

// Context 組 prompt 時需要的使用者資料
type Context struct {
	Ingredients       pantry.Inventory
	Allergies         pantry.Allergies
	History           journal.History
	PreferenceSummary string
	Profile           nutrition.Profile
	Now               time.Time
}

// Tags 提案的附加條件
type Tags struct {
	MealType      nutrition.MealType `json:"mealType"`
	Cuisine       string             `json:"cuisine"`
	CookingMethod string             `json:"cookingMethod"`
	TimeMinutes   int                `json:"time"`
}

// SuggestRequest 食譜提案條件
type SuggestRequest struct {
	Servings       int                `json:"servings"`
	Tags           Tags               `json:"tags"`
	CustomRequest  string             `json:"customRequest"`
	IgnoreFeedback bool               `json:"ignoreFeedback"`
	Rejected       *recipe.Suggestion `json:"rejectedRecipe,omitempty"`
}

func (r SuggestRequest) servings() int {
	if r.Servings <= 0 {
		return DefaultServings
	}
	return r.Servings
}

// Analysis 營養分析結果
type Analysis struct {
	NutritionValues nutrition.NutrientSet `json:"nutritionValues"`
	Impression      string                `json:"impression"`
	Suggestion      string                `json:"suggestion"`
}

// Assistant 文字生成的應用層包裝
type Assistant struct {
	gen ai.Generator
}

// New 建立 Assistant
func New(gen ai.Generator) *Assistant {
	return &Assistant{gen: gen}
}

// Suggest 依庫存與條件提案一道食譜
func (a *Assistant) Suggest(ctx context.Context, c Context, req SuggestRequest) (recipe.Suggestion, error) {
	if len(c.Ingredients) == 0 && strings.TrimSpace(req.CustomRequest) == "" {
		return recipe.Suggestion{}, common.NewValidationError("食材が登録されていません。自由リクエストに「トマトパスタ」など、作りたい料理を入力して提案を開始してください。")
	}

	resp, err := a.gen.Generate(ctx, &ai.Request{
		Purpose: PurposeSuggest,
		Prompt:  SuggestPrompt(c, req),
		Schema:  suggestionSchema,
	})
	if err != nil {
		return recipe.Suggestion{}, err
	}

	var s recipe.Suggestion
	if err := decodeObject(resp.Content, &s); err != nil {
		return recipe.Suggestion{}, err
	}
	if err := s.Validate(); err != nil {
		return recipe.Suggestion{}, common.Wrap(common.ErrExternalServiceFailure, err)
	}
	s.CustomRequestUsed = strings.TrimSpace(req.CustomRequest)
	return s, nil
}

// Reason 產生提案理由
func (a *Assistant) Reason(ctx context.Context, c Context, s recipe.Suggestion, ignoreFeedback bool) (string, error) {
	resp, err := a.gen.Generate(ctx, &ai.Request{
		Purpose:   PurposeReason,
		Prompt:    ReasonPrompt(c, s, ignoreFeedback),
		Cacheable: true,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// Analyze 分析食譜的營養並給出建議
func (a *Assistant) Analyze(ctx context.Context, c Context, s recipe.Suggestion) (Analysis, error) {
	resp, err := a.gen.Generate(ctx, &ai.Request{
		Purpose:   PurposeAnalyze,
		Prompt:    AnalysisPrompt(c, s),
		Schema:    analysisSchema,
		Cacheable: true,
	})
	if err != nil {
		return Analysis{}, err
	}

	var analysis Analysis
	if err := decodeObject(resp.Content, &analysis); err != nil {
		return Analysis{}, err
	}
	if analysis.NutritionValues == nil {
		return Analysis{}, common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("analysis is missing nutritionValues"))
	}
	return analysis, nil
}

// Summarize 將評價整理成偏好摘要
func (a *Assistant) Summarize(ctx context.Context, d journal.Digest) (string, error) {
	resp, err := a.gen.Generate(ctx, &ai.Request{
		Purpose: PurposeSummary,
		Prompt:  SummaryPrompt(d),
	})
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("empty summary"))
	}
	return summary, nil
}

// decodeObject 取出回應中的 JSON 物件，容許前後夾雜文字或 code fence
func decodeObject(content string, v interface{}) error {
	raw := common.ExtractJSONObject(content)
	if !strings.HasPrefix(raw, "{") {
		return common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("response contains no JSON object"))
	}
	if err := common.ParseJSON(raw, v); err != nil {
		// 模型偶爾輸出未加引號的鍵
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(raw), v); retryErr != nil {
			return common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("failed to parse response: %w", err))
		}
	}
	return nil
}
