package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

type fakeGenerator struct {
	content string
	err     error
	last    *ai.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req *ai.Request) (*ai.Response, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Response{Content: f.content}, nil
}

const suggestionJSON = `{
  "recipeName": "トマトと卵の炒め物",
  "description": "ふんわり卵",
  "mealType": "主菜",
  "servings": 2,
  "timeRequired": 15,
  "usedIngredients": [{"name": "卵", "displayText": "2個", "baseQuantity": 2, "baseUnit": "個"}],
  "additionalIngredients": [],
  "instructions": ["卵を溶く", "炒める"],
  "nutritionValues": {"calories": 320, "protein": 18}
}`

func testContext() Context {
	return Context{
		Ingredients: pantry.Inventory{
			{ID: "1", Name: "卵", Quantity: 4, Unit: "個", MustUse: true},
			{ID: "2", Name: "トマト", Quantity: 2.5, Unit: "個"},
		},
		Allergies: pantry.Allergies{{ID: "a", Name: "えび"}},
		History: journal.History{
			{Suggestion: recipe.Suggestion{RecipeName: "カレー", NutritionValues: nutrition.NutrientSet{"calories": 700}}, Feedback: journal.FeedbackGood},
			{Suggestion: recipe.Suggestion{RecipeName: "焼き魚"}, Feedback: journal.FeedbackBad},
		},
		PreferenceSummary: "和食が好き",
		Profile:           nutrition.DefaultProfile(),
		Now:               time.Date(2024, 7, 1, 19, 0, 0, 0, time.Local),
	}
}

func TestSuggestParsesResponse(t *testing.T) {
	gen := &fakeGenerator{content: "```json\n" + suggestionJSON + "\n```"}
	a := New(gen)

	s, err := a.Suggest(context.Background(), testContext(), SuggestRequest{CustomRequest: " さっぱり "})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if s.RecipeName != "トマトと卵の炒め物" || s.MealType != nutrition.MealMain || s.Servings != 2 {
		t.Errorf("unexpected suggestion %+v", s)
	}
	if s.CustomRequestUsed != "さっぱり" {
		t.Errorf("CustomRequestUsed = %q", s.CustomRequestUsed)
	}
	if gen.last.Schema == nil || gen.last.Purpose != PurposeSuggest || gen.last.Cacheable {
		t.Errorf("unexpected request %+v", gen.last)
	}
}

func TestSuggestRequiresIngredientsOrRequest(t *testing.T) {
	gen := &fakeGenerator{content: suggestionJSON}
	c := testContext()
	c.Ingredients = nil
	if _, err := New(gen).Suggest(context.Background(), c, SuggestRequest{}); !common.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gen.last != nil {
		t.Error("generator should not be called")
	}
}

func TestSuggestRejectsIncompleteResponse(t *testing.T) {
	for _, content := range []string{`{"recipeName": "x"}`, `not json at all`, ``} {
		gen := &fakeGenerator{content: content}
		_, err := New(gen).Suggest(context.Background(), testContext(), SuggestRequest{})
		if !errors.Is(err, common.ErrExternalServiceFailure) {
			t.Errorf("content %q: expected ErrExternalServiceFailure, got %v", content, err)
		}
	}
}

func TestSuggestPropagatesGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: common.ErrExternalServiceFailure}
	_, err := New(gen).Suggest(context.Background(), testContext(), SuggestRequest{})
	if !errors.Is(err, common.ErrExternalServiceFailure) {
		t.Fatalf("expected ErrExternalServiceFailure, got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{content: `{"nutritionValues":{"calories":300,"iron":2.1},"impression":"良い","suggestion":"サラダ"}`}
	analysis, err := New(gen).Analyze(context.Background(), testContext(), recipe.Suggestion{RecipeName: "炒め物"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analysis.NutritionValues["iron"] != 2.1 || analysis.Impression != "良い" {
		t.Errorf("unexpected analysis %+v", analysis)
	}
	if !gen.last.Cacheable {
		t.Error("analysis requests should be cacheable")
	}

	gen.content = `{"impression":"x","suggestion":"y"}`
	if _, err := New(gen).Analyze(context.Background(), testContext(), recipe.Suggestion{}); !errors.Is(err, common.ErrExternalServiceFailure) {
		t.Errorf("expected missing nutrition to fail, got %v", err)
	}
}

func TestReasonAndSummarize(t *testing.T) {
	gen := &fakeGenerator{content: "  旬の食材です。 "}
	reason, err := New(gen).Reason(context.Background(), testContext(), recipe.Suggestion{RecipeName: "冷やし中華"}, false)
	if err != nil || reason != "旬の食材です。" {
		t.Fatalf("Reason() = %q, %v", reason, err)
	}

	gen.content = "   "
	if _, err := New(gen).Summarize(context.Background(), journal.Digest{}); !errors.Is(err, common.ErrExternalServiceFailure) {
		t.Errorf("expected empty summary to fail, got %v", err)
	}
}

func TestSuggestPromptSections(t *testing.T) {
	c := testContext()
	rejected := recipe.Suggestion{RecipeName: "麻婆豆腐", Description: "辛い"}
	prompt := SuggestPrompt(c, SuggestRequest{
		Servings:      3,
		Tags:          Tags{MealType: nutrition.MealSoup, TimeMinutes: 20},
		CustomRequest: "子供向け",
		Rejected:      &rejected,
	})

	for _, want := range []string{
		"3人前",
		"アレルギー食材 (えび)",
		"[卵 (4個)]",
		"[トマト (2.5個)]",
		"現在は夏の夜です",
		"和食が好き",
		`"calories": 700`,
		"種類: 汁物, 調理時間: 20分以内",
		"「子供向け」",
		"- レシピ名: 麻婆豆腐",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
	if strings.Contains(prompt, "主食に関する注意") {
		t.Error("staple note applies only to main dishes")
	}
}

func TestSuggestPromptIgnoreFeedback(t *testing.T) {
	prompt := SuggestPrompt(testContext(), SuggestRequest{IgnoreFeedback: true})
	for _, unwanted := range []string{"和食が好き", "栄養バランスの考慮", "現在は"} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("ignore-feedback prompt should not contain %q", unwanted)
		}
	}
	if !strings.Contains(prompt, "2人前") {
		t.Error("expected default servings")
	}
}

func TestAnalysisAndSummaryPrompts(t *testing.T) {
	c := testContext()
	prompt := AnalysisPrompt(c, recipe.Suggestion{
		RecipeName:      "卵焼き",
		MealType:        nutrition.MealSide,
		UsedIngredients: []recipe.IngredientRef{{Name: "卵", DisplayText: "2個"}},
	})
	for _, want := range []string{"男性, 30-49歳", "好みました: [カレー]", "好みませんでした: [焼き魚]", "1人前", "材料: 卵 2個"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("analysis prompt is missing %q", want)
		}
	}

	summary := SummaryPrompt(journal.Digest{Liked: []string{"カレー"}, SuccessfulRequests: []string{"辛め"}})
	for _, want := range []string{"好んだレシピ: [カレー]", "好まなかったレシピ: [なし]", "[「辛め」]"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary prompt is missing %q", want)
		}
	}
}

func TestSeasonAndTimeOfDay(t *testing.T) {
	seasons := map[time.Month]string{time.January: "冬", time.March: "春", time.August: "夏", time.November: "秋", time.December: "冬"}
	for m, want := range seasons {
		if got := Season(time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)); got != want {
			t.Errorf("Season(%v) = %s, want %s", m, got, want)
		}
	}
	hours := map[int]string{4: "夜", 5: "朝", 10: "朝", 11: "昼", 15: "昼", 16: "夜"}
	for h, want := range hours {
		if got := TimeOfDay(time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC)); got != want {
			t.Errorf("TimeOfDay(%d) = %s, want %s", h, got, want)
		}
	}
}
