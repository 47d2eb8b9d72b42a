package journal

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/recipe"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func suggestion(name string) recipe.Suggestion {
	return recipe.Suggestion{
		RecipeName:            name,
		MealType:              nutrition.MealMain,
		UsedIngredients:       []recipe.IngredientRef{},
		AdditionalIngredients: []recipe.IngredientRef{},
		Instructions:          []string{"焼く"},
		NutritionValues:       nutrition.NutrientSet{nutrition.Calories: 500},
	}
}

func TestRateToggle(t *testing.T) {
	var h History
	item, created := h.Rate(suggestion("肉じゃが"), FeedbackGood, baseTime)
	if !created || item.Feedback != FeedbackGood || len(h) != 1 {
		t.Fatalf("first rate should create an entry, got %+v created=%v", h, created)
	}

	item, created = h.Rate(suggestion("肉じゃが"), FeedbackGood, baseTime)
	if created || item.Feedback != FeedbackNone || h[0].Feedback != FeedbackNone {
		t.Fatalf("same feedback twice should clear it, got %+v", h[0])
	}

	h.Rate(suggestion("肉じゃが"), FeedbackGood, baseTime)
	item, _ = h.Rate(suggestion("肉じゃが"), FeedbackBad, baseTime)
	if item.Feedback != FeedbackBad || len(h) != 1 {
		t.Errorf("different feedback should replace it, got %+v", h)
	}
}

func TestRateMatchesNormalizedNameMostRecent(t *testing.T) {
	var h History
	h.Record(suggestion("ハンバーグ"), baseTime)
	h.Record(suggestion("はんばーぐ "), baseTime.Add(time.Hour))

	_, created := h.Rate(suggestion("ハンバーグ"), FeedbackGreat, baseTime.Add(2*time.Hour))
	if created {
		t.Fatal("expected existing entry to be rated")
	}
	if h[0].Feedback != FeedbackGreat || h[1].Feedback != FeedbackNone {
		t.Errorf("expected most recent entry rated, got %v / %v", h[0].Feedback, h[1].Feedback)
	}
}

func TestRecordAndRemove(t *testing.T) {
	var h History
	first := h.Record(suggestion("カレー"), baseTime)
	second := h.Record(suggestion("シチュー"), baseTime.Add(time.Minute))
	if h[0].ID != second.ID || h[1].ID != first.ID {
		t.Fatalf("records must be prepended, got %+v", h)
	}
	if first.Feedback != FeedbackNone {
		t.Errorf("recorded entry should be unrated")
	}
	if !h.Remove(first.ID) || h.Remove(first.ID) {
		t.Error("expected exactly one successful remove")
	}
	if len(h) != 1 {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestSortedDesc(t *testing.T) {
	h := History{
		{ID: "old", CreatedAt: baseTime},
		{ID: "new", CreatedAt: baseTime.Add(2 * time.Hour)},
		{ID: "mid", CreatedAt: baseTime.Add(time.Hour)},
	}
	got := h.SortedDesc()
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	if !reflect.DeepEqual(ids, []string{"new", "mid", "old"}) {
		t.Errorf("SortedDesc() order = %v", ids)
	}
	if h[0].ID != "old" {
		t.Error("SortedDesc must not reorder the receiver")
	}
}

func TestRecentNutrientAverage(t *testing.T) {
	h := History{
		{Suggestion: recipe.Suggestion{NutritionValues: nutrition.NutrientSet{"calories": 600, "protein": 30}}},
		{Suggestion: recipe.Suggestion{}},
		{Suggestion: recipe.Suggestion{NutritionValues: nutrition.NutrientSet{"calories": 300}}},
		{Suggestion: recipe.Suggestion{NutritionValues: nutrition.NutrientSet{"calories": 900, "protein": 15}}},
		{Suggestion: recipe.Suggestion{NutritionValues: nutrition.NutrientSet{"calories": 10000}}},
	}
	avg := h.RecentNutrientAverage(RecentNutrientWindow)
	if avg["calories"] != 600 {
		t.Errorf("calories = %v, want 600", avg["calories"])
	}
	if avg["protein"] != 15 {
		t.Errorf("protein = %v, want 15", avg["protein"])
	}

	if got := (History{{}}).RecentNutrientAverage(RecentNutrientWindow); got != nil {
		t.Errorf("expected nil without nutrition values, got %v", got)
	}
}

func TestDigest(t *testing.T) {
	liked := suggestion("親子丼")
	liked.CustomRequestUsed = "さっぱり"
	h := History{
		{Suggestion: liked, Feedback: FeedbackGreat},
		{Suggestion: suggestion("麻婆豆腐"), Feedback: FeedbackBad},
		{Suggestion: suggestion("焼き魚"), Feedback: FeedbackGood},
		{Suggestion: suggestion("サラダ")},
	}
	d := h.Digest()
	if !reflect.DeepEqual(d.Liked, []string{"親子丼", "焼き魚"}) {
		t.Errorf("Liked = %v", d.Liked)
	}
	if !reflect.DeepEqual(d.Disliked, []string{"麻婆豆腐"}) {
		t.Errorf("Disliked = %v", d.Disliked)
	}
	if !reflect.DeepEqual(d.SuccessfulRequests, []string{"さっぱり"}) {
		t.Errorf("SuccessfulRequests = %v", d.SuccessfulRequests)
	}
}

func TestHistoryItemJSON(t *testing.T) {
	item := HistoryItem{Suggestion: suggestion("カレー"), ID: "h1", CreatedAt: baseTime}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"feedback":null`, `"recipeName":"カレー"`, `"createdAt":"2024-05-01T12:00:00Z"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}

	var decoded HistoryItem
	if err := json.Unmarshal([]byte(`{"id":"h2","recipeName":"丼","feedback":"great","createdAt":"2024-05-01T12:00:00Z"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Feedback != FeedbackGreat || decoded.RecipeName != "丼" {
		t.Errorf("unexpected decoded item %+v", decoded)
	}
	if err := json.Unmarshal([]byte(`{"feedback":"meh"}`), &decoded); err == nil {
		t.Error("expected unknown feedback to be rejected")
	}
}
