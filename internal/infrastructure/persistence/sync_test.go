package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/state"
)

const prefix = "recipeApp-"

func TestLoadEmptyBackendUsesDefaults(t *testing.T) {
	s, err := Load(context.Background(), NewMemoryBackend(), prefix, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.UserProfile != nutrition.DefaultProfile() || len(s.Ingredients) != 0 {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestLoadSkipsCorruptBucket(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	_ = backend.Set(ctx, prefix+"ingredients", []byte(`{not json`))
	_ = backend.Set(ctx, prefix+"allergies", []byte(`[{"id":"a1","name":"えび"}]`))

	s, err := Load(ctx, backend, prefix, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(s.Ingredients) != 0 {
		t.Errorf("corrupt bucket should fall back to default, got %+v", s.Ingredients)
	}
	if len(s.Allergies) != 1 || s.Allergies[0].Name != "えび" {
		t.Errorf("unexpected allergies %+v", s.Allergies)
	}
}

func TestLoadResetsProfileOutsideTable(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	_ = backend.Set(ctx, prefix+"userProfile", []byte(`{"gender":"male","age":"20-29"}`))

	s, err := Load(ctx, backend, prefix, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.UserProfile != nutrition.DefaultProfile() {
		t.Fatalf("expected default profile, got %+v", s.UserProfile)
	}
	// 預設設定一定能取得基準值
	if ref := nutrition.DefaultTable().DailyReference(s.UserProfile.Gender, s.UserProfile.Age); len(ref) == 0 {
		t.Error("expected a daily reference for the restored profile")
	}
}

func TestPersisterWritesChangedBucketsSorted(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	p := NewPersister(backend, prefix)

	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := state.Default()
	s.History = journal.History{
		{Suggestion: recipe.Suggestion{RecipeName: "古い"}, ID: "old", CreatedAt: t0},
		{Suggestion: recipe.Suggestion{RecipeName: "新しい"}, ID: "new", CreatedAt: t0.Add(time.Hour)},
	}
	s.Ingredients = pantry.Inventory{{ID: "i1", Name: "卵", Quantity: 1, Unit: "個"}}

	p.Listener()(s, []state.Bucket{state.BucketHistory})

	if _, err := backend.Get(ctx, prefix+"ingredients"); err != ErrNotFound {
		t.Errorf("unchanged bucket should not be written, got %v", err)
	}
	data, err := backend.Get(ctx, prefix+"history")
	if err != nil {
		t.Fatalf("history not written: %v", err)
	}
	var stored []map[string]interface{}
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("invalid history JSON: %v", err)
	}
	if len(stored) != 2 || stored[0]["id"] != "new" {
		t.Errorf("history should be stored newest first, got %v", stored)
	}
}

func TestRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	initial, err := Load(ctx, backend, prefix, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	store := state.NewStore(initial, 8)
	store.Subscribe(NewPersister(backend, prefix).Listener())
	store.Start()

	err = store.Update(ctx, func(st *state.State) error {
		if _, err := st.Ingredients.Add("豆腐", 1, "丁"); err != nil {
			return err
		}
		st.UserProfile = nutrition.Profile{Gender: nutrition.Female, Age: nutrition.Age65To74}
		return nil
	})
	store.Close()
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reloaded, err := Load(ctx, backend, prefix, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reloaded.Ingredients) != 1 || reloaded.Ingredients[0].Name != "豆腐" {
		t.Errorf("ingredients not persisted: %+v", reloaded.Ingredients)
	}
	if reloaded.UserProfile.Age != nutrition.Age65To74 {
		t.Errorf("profile not persisted: %+v", reloaded.UserProfile)
	}
}
