package nutrition

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDefaultTableCoversAllProfiles(t *testing.T) {
	table := DefaultTable()
	genders := []Gender{Male, Female}
	ages := []AgeBucket{Age18To29, Age30To49, Age50To64, Age65To74, Age75Plus}
	for _, g := range genders {
		for _, a := range ages {
			set, ok := table.Lookup(g, a)
			if !ok {
				t.Fatalf("missing reference for %s/%s", g, a)
			}
			if len(set) != 13 {
				t.Errorf("%s/%s: expected 13 nutrients, got %d", g, a, len(set))
			}
		}
	}
	if table.Version == "" {
		t.Error("expected a versioned table")
	}
}

func TestDailyReferenceValues(t *testing.T) {
	daily := DefaultTable().DailyReference(Female, Age50To64)
	if daily[Calories] != 1950 {
		t.Errorf("expected 1950 kcal, got %v", daily[Calories])
	}
	if daily[Iron] != 11.0 {
		t.Errorf("expected iron 11.0, got %v", daily[Iron])
	}
}

func TestDailyReferenceReturnsCopy(t *testing.T) {
	table := DefaultTable()
	daily := table.DailyReference(Male, Age30To49)
	daily[Calories] = 0
	if table.DailyReference(Male, Age30To49)[Calories] != 2700 {
		t.Fatal("mutating a returned reference changed the table")
	}
}

func TestDailyReferencePanicsOnUnknownProfile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown profile")
		}
	}()
	DefaultTable().DailyReference("other", Age30To49)
}

func TestScaledReference(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		mealType MealType
		factor   float64
	}{
		{MealMain, 1.0},
		{MealSide, 0.4},
		{MealSoup, 0.2},
		{MealDessert, 0.15},
		{"", 1.0},
		{"おやつ", 1.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.mealType), func(t *testing.T) {
			scaled := table.ScaledReference(Male, Age30To49, tt.mealType)
			want := 2700.0 / 3 * tt.factor
			if !almostEqual(scaled[Calories], want) {
				t.Errorf("expected %v kcal, got %v", want, scaled[Calories])
			}
			if !almostEqual(scaled[Salt], 7.5/3*tt.factor) {
				t.Errorf("expected salt %v, got %v", 7.5/3*tt.factor, scaled[Salt])
			}
		})
	}
}

func TestLoadTableRejectsIncompleteData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{`},
		{"no meals per day", `{"mealsPerDay":0,"nutrients":[{"key":"calories"}],"daily":{"male":{"18-29":{"calories":1}}}}`},
		{"missing nutrient", `{"mealsPerDay":3,"nutrients":[{"key":"calories"},{"key":"salt"}],"daily":{"male":{"18-29":{"calories":1}}}}`},
		{"no daily", `{"mealsPerDay":3,"nutrients":[{"key":"calories"}],"daily":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTable([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	table := DefaultTable()
	if err := table.ValidateProfile(DefaultProfile()); err != nil {
		t.Fatalf("default profile rejected: %v", err)
	}
	if err := table.ValidateProfile(Profile{Gender: Female, Age: "12-17"}); err == nil {
		t.Fatal("expected unknown age bucket to be rejected")
	}
}

func TestAgeBuckets(t *testing.T) {
	buckets := DefaultTable().AgeBuckets(Male)
	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets, got %v", buckets)
	}
	if buckets[0] != Age18To29 {
		t.Errorf("expected first bucket 18-29, got %s", buckets[0])
	}
}
