package nutrition

import "testing"

func TestEvaluateBoundaries(t *testing.T) {
	reference := NutrientSet{Calories: 100}
	tests := []struct {
		actual float64
		want   Band
	}{
		{131, BandExcess},
		{130, BandAdequate},
		{71, BandAdequate},
		{70, BandDeficient},
		{0, BandDeficient},
	}
	for _, tt := range tests {
		bands := Evaluate(NutrientSet{Calories: tt.actual}, reference)
		if got := bands[Calories]; got != tt.want {
			t.Errorf("ratio %v: expected %s, got %s", tt.actual, tt.want, got)
		}
	}
}

func TestEvaluateSkipsAbsentNutrients(t *testing.T) {
	actual := NutrientSet{Calories: 900, Protein: 20}
	reference := NutrientSet{Calories: 900, Protein: 21.6, Zinc: 3.6}

	bands := Evaluate(actual, reference)
	if len(bands) != 2 {
		t.Fatalf("expected 2 bands, got %v", bands)
	}
	if _, ok := bands[Zinc]; ok {
		t.Error("zinc was absent from actual and must not be evaluated")
	}
}

func TestEvaluateSkipsNonPositiveReference(t *testing.T) {
	bands := Evaluate(NutrientSet{Salt: 1}, NutrientSet{Salt: 0})
	if len(bands) != 0 {
		t.Fatalf("expected no bands, got %v", bands)
	}
}

func TestEvaluateAcrossProfiles(t *testing.T) {
	table := DefaultTable()
	actual := NutrientSet{Calories: 800}

	male := Evaluate(actual, table.ScaledReference(Male, Age18To29, MealMain))
	if male[Calories] != BandAdequate {
		t.Errorf("expected adequate for young male main dish, got %s", male[Calories])
	}
	elderly := Evaluate(actual, table.ScaledReference(Female, Age75Plus, MealMain))
	if elderly[Calories] != BandExcess {
		t.Errorf("expected excess for 75+ female main dish, got %s", elderly[Calories])
	}
	side := Evaluate(actual, table.ScaledReference(Male, Age18To29, MealSide))
	if side[Calories] != BandExcess {
		t.Errorf("expected excess for a side dish, got %s", side[Calories])
	}
}

func TestAssessOrdersByTable(t *testing.T) {
	table := DefaultTable()
	actual := NutrientSet{Zinc: 3, Calories: 900, Salt: 2.5}

	rows := table.Assess(actual, DefaultProfile(), MealMain)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Key != Calories || rows[1].Key != Salt || rows[2].Key != Zinc {
		t.Errorf("unexpected order: %s, %s, %s", rows[0].Key, rows[1].Key, rows[2].Key)
	}
	if rows[0].Band != BandAdequate || rows[0].BandLabel != "適量" {
		t.Errorf("expected 900 kcal of 900 to be adequate, got %s", rows[0].Band)
	}
	if rows[1].Unit != "g" || rows[1].Label != "食塩相当量" {
		t.Errorf("unexpected salt metadata: %+v", rows[1])
	}
}

func TestAverage(t *testing.T) {
	avg := Average([]NutrientSet{
		{Calories: 600, Protein: 30},
		{Calories: 400},
	})
	if avg[Calories] != 500 {
		t.Errorf("expected 500 kcal, got %v", avg[Calories])
	}
	if avg[Protein] != 15 {
		t.Errorf("expected protein averaged over both meals (15), got %v", avg[Protein])
	}
	if Average(nil) != nil {
		t.Error("expected nil average for no meals")
	}
}
