// Package nutrition 提供每日營養攝取基準表與每份營養素的評估
package nutrition

import (
	_ "embed"
	"fmt"
	"sort"

	"meal-planner/internal/pkg/common"
)

// Gender 性別
type Gender string

// AgeBucket 年齡層
type AgeBucket string

// MealType 料理種類
type MealType string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

const (
	Age18To29 AgeBucket = "18-29"
	Age30To49 AgeBucket = "30-49"
	Age50To64 AgeBucket = "50-64"
	Age65To74 AgeBucket = "65-74"
	Age75Plus AgeBucket = "75+"
)

const (
	MealMain    MealType = "主菜"
	MealSide    MealType = "副菜"
	MealSoup    MealType = "汁物"
	MealDessert MealType = "デザート"
)

// 營養素鍵
const (
	Calories   = "calories"
	Protein    = "protein"
	Fat        = "fat"
	Carbs      = "carbs"
	Salt       = "salt"
	VitaminA   = "vitaminA"
	VitaminC   = "vitaminC"
	VitaminD   = "vitaminD"
	VitaminB6  = "vitaminB6"
	VitaminB12 = "vitaminB12"
	Calcium    = "calcium"
	Iron       = "iron"
	Zinc       = "zinc"
)

// NutrientSet 營養素鍵到數值，一律視為每人份
type NutrientSet map[string]float64

// Clone 複製營養素集合
func (n NutrientSet) Clone() NutrientSet {
	if n == nil {
		return nil
	}
	out := make(NutrientSet, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

// Nutrient 營養素的顯示資訊
type Nutrient struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Unit  string `json:"unit"`
}

// Profile 使用者的性別與年齡層
type Profile struct {
	Gender Gender    `json:"gender"`
	Age    AgeBucket `json:"age"`
}

// DefaultProfile 未設定時使用的預設值
func DefaultProfile() Profile {
	return Profile{Gender: Male, Age: Age30To49}
}

// Table 營養基準表，內容來自版本化的資料檔
type Table struct {
	Version            string                               `json:"version"`
	Source             string                               `json:"source"`
	MealsPerDay        float64                              `json:"mealsPerDay"`
	MealTypeCorrection map[MealType]float64                 `json:"mealTypeCorrection"`
	Nutrients          []Nutrient                           `json:"nutrients"`
	Daily              map[Gender]map[AgeBucket]NutrientSet `json:"daily"`
}

//go:embed reference.json
var referenceJSON []byte

var defaultTable = mustLoadTable(referenceJSON)

// DefaultTable 回傳內嵌的基準表
func DefaultTable() *Table {
	return defaultTable
}

func mustLoadTable(data []byte) *Table {
	t, err := LoadTable(data)
	if err != nil {
		panic(fmt.Sprintf("nutrition: embedded reference table is invalid: %v", err))
	}
	return t
}

// LoadTable 解析並驗證基準表資料
func LoadTable(data []byte) (*Table, error) {
	var t Table
	if err := common.ParseJSONBytes(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse reference table: %w", err)
	}
	if t.MealsPerDay <= 0 {
		return nil, fmt.Errorf("mealsPerDay must be positive")
	}
	if len(t.Nutrients) == 0 {
		return nil, fmt.Errorf("no nutrients declared")
	}
	if len(t.Daily) == 0 {
		return nil, fmt.Errorf("no daily references declared")
	}
	for gender, ages := range t.Daily {
		for age, set := range ages {
			for _, n := range t.Nutrients {
				if _, ok := set[n.Key]; !ok {
					return nil, fmt.Errorf("%s/%s is missing %s", gender, age, n.Key)
				}
			}
		}
	}
	return &t, nil
}

// Lookup 查詢每日基準，不存在時回傳 false
func (t *Table) Lookup(gender Gender, age AgeBucket) (NutrientSet, bool) {
	ages, ok := t.Daily[gender]
	if !ok {
		return nil, false
	}
	set, ok := ages[age]
	if !ok {
		return nil, false
	}
	return set.Clone(), true
}

// DailyReference 查詢每日基準。Profile 一律受限於列舉值，未知組合視為程式錯誤
func (t *Table) DailyReference(gender Gender, age AgeBucket) NutrientSet {
	set, ok := t.Lookup(gender, age)
	if !ok {
		panic(fmt.Sprintf("nutrition: no daily reference for %q/%q", gender, age))
	}
	return set
}

// CorrectionFactor 料理種類的修正係數，未知種類為 1.0
func (t *Table) CorrectionFactor(mealType MealType) float64 {
	if f, ok := t.MealTypeCorrection[mealType]; ok {
		return f
	}
	return 1.0
}

// ScaledReference 每日基準 / 每日餐數 * 料理種類修正係數
func (t *Table) ScaledReference(gender Gender, age AgeBucket, mealType MealType) NutrientSet {
	daily := t.DailyReference(gender, age)
	factor := t.CorrectionFactor(mealType)
	scaled := make(NutrientSet, len(daily))
	for key, v := range daily {
		scaled[key] = v / t.MealsPerDay * factor
	}
	return scaled
}

// ValidateProfile 確認 Profile 在基準表的範圍內
func (t *Table) ValidateProfile(p Profile) error {
	if _, ok := t.Lookup(p.Gender, p.Age); !ok {
		return common.NewValidationError(fmt.Sprintf("unsupported profile %q/%q", p.Gender, p.Age))
	}
	return nil
}

// AgeBuckets 依字典序列出性別下的年齡層
func (t *Table) AgeBuckets(gender Gender) []AgeBucket {
	buckets := make([]AgeBucket, 0, len(t.Daily[gender]))
	for age := range t.Daily[gender] {
		buckets = append(buckets, age)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	return buckets
}
