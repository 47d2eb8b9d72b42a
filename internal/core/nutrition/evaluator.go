package nutrition

// Band 實際值相對基準值的分級
type Band string

const (
	BandExcess    Band = "excess"
	BandAdequate  Band = "adequate"
	BandDeficient Band = "deficient"
)

// 分級門檻（百分比）
const (
	ExcessAbove    = 130.0
	DeficientAtMax = 70.0
)

// Label 分級的顯示文字
func (b Band) Label() string {
	switch b {
	case BandExcess:
		return "過剰"
	case BandAdequate:
		return "適量"
	case BandDeficient:
		return "不足"
	}
	return ""
}

// Ratio 實際值佔基準值的百分比。先乘後除，整數輸入在門檻上保持精確
func Ratio(actual, reference float64) float64 {
	return actual * 100 / reference
}

// Classify 依百分比分級：>130 過剰、70< r ≤130 適量、≤70 不足
func Classify(ratio float64) Band {
	switch {
	case ratio > ExcessAbove:
		return BandExcess
	case ratio > DeficientAtMax:
		return BandAdequate
	default:
		return BandDeficient
	}
}

// Evaluate 對 actual 與 reference 都有的營養素分級。
// actual 未提供的營養素不評估；基準值不為正時沒有有效比例，同樣略過
func Evaluate(actual, reference NutrientSet) map[string]Band {
	bands := make(map[string]Band, len(actual))
	for key, value := range actual {
		ref, ok := reference[key]
		if !ok || ref <= 0 {
			continue
		}
		bands[key] = Classify(Ratio(value, ref))
	}
	return bands
}

// Assessment 單一營養素的評估結果
type Assessment struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Unit      string  `json:"unit"`
	Actual    float64 `json:"actual"`
	Reference float64 `json:"reference"`
	Ratio     float64 `json:"ratio"`
	Band      Band    `json:"band"`
	BandLabel string  `json:"bandLabel"`
}

// Assess 依基準表的營養素順序回傳評估結果
func (t *Table) Assess(actual NutrientSet, profile Profile, mealType MealType) []Assessment {
	reference := t.ScaledReference(profile.Gender, profile.Age, mealType)
	bands := Evaluate(actual, reference)

	out := make([]Assessment, 0, len(bands))
	for _, n := range t.Nutrients {
		band, ok := bands[n.Key]
		if !ok {
			continue
		}
		out = append(out, Assessment{
			Key:       n.Key,
			Label:     n.Label,
			Unit:      n.Unit,
			Actual:    actual[n.Key],
			Reference: reference[n.Key],
			Ratio:     Ratio(actual[n.Key], reference[n.Key]),
			Band:      band,
			BandLabel: band.Label(),
		})
	}
	return out
}

// Average 計算多筆營養素集合的逐鍵平均，分母為集合筆數
func Average(sets []NutrientSet) NutrientSet {
	if len(sets) == 0 {
		return nil
	}
	sums := make(NutrientSet)
	for _, set := range sets {
		for key, v := range set {
			sums[key] += v
		}
	}
	for key := range sums {
		sums[key] /= float64(len(sets))
	}
	return sums
}
