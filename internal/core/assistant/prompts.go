package assistant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/core/recipe"
)

// Season 以月份判斷季節
func Season(t time.Time) string {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return "春"
	case m >= time.June && m <= time.August:
		return "夏"
	case m >= time.September && m <= time.November:
		return "秋"
	}
	return "冬"
}

// TimeOfDay 以時刻判斷早午晚
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return "朝"
	case h >= 11 && h < 16:
		return "昼"
	}
	return "夜"
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func describeStock(items pantry.Inventory) string {
	parts := make([]string, 0, len(items))
	for _, ing := range items {
		parts = append(parts, fmt.Sprintf("%s (%s%s)", ing.Name, formatQuantity(ing.Quantity), ing.Unit))
	}
	return strings.Join(parts, ", ")
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func nutrientJSON(set nutrition.NutrientSet) string {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (t Tags) describe() []string {
	var info []string
	if t.MealType != "" {
		info = append(info, "種類: "+string(t.MealType))
	}
	if t.Cuisine != "" {
		info = append(info, "ジャンル: "+t.Cuisine)
	}
	if t.CookingMethod != "" {
		info = append(info, "調理法: "+t.CookingMethod)
	}
	if t.TimeMinutes > 0 {
		info = append(info, fmt.Sprintf("調理時間: %d分以内", t.TimeMinutes))
	}
	return info
}

// SuggestPrompt 組出食譜提案的請求文字
func SuggestPrompt(c Context, req SuggestRequest) string {
	var b strings.Builder
	b.WriteString("あなたはユーザーの専属栄養士兼シェフです。以下の条件を厳密に守り、素晴らしいレシピを1つ提案してください。\n\n")
	fmt.Fprintf(&b, "■ 基本条件\n・%d人前のレシピとしてください。\n", req.servings())
	if allergies := c.Allergies.Names(); len(allergies) > 0 {
		fmt.Fprintf(&b, "・アレルギー食材 (%s) は絶対に使用しないでください。\n", strings.Join(allergies, ", "))
	}

	if len(c.Ingredients) > 0 {
		var mustUse, other pantry.Inventory
		for _, ing := range c.Ingredients {
			if ing.MustUse {
				mustUse = append(mustUse, ing)
			} else {
				other = append(other, ing)
			}
		}
		if len(mustUse) > 0 {
			fmt.Fprintf(&b, "\n■【最重要】必ず使い切る食材\n以下の食材は、**必ず全て使い切る**ようにレシピを組み立ててください：\n[%s]\n", describeStock(mustUse))
		}
		if len(other) > 0 {
			fmt.Fprintf(&b, "\n■ その他の手持ち食材\n以下の食材は、必要に応じて使ってください：\n[%s]\n", describeStock(other))
		}
	} else {
		b.WriteString("\n■【重要】手持ちの食材はありません。\n一般的な食材を使って、以下のリクエストに基づいたレシピを自由に提案してください。\n")
	}

	if !req.IgnoreFeedback {
		fmt.Fprintf(&b, "・現在は%sの%sです。この時期や時間帯に合ったレシピを考慮してください。\n", Season(c.Now), TimeOfDay(c.Now))
		if c.PreferenceSummary != "" {
			fmt.Fprintf(&b, "\n■ 私の好みの要約\n%s\nこの要約を最優先で考慮してください。\n", c.PreferenceSummary)
		}
		if avg := c.History.RecentNutrientAverage(journal.RecentNutrientWindow); avg != nil {
			fmt.Fprintf(&b, "\n■ 栄養バランスの考慮\n最近の食事の平均栄養素は以下の通りです（1食あたり）：\n%s\nこれらの食事内容を考慮し、栄養バランスが取れるようなレシピを提案してください。\n", nutrientJSON(avg))
		}
	}

	if tags := req.Tags.describe(); len(tags) > 0 {
		fmt.Fprintf(&b, "\n■ その他の希望条件\n%s\n", strings.Join(tags, ", "))
	}
	if custom := strings.TrimSpace(req.CustomRequest); custom != "" {
		fmt.Fprintf(&b, "\n■ 自由記述リクエスト\n「%s」\n", custom)
	}
	if req.Rejected != nil {
		fmt.Fprintf(&b, "\n■【最重要】除外するレシピ\nユーザーは直前に提案された以下のレシピを好みませんでした。これとは全く異なるスタイルの新しいレシピを提案してください。\n- レシピ名: %s\n- 説明: %s\n", req.Rejected.RecipeName, req.Rejected.Description)
	}

	b.WriteString("\n■ 指示\n・自然で美味しいレシピを考えてください。\n・**nutritionValues**: レシピの栄養価を**1人前あたり**で計算してください。\n・提案したレシピが「主菜」「副菜」「汁物」「デザート」のどれに分類されるか、必ず \"mealType\" フィールドに含めてください。\n")
	if req.Tags.MealType == "" || req.Tags.MealType == nutrition.MealMain {
		b.WriteString("・**主食に関する注意**: 提案するレシピが「主菜」の場合、ユーザーは別途白米などの主食（約250kcal, 炭水化物55g程度）を摂ることを前提として、おかず単体での栄養バランスを最適化してください。炭水化物が不足しているように見えても問題ありません。\n")
	}
	b.WriteString("・JSONレスポンスの「usedIngredients」フィールドには、上記の「手持ちの食材リスト」から使用した食材を、**名前の表記を一切変えずにそのまま**記載してください。\n")
	b.WriteString("・**最重要**: 食材の分量を指定する際、以下の2種類の値を必ず含めてください。\n")
	b.WriteString("  1. **displayText**: 調理時に分かりやすい表記（例：「大さじ1」、「チューブ5cm」、「ひとつまみ」など）。\n")
	b.WriteString("  2. **baseQuantity** と **baseUnit**: 「displayText」の量が、「手持ちの食材リスト」の単位でどれだけに相当するかを計算した正確な値。'baseUnit'は必ずリストの単位と一致させてください。\n\n")
	b.WriteString("以上の条件をすべて満たしたレシピを、以下のJSON形式で日本語で回答してください。")
	return b.String()
}

// ReasonPrompt 組出提案理由的請求文字
func ReasonPrompt(c Context, s recipe.Suggestion, ignoreFeedback bool) string {
	var b strings.Builder
	b.WriteString("以下のレシピについて、提案理由を生成してください。\n\n")
	if !ignoreFeedback {
		fmt.Fprintf(&b, "■ 考慮した背景\n- 時期: %sの%s\n", Season(c.Now), TimeOfDay(c.Now))
		if c.PreferenceSummary != "" {
			fmt.Fprintf(&b, "- ユーザーの好み: %s\n", c.PreferenceSummary)
		}
		if avg := c.History.RecentNutrientAverage(journal.RecentNutrientWindow); avg != nil {
			fmt.Fprintf(&b, "- 最近の食事の栄養傾向: %s\n", nutrientJSON(avg))
		}
	} else {
		b.WriteString("■ 考慮した背景\n- 現在は気分転換モードです。\n")
	}
	fmt.Fprintf(&b, "\n■ 提案されたレシピ\n- %s: %s\n\n", s.RecipeName, s.Description)
	b.WriteString("# 指示\n・栄養士の視点から、簡潔かつ論理的に記述する。\n・挨拶や自己紹介は絶対に含めない。\n・太字（**）は使用しない。\n・全体の文字数は50～100文字程度に収める。")
	return b.String()
}

func genderLabel(g nutrition.Gender) string {
	if g == nutrition.Male {
		return "男性"
	}
	return "女性"
}

// AnalysisPrompt 組出營養分析的請求文字
func AnalysisPrompt(c Context, s recipe.Suggestion) string {
	ingredients := make([]string, 0, len(s.UsedIngredients)+len(s.AdditionalIngredients))
	for _, ing := range s.AllIngredients() {
		ingredients = append(ingredients, ing.Name+" "+ing.DisplayText)
	}

	preference := "ユーザーの好みは不明です。"
	if c.History.RatedCount() > 0 {
		d := c.History.Digest()
		preference = fmt.Sprintf("ユーザーは過去に以下の料理を好みました: [%s]。以下の料理は好みませんでした: [%s]。",
			joinOr(d.Liked, "なし"), joinOr(d.Disliked, "なし"))
	}

	var b strings.Builder
	b.WriteString("あなたは、ユーザーの健康をサポートするAI管理栄養士です。丁寧な言葉遣い（ですます調）で、的確なアドバイスをしてください。\n\n")
	b.WriteString("# ユーザー情報\n")
	fmt.Fprintf(&b, "- プロフィール: %s, %s歳\n", genderLabel(c.Profile.Gender), c.Profile.Age)
	fmt.Fprintf(&b, "- アレルギー: %s\n", joinOr(c.Allergies.Names(), "なし"))
	stock := describeStock(c.Ingredients)
	if stock == "" {
		stock = "なし"
	}
	fmt.Fprintf(&b, "- 手持ちの食材: %s\n", stock)
	fmt.Fprintf(&b, "- 食事の好み: %s\n\n", preference)
	b.WriteString("# レシピ情報\n")
	fmt.Fprintf(&b, "- レシピ名: %s\n", s.RecipeName)
	fmt.Fprintf(&b, "- 分量: %s人前\n", formatQuantity(s.ServingsOrDefault()))
	fmt.Fprintf(&b, "- 種類: %s\n", s.MealType)
	fmt.Fprintf(&b, "- 材料: %s\n\n", strings.Join(ingredients, ", "))
	b.WriteString("# 指示\n以下の3つの項目について分析し、指定されたJSON形式で回答してください。\n\n")
	b.WriteString("1.  **nutritionValues**: レシピの栄養価を**1人前あたり**で計算してください。計算する栄養素は以下の通りです。\n")
	b.WriteString("    - エネルギー(kcal), たんぱく質(g), 脂質(g), 炭水化物(g), 食塩相当量(g), ビタミンA(μgRAE), ビタミンC(mg), ビタミンD(μg), ビタミンB6(mg), ビタミンB12(μg), カルシウム(mg), 鉄(mg), 亜鉛(mg)\n")
	b.WriteString("2.  **impression**: 栄養価と材料から、このレシピの良い点を具体的に褒めてください。その後、もし改善点があれば「少し気になるのは〇〇です。△△を意識すると、もっと素晴らしい食事になりますよ。」といった形で、優しく的確に指摘してください。\n")
	b.WriteString("3.  **suggestion**: この食事の栄養バランスをさらに良くするための、具体的な献立を1〜2品提案してください。**ユーザーの手持ち食材、好み、アレルギーを最大限考慮**し、なぜそれが必要なのかという栄養的な理由も添えてください。")
	return b.String()
}

// SummaryPrompt 組出偏好摘要的請求文字
func SummaryPrompt(d journal.Digest) string {
	requests := make([]string, 0, len(d.SuccessfulRequests))
	for _, r := range d.SuccessfulRequests {
		requests = append(requests, "「"+r+"」")
	}

	var b strings.Builder
	b.WriteString("ユーザーのレシピ評価履歴と、成功した自由リクエストを分析し、その人の食の好みを簡潔に要約してください。味付け、食材、調理法などの傾向を抽出し、箇条書きではなく、自然な文章で記述してください。\n\n")
	fmt.Fprintf(&b, "# 評価履歴\n- 好んだレシピ: [%s]\n- 好まなかったレシピ: [%s]\n\n", joinOr(d.Liked, "なし"), joinOr(d.Disliked, "なし"))
	fmt.Fprintf(&b, "# 成功した自由リクエスト\n[%s]\n\n", joinOr(requests, "なし"))
	b.WriteString("# 出力例\n- 鶏肉や豚肉を使った、甘辛い味付けの和食や中華料理を好む傾向があります。特に「子供向け」や「しょっぱめ」といったリクエストが成功していることから、はっきりとした味付けを求めているようです。一方で、魚介類や酸味の強い料理はあまり好まないようです。")
	return b.String()
}
