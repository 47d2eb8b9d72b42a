package journal

import (
	"sort"
	"time"

	"meal-planner/internal/core/naming"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// RecentNutrientWindow 計算近期平均營養時採用的筆數
const RecentNutrientWindow = 3

// HistoryItem 做過或評價過的食譜
type HistoryItem struct {
	recipe.Suggestion
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Feedback  Feedback  `json:"feedback"`
}

// History 歷史紀錄，最新的在最前面
type History []HistoryItem

// Clone 複製清單
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Record 接受食譜時新增一筆未評價紀錄
func (h *History) Record(s recipe.Suggestion, now time.Time) HistoryItem {
	item := HistoryItem{
		Suggestion: s,
		ID:         common.GenerateUUID(),
		CreatedAt:  now,
	}
	*h = append(History{item}, *h...)
	return item
}

// Rate 對同名（正規化後）最新一筆紀錄評價；相同評價再按一次會取消，找不到時新增一筆
func (h *History) Rate(s recipe.Suggestion, feedback Feedback, now time.Time) (HistoryItem, bool) {
	key := naming.Normalize(s.RecipeName)
	for i := range *h {
		item := &(*h)[i]
		if naming.Normalize(item.RecipeName) != key {
			continue
		}
		if item.Feedback == feedback {
			item.Feedback = FeedbackNone
		} else {
			item.Feedback = feedback
		}
		return *item, false
	}

	item := HistoryItem{
		Suggestion: s,
		ID:         common.GenerateUUID(),
		CreatedAt:  now,
		Feedback:   feedback,
	}
	*h = append(History{item}, *h...)
	return item, true
}

// Remove 刪除紀錄，未知 id 不做任何事
func (h *History) Remove(id string) bool {
	for i := range *h {
		if (*h)[i].ID == id {
			*h = append((*h)[:i:i], (*h)[i+1:]...)
			return true
		}
	}
	return false
}

// Rated 已評價的紀錄
func (h History) Rated() History {
	rated := make(History, 0, len(h))
	for _, item := range h {
		if item.Feedback != FeedbackNone {
			rated = append(rated, item)
		}
	}
	return rated
}

// RatedCount 已評價的筆數
func (h History) RatedCount() int {
	n := 0
	for _, item := range h {
		if item.Feedback != FeedbackNone {
			n++
		}
	}
	return n
}

// SortedDesc 依建立時間由新到舊排序後的副本
func (h History) SortedDesc() History {
	out := h.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// RecentNutrientAverage 最近 n 筆有營養值紀錄的平均，沒有任何一筆時回傳 nil
func (h History) RecentNutrientAverage(n int) nutrition.NutrientSet {
	sets := make([]nutrition.NutrientSet, 0, n)
	for _, item := range h {
		if len(sets) == n {
			break
		}
		if item.NutritionValues != nil {
			sets = append(sets, item.NutritionValues)
		}
	}
	return nutrition.Average(sets)
}

// Digest 偏好學習所需的評價整理
type Digest struct {
	Liked              []string
	Disliked           []string
	SuccessfulRequests []string
}

// Digest 整理已評價的紀錄
func (h History) Digest() Digest {
	var d Digest
	for _, item := range h.Rated() {
		switch {
		case item.Feedback.Positive():
			d.Liked = append(d.Liked, item.RecipeName)
			if item.CustomRequestUsed != "" {
				d.SuccessfulRequests = append(d.SuccessfulRequests, item.CustomRequestUsed)
			}
		case item.Feedback == FeedbackBad:
			d.Disliked = append(d.Disliked, item.RecipeName)
		}
	}
	return d
}
