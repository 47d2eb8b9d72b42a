package journal

import (
	"sort"
	"time"

	"meal-planner/internal/core/naming"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// Bookmark 收藏的食譜
type Bookmark struct {
	recipe.Suggestion
	ID           string    `json:"id"`
	BookmarkedAt time.Time `json:"bookmarkedAt"`
}

// Bookmarks 書籤，最新的在最前面，名稱在正規化後唯一
type Bookmarks []Bookmark

// Clone 複製清單
func (b Bookmarks) Clone() Bookmarks {
	if b == nil {
		return nil
	}
	out := make(Bookmarks, len(b))
	copy(out, b)
	return out
}

// Add 收藏食譜，同名時回傳 ErrDuplicateBookmark
func (b *Bookmarks) Add(s recipe.Suggestion, now time.Time) (Bookmark, error) {
	if naming.Normalize(s.RecipeName) == "" {
		return Bookmark{}, common.NewValidationError("recipeName is required")
	}
	for _, existing := range *b {
		if naming.Equal(existing.RecipeName, s.RecipeName) {
			return Bookmark{}, common.ErrDuplicateBookmark
		}
	}
	bm := Bookmark{
		Suggestion:   s,
		ID:           common.GenerateUUID(),
		BookmarkedAt: now,
	}
	*b = append(Bookmarks{bm}, *b...)
	return bm, nil
}

// Remove 刪除書籤，未知 id 不做任何事
func (b *Bookmarks) Remove(id string) bool {
	for i := range *b {
		if (*b)[i].ID == id {
			*b = append((*b)[:i:i], (*b)[i+1:]...)
			return true
		}
	}
	return false
}

// SortedDesc 依收藏時間由新到舊排序後的副本
func (b Bookmarks) SortedDesc() Bookmarks {
	out := b.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookmarkedAt.After(out[j].BookmarkedAt)
	})
	return out
}

// SummaryLogEntry 一次偏好學習的結果
type SummaryLogEntry struct {
	Date    time.Time `json:"date"`
	Summary string    `json:"summary"`
}

// SummaryLog 偏好摘要歷程，最新的在最前面
type SummaryLog []SummaryLogEntry

// Clone 複製清單
func (l SummaryLog) Clone() SummaryLog {
	if l == nil {
		return nil
	}
	out := make(SummaryLog, len(l))
	copy(out, l)
	return out
}

// Prepend 新增一筆摘要
func (l *SummaryLog) Prepend(summary string, now time.Time) SummaryLogEntry {
	entry := SummaryLogEntry{Date: now, Summary: summary}
	*l = append(SummaryLog{entry}, *l...)
	return entry
}
