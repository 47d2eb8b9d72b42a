// Package naming 提供食材、單位與食譜名稱的正規化比對規則
package naming

import "strings"

const (
	katakanaFirst = 'ァ'
	katakanaLast  = 'ヶ'
	kanaOffset    = 0x60
)

// Normalize 將片假名折疊為平假名、轉小寫並去除前後空白
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded := strings.Map(func(r rune) rune {
		if r >= katakanaFirst && r <= katakanaLast {
			return r - kanaOffset
		}
		return r
	}, s)
	return strings.TrimSpace(strings.ToLower(folded))
}

// Equal 以正規化後的名稱比較
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Index 正規化名稱到位置的索引，同名時保留第一筆
type Index struct {
	positions map[string]int
}

// NewIndex 依序為 names 建立索引
func NewIndex(names ...string) *Index {
	idx := &Index{positions: make(map[string]int, len(names))}
	for i, name := range names {
		idx.Add(name, i)
	}
	return idx
}

// Add 登記名稱，已存在時不覆蓋並回傳 false
func (idx *Index) Add(name string, pos int) bool {
	key := Normalize(name)
	if _, exists := idx.positions[key]; exists {
		return false
	}
	idx.positions[key] = pos
	return true
}

// Set 無條件覆蓋名稱的位置
func (idx *Index) Set(name string, pos int) {
	idx.positions[Normalize(name)] = pos
}

// Lookup 查詢名稱的位置
func (idx *Index) Lookup(name string) (int, bool) {
	pos, ok := idx.positions[Normalize(name)]
	return pos, ok
}

// Contains 名稱是否已被登記
func (idx *Index) Contains(name string) bool {
	_, ok := idx.positions[Normalize(name)]
	return ok
}

// Len 索引中的鍵數量
func (idx *Index) Len() int {
	return len(idx.positions)
}
