// Package state 保存所有持久化資料，並以單一佇列序列化每次變更
package state

import (
	"encoding/json"
	"fmt"
	"reflect"

	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
)

// Bucket 持久化資料的分類鍵
type Bucket string

const (
	BucketIngredients          Bucket = "ingredients"
	BucketShoppingList         Bucket = "shoppingList"
	BucketAllergies            Bucket = "allergies"
	BucketHistory              Bucket = "history"
	BucketBookmarks            Bucket = "bookmarks"
	BucketUserProfile          Bucket = "userProfile"
	BucketPreferenceSummary    Bucket = "preferenceSummary"
	BucketPreferenceSummaryLog Bucket = "preferenceSummaryLog"
)

// Buckets 所有分類，依固定順序
var Buckets = []Bucket{
	BucketIngredients,
	BucketShoppingList,
	BucketAllergies,
	BucketHistory,
	BucketBookmarks,
	BucketUserProfile,
	BucketPreferenceSummary,
	BucketPreferenceSummaryLog,
}

// State 一份完整的使用者資料
type State struct {
	Ingredients          pantry.Inventory    `json:"ingredients"`
	ShoppingList         pantry.ShoppingList `json:"shoppingList"`
	Allergies            pantry.Allergies    `json:"allergies"`
	History              journal.History     `json:"history"`
	Bookmarks            journal.Bookmarks   `json:"bookmarks"`
	UserProfile          nutrition.Profile   `json:"userProfile"`
	PreferenceSummary    string              `json:"preferenceSummary"`
	PreferenceSummaryLog journal.SummaryLog  `json:"preferenceSummaryLog"`
}

// Default 空白資料與預設個人設定
func Default() State {
	return State{
		Ingredients:          pantry.Inventory{},
		ShoppingList:         pantry.ShoppingList{},
		Allergies:            pantry.Allergies{},
		History:              journal.History{},
		Bookmarks:            journal.Bookmarks{},
		UserProfile:          nutrition.DefaultProfile(),
		PreferenceSummaryLog: journal.SummaryLog{},
	}
}

// Clone 複製所有清單，元素內的食譜內容共用
func (s State) Clone() State {
	return State{
		Ingredients:          s.Ingredients.Clone(),
		ShoppingList:         s.ShoppingList.Clone(),
		Allergies:            s.Allergies.Clone(),
		History:              s.History.Clone(),
		Bookmarks:            s.Bookmarks.Clone(),
		UserProfile:          s.UserProfile,
		PreferenceSummary:    s.PreferenceSummary,
		PreferenceSummaryLog: s.PreferenceSummaryLog.Clone(),
	}
}

// Value 分類要寫入持久層的值，歷史與書籤依時間由新到舊
func (s State) Value(b Bucket) interface{} {
	switch b {
	case BucketIngredients:
		return s.Ingredients
	case BucketShoppingList:
		return s.ShoppingList
	case BucketAllergies:
		return s.Allergies
	case BucketHistory:
		return s.History.SortedDesc()
	case BucketBookmarks:
		return s.Bookmarks.SortedDesc()
	case BucketUserProfile:
		return s.UserProfile
	case BucketPreferenceSummary:
		return s.PreferenceSummary
	case BucketPreferenceSummaryLog:
		return s.PreferenceSummaryLog
	}
	return nil
}

// Decode 將持久層讀出的 JSON 放回對應分類
func (s *State) Decode(b Bucket, data []byte) error {
	var target interface{}
	switch b {
	case BucketIngredients:
		target = &s.Ingredients
	case BucketShoppingList:
		target = &s.ShoppingList
	case BucketAllergies:
		target = &s.Allergies
	case BucketHistory:
		target = &s.History
	case BucketBookmarks:
		target = &s.Bookmarks
	case BucketUserProfile:
		target = &s.UserProfile
	case BucketPreferenceSummary:
		target = &s.PreferenceSummary
	case BucketPreferenceSummaryLog:
		target = &s.PreferenceSummaryLog
	default:
		return fmt.Errorf("unknown bucket %q", b)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", b, err)
	}
	return nil
}

// Changed 比較兩份資料，回傳內容不同的分類
func Changed(before, after State) []Bucket {
	var changed []Bucket
	for _, b := range Buckets {
		if !reflect.DeepEqual(before.Value(b), after.Value(b)) {
			changed = append(changed, b)
		}
	}
	return changed
}
