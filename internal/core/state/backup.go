package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/naming"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/pkg/common"
)

// requiredArrays 匯入時必須存在且為陣列的鍵
var requiredArrays = []string{"ingredients", "allergies", "history", "bookmarks"}

// Backup 備份檔格式
type Backup struct {
	Ingredients           pantry.Inventory    `json:"ingredients"`
	ShoppingList          pantry.ShoppingList `json:"shoppingList"`
	Allergies             pantry.Allergies    `json:"allergies"`
	History               journal.History     `json:"history"`
	Bookmarks             journal.Bookmarks   `json:"bookmarks"`
	UserProfile           *nutrition.Profile  `json:"userProfile"`
	UserPreferenceSummary string              `json:"userPreferenceSummary"`
	PreferenceSummaryLog  journal.SummaryLog  `json:"preferenceSummaryLog"`
}

// Export 將資料轉為備份格式
func Export(s State) Backup {
	profile := s.UserProfile
	return Backup{
		Ingredients:           nonNil(s.Ingredients),
		ShoppingList:          nonNil(s.ShoppingList),
		Allergies:             nonNil(s.Allergies),
		History:               nonNil(s.History.SortedDesc()),
		Bookmarks:             nonNil(s.Bookmarks.SortedDesc()),
		UserProfile:           &profile,
		UserPreferenceSummary: s.PreferenceSummary,
		PreferenceSummaryLog:  nonNil(s.PreferenceSummaryLog),
	}
}

// ExportJSON 以縮排 JSON 輸出備份
func ExportJSON(s State) ([]byte, error) {
	return json.MarshalIndent(Export(s), "", "  ")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ParseBackup 驗證並解析備份檔，任何問題都回傳 ErrInvalidBackupFile
func ParseBackup(data []byte, table *nutrition.Table) (State, error) {
	var raw map[string]json.RawMessage
	if err := common.ParseJSONBytes(data, &raw); err != nil {
		return State{}, common.Wrap(common.ErrInvalidBackupFile, err)
	}
	for _, key := range requiredArrays {
		value, ok := raw[key]
		if !ok {
			return State{}, common.Wrap(common.ErrInvalidBackupFile, fmt.Errorf("missing %s", key))
		}
		if trimmed := bytes.TrimSpace(value); len(trimmed) == 0 || trimmed[0] != '[' {
			return State{}, common.Wrap(common.ErrInvalidBackupFile, fmt.Errorf("%s is not an array", key))
		}
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return State{}, common.Wrap(common.ErrInvalidBackupFile, err)
	}

	if err := checkBackup(b); err != nil {
		return State{}, common.Wrap(common.ErrInvalidBackupFile, err)
	}

	next := Default()
	next.Ingredients = nonNil(b.Ingredients)
	next.Allergies = nonNil(b.Allergies)
	next.History = nonNil(b.History.SortedDesc())
	next.Bookmarks = nonNil(b.Bookmarks.SortedDesc())
	if b.ShoppingList != nil {
		next.ShoppingList = b.ShoppingList
	}
	if b.UserProfile != nil {
		if err := table.ValidateProfile(*b.UserProfile); err != nil {
			return State{}, common.Wrap(common.ErrInvalidBackupFile, err)
		}
		next.UserProfile = *b.UserProfile
	}
	next.PreferenceSummary = b.UserPreferenceSummary
	if b.PreferenceSummaryLog != nil {
		next.PreferenceSummaryLog = b.PreferenceSummaryLog
	}
	return next, nil
}

// checkBackup 匯入的資料也必須符合數量與名稱唯一的規則
func checkBackup(b Backup) error {
	for _, ing := range b.Ingredients {
		if ing.Quantity <= 0 || math.IsNaN(ing.Quantity) || math.IsInf(ing.Quantity, 0) {
			return fmt.Errorf("ingredient %q has invalid quantity %v", ing.Name, ing.Quantity)
		}
	}

	shopping := naming.NewIndex()
	for i, entry := range b.ShoppingList {
		if !shopping.Add(entry.Name, i) {
			return fmt.Errorf("duplicate shopping list entry %q", entry.Name)
		}
	}

	bookmarks := naming.NewIndex()
	for i, bm := range b.Bookmarks {
		if !bookmarks.Add(bm.RecipeName, i) {
			return fmt.Errorf("duplicate bookmark %q", bm.RecipeName)
		}
	}
	return nil
}
