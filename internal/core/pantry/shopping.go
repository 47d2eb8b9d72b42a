package pantry

import (
	"meal-planner/internal/core/naming"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// ShoppingEntry 購物清單項目
type ShoppingEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShoppingList 購物清單，名稱在正規化後唯一
type ShoppingList []ShoppingEntry

// Clone 複製清單
func (l ShoppingList) Clone() ShoppingList {
	if l == nil {
		return nil
	}
	out := make(ShoppingList, len(l))
	copy(out, l)
	return out
}

// Find 依 id 取得項目
func (l ShoppingList) Find(id string) (ShoppingEntry, bool) {
	for _, entry := range l {
		if entry.ID == id {
			return entry, true
		}
	}
	return ShoppingEntry{}, false
}

// Remove 刪除項目，未知 id 不做任何事
func (l *ShoppingList) Remove(id string) bool {
	for i := range *l {
		if (*l)[i].ID == id {
			*l = append((*l)[:i:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// Contains 清單中是否有正規化後同名的項目
func (l ShoppingList) Contains(name string) bool {
	for _, entry := range l {
		if naming.Equal(entry.Name, name) {
			return true
		}
	}
	return false
}

// Prepend 將項目放回最前面
func (l *ShoppingList) Prepend(entry ShoppingEntry) {
	*l = append(ShoppingList{entry}, *l...)
}

// Append 加到清單尾端
func (l *ShoppingList) Append(entries ...ShoppingEntry) {
	*l = append(*l, entries...)
}

// Shortfall 找出庫存不足的食材。
// 同名但單位不同的庫存視為足夠，Apply 則判定為不足（見 DESIGN.md）。
func Shortfall(required []recipe.IngredientRef, inv Inventory) []recipe.IngredientRef {
	names := inv.Names()
	needed := make([]recipe.IngredientRef, 0)
	for _, req := range required {
		i, ok := names.Lookup(req.Name)
		if !ok {
			needed = append(needed, req)
			continue
		}
		stock := inv[i]
		if naming.Equal(stock.Unit, req.BaseUnit) && stock.Quantity < req.BaseQuantity {
			needed = append(needed, req)
		}
	}
	return needed
}

// DedupAgainstExisting 排除已在購物清單上的名稱，其餘建立新項目
func DedupAgainstExisting(needed []recipe.IngredientRef, list ShoppingList) []ShoppingEntry {
	seen := naming.NewIndex()
	for i, entry := range list {
		seen.Add(entry.Name, i)
	}
	entries := make([]ShoppingEntry, 0, len(needed))
	for _, item := range needed {
		if !seen.Add(item.Name, len(list)+len(entries)) {
			continue
		}
		entries = append(entries, ShoppingEntry{ID: common.GenerateUUID(), Name: item.Name})
	}
	return entries
}
