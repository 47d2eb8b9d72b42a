// Package pantry 管理手持食材、過敏原與購物清單，並處理食譜的食材消耗
package pantry

import (
	"meal-planner/internal/core/naming"
	"meal-planner/internal/pkg/common"
)

const (
	// OtherUnit 選擇「其他」單位時須另外輸入單位名稱
	OtherUnit = "その他"

	// DepletedThreshold 消耗後數量不超過此值的食材視為用完
	DepletedThreshold = 0.001
)

// UnitOptions 可選的單位
var UnitOptions = []string{"g", "kg", "個", "本", "ml", "L", "枚", "パック", "束"}

// Ingredient 手持食材
type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	MustUse  bool    `json:"mustUse"`
}

// IngredientPatch 部分更新，nil 欄位保持不變
type IngredientPatch struct {
	Name     *string  `json:"name,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	MustUse  *bool    `json:"mustUse,omitempty"`
}

// Inventory 手持食材清單，依加入順序排列
type Inventory []Ingredient

// ResolveUnit 將「その他」解析為自訂單位
func ResolveUnit(choice, custom string) (string, error) {
	unit := choice
	if choice == OtherUnit {
		unit = custom
	}
	if naming.Normalize(unit) == "" {
		return "", common.ErrInvalidUnit
	}
	return unit, nil
}

// Clone 複製清單
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	out := make(Inventory, len(inv))
	copy(out, inv)
	return out
}

func (inv Inventory) indexOf(id string) int {
	for i := range inv {
		if inv[i].ID == id {
			return i
		}
	}
	return -1
}

// Find 依 id 取得食材
func (inv Inventory) Find(id string) (Ingredient, bool) {
	if i := inv.indexOf(id); i >= 0 {
		return inv[i], true
	}
	return Ingredient{}, false
}

// Names 正規化名稱索引，同名時指向最早加入的食材
func (inv Inventory) Names() *naming.Index {
	idx := naming.NewIndex()
	for i, ing := range inv {
		idx.Add(ing.Name, i)
	}
	return idx
}

// TotalQuantity 所有食材數量總和
func (inv Inventory) TotalQuantity() float64 {
	var sum float64
	for _, ing := range inv {
		sum += ing.Quantity
	}
	return sum
}

func validateIngredient(name string, quantity float64, unit string) error {
	if naming.Normalize(name) == "" {
		return common.NewValidationError("食材名を入力してください。")
	}
	if quantity <= 0 {
		return common.NewValidationError("数量は0より大きい値を入力してください。")
	}
	if naming.Normalize(unit) == "" {
		return common.ErrInvalidUnit
	}
	return nil
}

// Add 加入新食材，單位須已解析
func (inv *Inventory) Add(name string, quantity float64, unit string) (Ingredient, error) {
	if err := validateIngredient(name, quantity, unit); err != nil {
		return Ingredient{}, err
	}
	ing := Ingredient{
		ID:       common.GenerateUUID(),
		Name:     name,
		Quantity: quantity,
		Unit:     unit,
	}
	*inv = append(*inv, ing)
	return ing, nil
}

// Update 套用部分更新，未知 id 不做任何事並回傳 false
func (inv *Inventory) Update(id string, patch IngredientPatch) (bool, error) {
	i := inv.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := (*inv)[i]
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		next.Unit = *patch.Unit
	}
	if patch.MustUse != nil {
		next.MustUse = *patch.MustUse
	}
	if err := validateIngredient(next.Name, next.Quantity, next.Unit); err != nil {
		return false, err
	}
	(*inv)[i] = next
	return true, nil
}

// Remove 刪除食材，未知 id 不做任何事
func (inv *Inventory) Remove(id string) bool {
	i := inv.indexOf(id)
	if i < 0 {
		return false
	}
	*inv = append((*inv)[:i:i], (*inv)[i+1:]...)
	return true
}

// ToggleMustUse 切換「必須用完」旗標
func (inv *Inventory) ToggleMustUse(id string) bool {
	i := inv.indexOf(id)
	if i < 0 {
		return false
	}
	(*inv)[i].MustUse = !(*inv)[i].MustUse
	return true
}

// Allergy 過敏原或不吃的食材
type Allergy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Allergies 過敏原清單
type Allergies []Allergy

// Clone 複製清單
func (a Allergies) Clone() Allergies {
	if a == nil {
		return nil
	}
	out := make(Allergies, len(a))
	copy(out, a)
	return out
}

// Add 加入過敏原
func (a *Allergies) Add(name string) (Allergy, error) {
	if naming.Normalize(name) == "" {
		return Allergy{}, common.NewValidationError("アレルギー食材名を入力してください。")
	}
	allergy := Allergy{ID: common.GenerateUUID(), Name: name}
	*a = append(*a, allergy)
	return allergy, nil
}

// Remove 刪除過敏原，未知 id 不做任何事
func (a *Allergies) Remove(id string) bool {
	for i := range *a {
		if (*a)[i].ID == id {
			*a = append((*a)[:i:i], (*a)[i+1:]...)
			return true
		}
	}
	return false
}

// Names 過敏原名稱
func (a Allergies) Names() []string {
	names := make([]string, 0, len(a))
	for _, allergy := range a {
		names = append(names, allergy.Name)
	}
	return names
}
