package pantry

import (
	"fmt"
	"strings"

	"meal-planner/internal/core/naming"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// InsufficientInventoryError 一個或多個食材無法滿足用量
type InsufficientInventoryError struct {
	Missing []string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("%s: %s", common.ErrInsufficientInventory.Message, strings.Join(e.Missing, ", "))
}

// Is 讓 errors.Is(err, common.ErrInsufficientInventory) 成立
func (e *InsufficientInventoryError) Is(target error) bool {
	return target == common.ErrInsufficientInventory
}

// Apply 依序扣除食譜用量並回傳新的清單。
// 每個用量是全有或全無，失敗的用量不影響其他用量；
// 只要有任何失敗就回傳包含所有缺少食材的錯誤，原清單保持不變。
func Apply(inv Inventory, usages []recipe.IngredientRef) (Inventory, error) {
	working := inv.Clone()
	names := working.Names()

	var missing []string
	for _, usage := range usages {
		i, ok := names.Lookup(usage.Name)
		// 負的用量會增加庫存，視為無法滿足
		if !ok || usage.BaseQuantity < 0 {
			missing = append(missing, usage.Name)
			continue
		}
		stock := &working[i]
		if !naming.Equal(stock.Unit, usage.BaseUnit) || stock.Quantity < usage.BaseQuantity {
			missing = append(missing, usage.Name)
			continue
		}
		stock.Quantity -= usage.BaseQuantity
	}
	if len(missing) > 0 {
		return inv, &InsufficientInventoryError{Missing: missing}
	}

	out := make(Inventory, 0, len(working))
	for _, ing := range working {
		if ing.Quantity > DepletedThreshold {
			out = append(out, ing)
		}
	}
	return out, nil
}
