package pantry

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
	"meal-planner/internal/pkg/schedule"
)

const (
	// DefaultRestockQuantity 補貨時建立的預設數量
	DefaultRestockQuantity = 1.0
	// DefaultRestockUnit 補貨時建立的預設單位
	DefaultRestockUnit = "個"
	// DefaultUndoWindow 補貨可取消的時間
	DefaultUndoWindow = 5 * time.Second
)

// Move 一次補貨的配對紀錄
type Move struct {
	ShoppingEntry ShoppingEntry `json:"shoppingListItem"`
	Ingredient    Ingredient    `json:"ingredientItem"`
}

// RestockMover 將購物清單項目移入庫存，只保留最近一次可取消
type RestockMover struct {
	mu        sync.Mutex
	scheduler schedule.Scheduler
	window    time.Duration

	pending *Move
	expiry  schedule.Task
	gen     uint64
}

// NewRestockMover 建立補貨處理器，window <= 0 時使用預設值
func NewRestockMover(scheduler schedule.Scheduler, window time.Duration) *RestockMover {
	if scheduler == nil {
		scheduler = schedule.TimerScheduler{}
	}
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &RestockMover{scheduler: scheduler, window: window}
}

// Move 將 id 對應的購物項目移入庫存，並取代先前的可取消紀錄
func (m *RestockMover) Move(inv *Inventory, list *ShoppingList, id string) (Move, bool) {
	entry, ok := list.Find(id)
	if !ok {
		return Move{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearLocked()

	ing := Ingredient{
		ID:       common.GenerateUUID(),
		Name:     entry.Name,
		Quantity: DefaultRestockQuantity,
		Unit:     DefaultRestockUnit,
	}
	*inv = append(*inv, ing)
	list.Remove(id)

	move := Move{ShoppingEntry: entry, Ingredient: ing}
	m.pending = &move
	gen := m.gen
	m.expiry = m.scheduler.AfterFunc(m.window, func() { m.expire(gen) })

	common.LogDebug("購物項目已移入庫存",
		zap.String("name", entry.Name),
		zap.Duration("undo_window", m.window),
	)
	return move, true
}

// Undo 還原最近一次補貨，超過時間或已還原時不做任何事。
// 清單上已有同名項目時只移除建立的食材，不再放回購物項目
func (m *RestockMover) Undo(inv *Inventory, list *ShoppingList) (Move, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return Move{}, false
	}
	move := *m.pending
	m.clearLocked()

	inv.Remove(move.Ingredient.ID)
	if list.Contains(move.ShoppingEntry.Name) {
		common.LogDebug("購物清單已有同名項目，略過放回",
			zap.String("name", move.ShoppingEntry.Name),
		)
		return move, true
	}
	list.Prepend(move.ShoppingEntry)
	return move, true
}

// Pending 目前可取消的補貨紀錄
func (m *RestockMover) Pending() (Move, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return Move{}, false
	}
	return *m.pending, true
}

// Discard 放棄可取消的紀錄，例如匯入備份後
func (m *RestockMover) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *RestockMover) clearLocked() {
	if m.expiry != nil {
		m.expiry.Cancel()
		m.expiry = nil
	}
	m.pending = nil
	m.gen++
}

func (m *RestockMover) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 計時器已無法取消時，舊的到期不可清掉新的紀錄
	if gen != m.gen {
		return
	}
	m.pending = nil
	m.expiry = nil
}
