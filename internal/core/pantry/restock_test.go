package pantry

import (
	"testing"
	"time"

	"meal-planner/internal/pkg/schedule"
)

func restockFixture() (Inventory, ShoppingList) {
	inv := Inventory{{ID: "i1", Name: "卵", Quantity: 2, Unit: "個"}}
	list := ShoppingList{{ID: "s1", Name: "牛乳"}, {ID: "s2", Name: "豆腐"}}
	return inv, list
}

func TestRestockMoveCreatesDefaultIngredient(t *testing.T) {
	clock := schedule.NewManual()
	mover := NewRestockMover(clock, 5*time.Second)
	inv, list := restockFixture()

	move, ok := mover.Move(&inv, &list, "s1")
	if !ok {
		t.Fatal("expected move to succeed")
	}
	if move.ShoppingEntry != (ShoppingEntry{ID: "s1", Name: "牛乳"}) {
		t.Errorf("unexpected shopping entry %+v", move.ShoppingEntry)
	}
	created := move.Ingredient
	if created.Name != "牛乳" || created.Quantity != DefaultRestockQuantity || created.Unit != DefaultRestockUnit || created.MustUse {
		t.Errorf("unexpected created ingredient %+v", created)
	}
	if len(inv) != 2 || inv[1] != created {
		t.Errorf("expected ingredient appended, got %+v", inv)
	}
	if len(list) != 1 || list[0].ID != "s2" {
		t.Errorf("expected s1 removed, got %+v", list)
	}
}

func TestRestockUndoWithinWindow(t *testing.T) {
	clock := schedule.NewManual()
	mover := NewRestockMover(clock, 5*time.Second)
	inv, list := restockFixture()
	beforeInv := inv.Clone()

	mover.Move(&inv, &list, "s1")
	clock.Advance(4 * time.Second)

	move, ok := mover.Undo(&inv, &list)
	if !ok {
		t.Fatal("expected undo to succeed inside the window")
	}
	if len(list) != 2 || list[0] != move.ShoppingEntry || list[0].ID != "s1" {
		t.Errorf("expected exact entry prepended, got %+v", list)
	}
	if len(inv) != len(beforeInv) || inv[0] != beforeInv[0] {
		t.Errorf("expected created ingredient removed, got %+v", inv)
	}

	if _, ok := mover.Undo(&inv, &list); ok {
		t.Error("second undo should be a no-op")
	}
	if len(list) != 2 {
		t.Errorf("second undo changed the list: %+v", list)
	}
	if clock.Pending() != 0 {
		t.Errorf("expected expiry timer canceled, %d pending", clock.Pending())
	}
}

func TestRestockUndoAfterWindowIsNoop(t *testing.T) {
	clock := schedule.NewManual()
	mover := NewRestockMover(clock, 5*time.Second)
	inv, list := restockFixture()

	mover.Move(&inv, &list, "s1")
	clock.Advance(5 * time.Second)

	if _, ok := mover.Pending(); ok {
		t.Fatal("expected pending slot cleared on expiry")
	}
	if _, ok := mover.Undo(&inv, &list); ok {
		t.Fatal("undo after the window should be a no-op")
	}
	if len(inv) != 2 || len(list) != 1 {
		t.Errorf("expired undo changed state: inv=%+v list=%+v", inv, list)
	}
}

func TestRestockNewMoveReplacesPendingUndo(t *testing.T) {
	clock := schedule.NewManual()
	mover := NewRestockMover(clock, 5*time.Second)
	inv, list := restockFixture()

	mover.Move(&inv, &list, "s1")
	clock.Advance(3 * time.Second)
	second, _ := mover.Move(&inv, &list, "s2")

	// 第一次的計時器已取消，不會清掉第二次的紀錄
	clock.Advance(3 * time.Second)
	pending, ok := mover.Pending()
	if !ok || pending.ShoppingEntry.ID != "s2" {
		t.Fatalf("expected s2 pending, got %+v %v", pending, ok)
	}

	move, ok := mover.Undo(&inv, &list)
	if !ok || move.Ingredient.ID != second.Ingredient.ID {
		t.Fatalf("expected to undo the latest move, got %+v", move)
	}
	if len(list) != 1 || list[0].ID != "s2" {
		t.Errorf("only the latest move should be restored, got %+v", list)
	}
	if len(inv) != 2 || inv[1].Name != "牛乳" {
		t.Errorf("first move should stay committed, got %+v", inv)
	}
}

func TestRestockUnknownEntry(t *testing.T) {
	mover := NewRestockMover(schedule.NewManual(), 0)
	inv, list := restockFixture()
	if _, ok := mover.Move(&inv, &list, "missing"); ok {
		t.Fatal("expected unknown entry to be ignored")
	}
	if len(inv) != 1 || len(list) != 2 {
		t.Errorf("state changed: inv=%+v list=%+v", inv, list)
	}
}

func TestRestockUndoKeepsNamesUnique(t *testing.T) {
	mover := NewRestockMover(schedule.NewManual(), 5*time.Second)
	inv := Inventory{}
	list := ShoppingList{{ID: "s1", Name: "卵"}}

	mover.Move(&inv, &list, "s1")
	// 補貨後又因不足加回同名項目
	list.Append(ShoppingEntry{ID: "s9", Name: "卵 "})

	move, ok := mover.Undo(&inv, &list)
	if !ok || move.ShoppingEntry.ID != "s1" {
		t.Fatalf("expected undo to succeed, got %+v %v", move, ok)
	}
	if len(inv) != 0 {
		t.Errorf("expected created ingredient removed, got %+v", inv)
	}
	if len(list) != 1 || list[0].ID != "s9" {
		t.Errorf("expected a single 卵 entry, got %+v", list)
	}
	if _, ok := mover.Pending(); ok {
		t.Error("pending slot should be cleared")
	}
}
