package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual()
	var order []int
	m.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	m.AfterFunc(time.Second, func() { order = append(order, 1) })

	if n := m.Advance(500 * time.Millisecond); n != 0 {
		t.Fatalf("expected nothing due, fired %d", n)
	}
	if n := m.Advance(2 * time.Second); n != 2 {
		t.Fatalf("expected 2 tasks fired, got %d", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("unexpected firing order %v", order)
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false
	task := m.AfterFunc(time.Second, func() { fired = true })
	if !task.Cancel() {
		t.Fatal("expected first cancel to succeed")
	}
	if task.Cancel() {
		t.Fatal("expected second cancel to report false")
	}
	m.Advance(time.Minute)
	if fired {
		t.Fatal("canceled task fired")
	}
	if m.Pending() != 0 {
		t.Errorf("expected no pending tasks, got %d", m.Pending())
	}
}

func TestManualCancelAfterFire(t *testing.T) {
	m := NewManual()
	task := m.AfterFunc(0, func() {})
	m.Advance(0)
	if task.Cancel() {
		t.Fatal("expected cancel after firing to report false")
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	var fired int32
	task := TimerScheduler{}.AfterFunc(time.Hour, func() { atomic.StoreInt32(&fired, 1) })
	if !task.Cancel() {
		t.Fatal("expected pending timer to be canceled")
	}
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("timer fired unexpectedly")
	}
}
