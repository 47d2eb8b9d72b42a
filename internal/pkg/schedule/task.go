// Package schedule 提供可取消的延遲任務，取代隱含的計時器
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task 已排程的任務
type Task interface {
	// Cancel 取消尚未執行的任務，已執行或已取消時回傳 false
	Cancel() bool
}

// Scheduler 延遲執行函式
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// TimerScheduler 以 time.AfterFunc 實作
type TimerScheduler struct{}

type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) Cancel() bool {
	return t.timer.Stop()
}

// AfterFunc 在 d 之後於獨立 goroutine 執行 f
func (TimerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return &timerTask{timer: time.AfterFunc(d, f)}
}

// Manual 由呼叫端推進時間的排程器，用於需要決定性的場合
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	owner    *Manual
	due      time.Duration
	seq      int
	f        func()
	done     bool
	canceled bool
}

// NewManual 建立手動排程器
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc 登記在目前時間 + d 執行的任務
func (m *Manual) AfterFunc(d time.Duration, f func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{owner: m, due: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done || t.canceled {
		return false
	}
	t.canceled = true
	return true
}

// Advance 推進時間並依到期順序同步執行到期任務
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	pending := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.canceled:
		case t.due <= m.now:
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	m.tasks = pending
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Pending 尚未執行且未取消的任務數
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.canceled && !t.done {
			n++
		}
	}
	return n
}
