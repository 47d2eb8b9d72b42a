package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

// DefaultQueueSize 未設定時的佇列容量
const DefaultQueueSize = 100

// ErrStoreClosed 資料庫已關閉
var ErrStoreClosed = errors.New("state store is closed")

// Listener 每次提交後收到新的快照與變更的分類，不可修改快照
type Listener func(snapshot State, changed []Bucket)

// Mutation 在資料副本上執行的變更，回傳錯誤時副本會被丟棄
type Mutation func(s *State) error

type request struct {
	ctx    context.Context
	fn     Mutation
	result chan error
}

// Status 佇列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
}

// Store 以單一 worker 依序處理變更，每次變更都是完整的交易
type Store struct {
	mu      sync.RWMutex
	current State

	listenersMu sync.RWMutex
	listeners   []Listener

	queue     chan *request
	maxSize   int
	done      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
	processed int64
}

// NewStore 建立資料庫，需呼叫 Start 才會開始處理變更
func NewStore(initial State, queueSize int) *Store {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Store{
		current: initial.Clone(),
		queue:   make(chan *request, queueSize),
		maxSize: queueSize,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start 啟動處理佇列的 worker
func (s *Store) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Close 停止接受變更，尚在佇列中的請求回傳 ErrStoreClosed
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.startOnce.Do(func() {
		close(s.stopped)
	})
	<-s.stopped
}

// Snapshot 目前資料的副本
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe 註冊提交後的通知，依註冊順序同步呼叫
func (s *Store) Subscribe(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Update 將變更排入佇列並等待提交結果
func (s *Store) Update(ctx context.Context, fn Mutation) error {
	if len(s.queue) >= s.maxSize {
		return common.Wrap(common.ErrTooManyRequests, fmt.Errorf("state queue is full"))
	}

	req := &request{
		ctx:    ctx,
		fn:     fn,
		result: make(chan error, 1),
	}

	select {
	case s.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStoreClosed
	}

	// 已排入的請求一定會被處理或在關閉時回覆
	select {
	case err := <-req.result:
		return err
	case <-s.stopped:
		select {
		case err := <-req.result:
			return err
		default:
			return ErrStoreClosed
		}
	}
}

// Replace 以新資料整批取代目前資料
func (s *Store) Replace(ctx context.Context, next State) error {
	return s.Update(ctx, func(st *State) error {
		*st = next.Clone()
		return nil
	})
}

// Status 取得佇列狀態
func (s *Store) Status() Status {
	return Status{
		QueueLength:    len(s.queue),
		ProcessedCount: atomic.LoadInt64(&s.processed),
		MaxQueueSize:   s.maxSize,
	}
}

func (s *Store) run() {
	defer close(s.stopped)
	for {
		select {
		case req := <-s.queue:
			req.result <- s.apply(req)
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *Store) drain() {
	for {
		select {
		case req := <-s.queue:
			req.result <- ErrStoreClosed
		default:
			return
		}
	}
}

func (s *Store) apply(req *request) (err error) {
	if err := req.ctx.Err(); err != nil {
		return err
	}
	defer atomic.AddInt64(&s.processed, 1)
	defer func() {
		if r := recover(); r != nil {
			common.LogError("資料變更時發生 panic", zap.Any("panic", r))
			err = common.Wrap(common.ErrInternalError, fmt.Errorf("panic: %v", r))
		}
	}()

	s.mu.RLock()
	before := s.current
	s.mu.RUnlock()

	next := before.Clone()
	if err := req.fn(&next); err != nil {
		return err
	}

	changed := Changed(before, next)
	if len(changed) == 0 {
		return nil
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	common.LogDebug("資料已提交", zap.Any("changed", changed))

	s.listenersMu.RLock()
	listeners := s.listeners
	s.listenersMu.RUnlock()
	for _, l := range listeners {
		l(next, changed)
	}
	return nil
}
