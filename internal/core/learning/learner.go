// Package learning 依評價累積情況重新產生使用者的偏好摘要
package learning

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/core/journal"
	"meal-planner/internal/pkg/common"
	"meal-planner/internal/pkg/schedule"
)

const (
	// DefaultDelay 觸發後到實際送出摘要請求的延遲
	DefaultDelay = 100 * time.Millisecond
	// DefaultTimeout 背景摘要請求的逾時
	DefaultTimeout = 60 * time.Second
)

// Summarizer 將評價整理為偏好摘要
type Summarizer interface {
	Summarize(ctx context.Context, d journal.Digest) (string, error)
}

// SummaryHandler 取得新摘要後的處理，例如寫回資料
type SummaryHandler func(ctx context.Context, summary string) error

// Learner 管理自動與手動的偏好學習，同時只保留一個待執行的自動學習
type Learner struct {
	summarizer Summarizer
	scheduler  schedule.Scheduler
	delay      time.Duration
	timeout    time.Duration
	onSummary  SummaryHandler

	mu      sync.Mutex
	pending schedule.Task
	gen     uint64
}

// NewLearner 建立 Learner
func NewLearner(summarizer Summarizer, scheduler schedule.Scheduler, delay time.Duration, onSummary SummaryHandler) *Learner {
	if scheduler == nil {
		scheduler = schedule.TimerScheduler{}
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Learner{
		summarizer: summarizer,
		scheduler:  scheduler,
		delay:      delay,
		timeout:    DefaultTimeout,
		onSummary:  onSummary,
	}
}

// Schedule 以評價後的歷史快照排程一次自動學習，取代尚未執行的排程
func (l *Learner) Schedule(history journal.History) {
	snapshot := history.Clone()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending != nil {
		l.pending.Cancel()
	}
	l.gen++
	gen := l.gen
	l.pending = l.scheduler.AfterFunc(l.delay, func() { l.run(gen, snapshot) })

	common.LogInfo("已排程偏好學習",
		zap.Int("rated", snapshot.RatedCount()),
		zap.Duration("delay", l.delay),
	)
}

// Learn 立即學習，沒有任何評價時回傳 ErrNothingToLearn
func (l *Learner) Learn(ctx context.Context, history journal.History) (string, error) {
	if history.RatedCount() == 0 {
		return "", common.ErrNothingToLearn
	}
	summary, err := l.summarizer.Summarize(ctx, history.Digest())
	if err != nil {
		return "", err
	}
	if l.onSummary != nil {
		if err := l.onSummary(ctx, summary); err != nil {
			return "", err
		}
	}
	return summary, nil
}

// Cancel 取消尚未執行的自動學習
func (l *Learner) Cancel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return false
	}
	l.gen++
	canceled := l.pending.Cancel()
	l.pending = nil
	return canceled
}

func (l *Learner) run(gen uint64, history journal.History) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.pending = nil
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	summary, err := l.Learn(ctx, history)
	if err != nil {
		common.LogWarn("自動偏好學習失敗", zap.Error(err))
		return
	}
	common.LogInfo("已更新偏好摘要", zap.Int("length", len(summary)))
}
