package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/state"
	"meal-planner/internal/pkg/common"
)

// DefaultWriteTimeout 每次寫入的逾時
const DefaultWriteTimeout = 5 * time.Second

// Load 從儲存讀出所有分類。不存在或無法解析的分類使用預設值，
// 基準表沒有的使用者設定也改回預設值。table 為 nil 時使用內嵌基準表
func Load(ctx context.Context, backend Backend, prefix string, table *nutrition.Table) (state.State, error) {
	if table == nil {
		table = nutrition.DefaultTable()
	}
	s := state.Default()
	for _, b := range state.Buckets {
		data, err := backend.Get(ctx, prefix+string(b))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return state.State{}, err
		}

		candidate := s.Clone()
		if err := candidate.Decode(b, data); err != nil {
			common.LogWarn("持久化資料無法解析，使用預設值",
				zap.String("bucket", string(b)),
				zap.Error(err),
			)
			continue
		}
		s = candidate
	}
	s.History = s.History.SortedDesc()
	s.Bookmarks = s.Bookmarks.SortedDesc()

	if err := table.ValidateProfile(s.UserProfile); err != nil {
		common.LogWarn("使用者設定不在基準表中，使用預設值",
			zap.String("bucket", string(state.BucketUserProfile)),
			zap.Error(err),
		)
		s.UserProfile = nutrition.DefaultProfile()
	}
	return s, nil
}

// Persister 將提交後變更的分類整筆寫回
type Persister struct {
	backend Backend
	prefix  string
	timeout time.Duration
}

// NewPersister 建立寫入器
func NewPersister(backend Backend, prefix string) *Persister {
	return &Persister{backend: backend, prefix: prefix, timeout: DefaultWriteTimeout}
}

// Save 寫入指定分類
func (p *Persister) Save(ctx context.Context, snapshot state.State, buckets []state.Bucket) error {
	var errs []error
	for _, b := range buckets {
		data, err := json.Marshal(snapshot.Value(b))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.backend.Set(ctx, p.prefix+string(b), data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveAll 寫入所有分類
func (p *Persister) SaveAll(ctx context.Context, snapshot state.State) error {
	return p.Save(ctx, snapshot, state.Buckets)
}

// Listener 訂閱資料變更用的回呼，寫入失敗只記錄日誌
func (p *Persister) Listener() state.Listener {
	return func(snapshot state.State, changed []state.Bucket) {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.Save(ctx, snapshot, changed); err != nil {
			common.LogError("寫入持久化資料失敗", zap.Error(err))
		}
	}
}
