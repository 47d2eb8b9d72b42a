// Package planner 將食材、購物清單、歷史與營養評估組合成以交易執行的應用操作
package planner

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/core/assistant"
	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/learning"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/pantry"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/state"
	"meal-planner/internal/pkg/common"
	"meal-planner/internal/pkg/schedule"
)

// Options 補貨與偏好學習的時間設定
type Options struct {
	UndoWindow    time.Duration
	LearningDelay time.Duration
	LearningEvery int
	Scheduler     schedule.Scheduler
	Now           func() time.Time
}

// Planner 應用服務
type Planner struct {
	store     *state.Store
	table     *nutrition.Table
	assistant *assistant.Assistant
	mover     *pantry.RestockMover
	learner   *learning.Learner
	cadence   journal.Cadence
	now       func() time.Time
}

// New 建立 Planner。asst 為 nil 時停用所有文字生成相關操作
func New(store *state.Store, table *nutrition.Table, asst *assistant.Assistant, opts Options) *Planner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if table == nil {
		table = nutrition.DefaultTable()
	}

	p := &Planner{
		store:     store,
		table:     table,
		assistant: asst,
		mover:     pantry.NewRestockMover(opts.Scheduler, opts.UndoWindow),
		cadence:   journal.Cadence{Every: opts.LearningEvery},
		now:       opts.Now,
	}
	if asst != nil {
		p.learner = learning.NewLearner(asst, opts.Scheduler, opts.LearningDelay, p.saveSummary)
	}
	return p
}

// Snapshot 目前的完整資料
func (p *Planner) Snapshot() state.State {
	return p.store.Snapshot()
}

// Table 使用中的營養基準表
func (p *Planner) Table() *nutrition.Table {
	return p.table
}

// AddIngredientInput 新增食材
type AddIngredientInput struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	CustomUnit string  `json:"customUnit"`
}

// AddIngredient 解析單位後加入食材
func (p *Planner) AddIngredient(ctx context.Context, in AddIngredientInput) (pantry.Ingredient, error) {
	unit, err := pantry.ResolveUnit(in.Unit, strings.TrimSpace(in.CustomUnit))
	if err != nil {
		return pantry.Ingredient{}, err
	}

	var added pantry.Ingredient
	err = p.store.Update(ctx, func(st *state.State) error {
		var err error
		added, err = st.Ingredients.Add(strings.TrimSpace(in.Name), in.Quantity, unit)
		return err
	})
	return added, err
}

// UpdateIngredientInput 部分更新，Unit 為「その他」時使用 CustomUnit
type UpdateIngredientInput struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	CustomUnit string   `json:"customUnit"`
	MustUse    *bool    `json:"mustUse"`
}

// UpdateIngredient 更新食材，未知 id 回傳 false
func (p *Planner) UpdateIngredient(ctx context.Context, id string, in UpdateIngredientInput) (pantry.Ingredient, bool, error) {
	patch := pantry.IngredientPatch{Quantity: in.Quantity, MustUse: in.MustUse}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		patch.Name = &name
	}
	if in.Unit != nil {
		unit, err := pantry.ResolveUnit(*in.Unit, strings.TrimSpace(in.CustomUnit))
		if err != nil {
			return pantry.Ingredient{}, false, err
		}
		patch.Unit = &unit
	}

	var (
		updated pantry.Ingredient
		found   bool
	)
	err := p.store.Update(ctx, func(st *state.State) error {
		var err error
		if found, err = st.Ingredients.Update(id, patch); err != nil || !found {
			return err
		}
		updated, _ = st.Ingredients.Find(id)
		return nil
	})
	return updated, found, err
}

// RemoveIngredient 刪除食材
func (p *Planner) RemoveIngredient(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := p.store.Update(ctx, func(st *state.State) error {
		removed = st.Ingredients.Remove(id)
		return nil
	})
	return removed, err
}

// ToggleMustUse 切換「必須用完」
func (p *Planner) ToggleMustUse(ctx context.Context, id string) (pantry.Ingredient, bool, error) {
	var (
		ing   pantry.Ingredient
		found bool
	)
	err := p.store.Update(ctx, func(st *state.State) error {
		if found = st.Ingredients.ToggleMustUse(id); found {
			ing, _ = st.Ingredients.Find(id)
		}
		return nil
	})
	return ing, found, err
}

// AddAllergy 加入過敏原
func (p *Planner) AddAllergy(ctx context.Context, name string) (pantry.Allergy, error) {
	var added pantry.Allergy
	err := p.store.Update(ctx, func(st *state.State) error {
		var err error
		added, err = st.Allergies.Add(strings.TrimSpace(name))
		return err
	})
	return added, err
}

// RemoveAllergy 刪除過敏原
func (p *Planner) RemoveAllergy(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := p.store.Update(ctx, func(st *state.State) error {
		removed = st.Allergies.Remove(id)
		return nil
	})
	return removed, err
}

// RemoveShoppingEntry 刪除購物清單項目
func (p *Planner) RemoveShoppingEntry(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := p.store.Update(ctx, func(st *state.State) error {
		removed = st.ShoppingList.Remove(id)
		return nil
	})
	return removed, err
}

// Restock 將購物項目移入庫存，之後可在時間內取消
func (p *Planner) Restock(ctx context.Context, id string) (pantry.Move, bool, error) {
	var (
		move  pantry.Move
		moved bool
	)
	err := p.store.Update(ctx, func(st *state.State) error {
		move, moved = p.mover.Move(&st.Ingredients, &st.ShoppingList, id)
		return nil
	})
	return move, moved, err
}

// UndoRestock 取消最近一次補貨
func (p *Planner) UndoRestock(ctx context.Context) (pantry.Move, bool, error) {
	var (
		move   pantry.Move
		undone bool
	)
	err := p.store.Update(ctx, func(st *state.State) error {
		move, undone = p.mover.Undo(&st.Ingredients, &st.ShoppingList)
		return nil
	})
	return move, undone, err
}

// PendingRestock 目前仍可取消的補貨
func (p *Planner) PendingRestock() (pantry.Move, bool) {
	return p.mover.Pending()
}

// MakeRecipe 扣除食譜用量並記錄到歷史，任何食材不足時不做任何變更
func (p *Planner) MakeRecipe(ctx context.Context, s recipe.Suggestion) (journal.HistoryItem, error) {
	if strings.TrimSpace(s.RecipeName) == "" {
		return journal.HistoryItem{}, common.NewValidationError("recipeName is required")
	}
	if err := s.ValidateQuantities(); err != nil {
		return journal.HistoryItem{}, err
	}

	var item journal.HistoryItem
	err := p.store.Update(ctx, func(st *state.State) error {
		next, err := pantry.Apply(st.Ingredients, s.AllIngredients())
		if err != nil {
			return err
		}
		st.Ingredients = next
		item = st.History.Record(s, p.now())
		return nil
	})
	if err == nil {
		common.LogInfo("已製作食譜", zap.String("recipe", s.RecipeName))
	}
	return item, err
}

// AddToShoppingList 將不足的食材加到購物清單，回傳新增的項目
func (p *Planner) AddToShoppingList(ctx context.Context, s recipe.Suggestion) ([]pantry.ShoppingEntry, error) {
	if err := s.ValidateQuantities(); err != nil {
		return nil, err
	}
	var added []pantry.ShoppingEntry
	err := p.store.Update(ctx, func(st *state.State) error {
		needed := pantry.Shortfall(s.AllIngredients(), st.Ingredients)
		added = pantry.DedupAgainstExisting(needed, st.ShoppingList)
		st.ShoppingList.Append(added...)
		return nil
	})
	return added, err
}

// RateResult 評價結果
type RateResult struct {
	Item              journal.HistoryItem `json:"item"`
	Created           bool                `json:"created"`
	RatedCount        int                 `json:"ratedCount"`
	LearningTriggered bool                `json:"learningTriggered"`
}

// Rate 評價食譜，評價數達到門檻時排程偏好學習
func (p *Planner) Rate(ctx context.Context, s recipe.Suggestion, feedback journal.Feedback) (RateResult, error) {
	if strings.TrimSpace(s.RecipeName) == "" {
		return RateResult{}, common.NewValidationError("recipeName is required")
	}

	var (
		result  RateResult
		history journal.History
	)
	err := p.store.Update(ctx, func(st *state.State) error {
		result.Item, result.Created = st.History.Rate(s, feedback, p.now())
		result.RatedCount = st.History.RatedCount()
		history = st.History
		return nil
	})
	if err != nil {
		return RateResult{}, err
	}

	if p.learner != nil && p.cadence.ShouldTrigger(history) {
		result.LearningTriggered = true
		p.learner.Schedule(history)
	}
	return result, nil
}

// RemoveHistory 刪除歷史紀錄
func (p *Planner) RemoveHistory(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := p.store.Update(ctx, func(st *state.State) error {
		removed = st.History.Remove(id)
		return nil
	})
	return removed, err
}

// AddBookmark 收藏食譜
func (p *Planner) AddBookmark(ctx context.Context, s recipe.Suggestion) (journal.Bookmark, error) {
	var bm journal.Bookmark
	err := p.store.Update(ctx, func(st *state.State) error {
		var err error
		bm, err = st.Bookmarks.Add(s, p.now())
		return err
	})
	return bm, err
}

// RemoveBookmark 刪除書籤
func (p *Planner) RemoveBookmark(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := p.store.Update(ctx, func(st *state.State) error {
		removed = st.Bookmarks.Remove(id)
		return nil
	})
	return removed, err
}

// SetProfile 更新性別與年齡層
func (p *Planner) SetProfile(ctx context.Context, profile nutrition.Profile) error {
	if err := p.table.ValidateProfile(profile); err != nil {
		return err
	}
	return p.store.Update(ctx, func(st *state.State) error {
		st.UserProfile = profile
		return nil
	})
}

// Evaluation 以目前個人設定評估的營養結果
type Evaluation struct {
	Profile   nutrition.Profile         `json:"profile"`
	MealType  nutrition.MealType        `json:"mealType"`
	Reference nutrition.NutrientSet     `json:"reference"`
	Bands     map[string]nutrition.Band `json:"bands"`
	Rows      []nutrition.Assessment    `json:"rows"`
}

// Evaluate 以目前個人設定評估每份營養
func (p *Planner) Evaluate(values nutrition.NutrientSet, mealType nutrition.MealType) Evaluation {
	profile := p.store.Snapshot().UserProfile
	reference := p.table.ScaledReference(profile.Gender, profile.Age, mealType)
	return Evaluation{
		Profile:   profile,
		MealType:  mealType,
		Reference: reference,
		Bands:     nutrition.Evaluate(values, reference),
		Rows:      p.table.Assess(values, profile, mealType),
	}
}

// Learn 手動學習偏好
func (p *Planner) Learn(ctx context.Context) (string, error) {
	if p.learner == nil {
		return "", common.ErrServiceUnavailable
	}
	return p.learner.Learn(ctx, p.store.Snapshot().History)
}

func (p *Planner) saveSummary(ctx context.Context, summary string) error {
	return p.store.Update(ctx, func(st *state.State) error {
		st.PreferenceSummary = summary
		st.PreferenceSummaryLog.Prepend(summary, p.now())
		return nil
	})
}

// Export 匯出備份
func (p *Planner) Export() ([]byte, error) {
	return state.ExportJSON(p.store.Snapshot())
}

// Import 驗證後整批取代資料，失敗時保持原狀
func (p *Planner) Import(ctx context.Context, data []byte) error {
	next, err := state.ParseBackup(data, p.table)
	if err != nil {
		return err
	}
	if err := p.store.Replace(ctx, next); err != nil {
		return err
	}
	p.mover.Discard()
	if p.learner != nil {
		p.learner.Cancel()
	}
	common.LogInfo("已匯入備份",
		zap.Int("ingredients", len(next.Ingredients)),
		zap.Int("history", len(next.History)),
	)
	return nil
}
