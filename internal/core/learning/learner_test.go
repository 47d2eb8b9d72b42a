package learning

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"meal-planner/internal/core/journal"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
	"meal-planner/internal/pkg/schedule"
)

type fakeSummarizer struct {
	mu      sync.Mutex
	digests []journal.Digest
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, d journal.Digest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digests = append(f.digests, d)
	if f.err != nil {
		return "", f.err
	}
	return "summary", nil
}

func rated(names ...string) journal.History {
	h := journal.History{}
	for _, n := range names {
		h = append(h, journal.HistoryItem{Suggestion: recipe.Suggestion{RecipeName: n}, Feedback: journal.FeedbackGood})
	}
	return h
}

func TestScheduleRunsAfterDelayWithSnapshot(t *testing.T) {
	clock := schedule.NewManual()
	summarizer := &fakeSummarizer{}
	var saved []string
	l := NewLearner(summarizer, clock, 100*time.Millisecond, func(_ context.Context, s string) error {
		saved = append(saved, s)
		return nil
	})

	history := rated("a", "b", "c", "d", "e")
	l.Schedule(history)
	history[0].Feedback = journal.FeedbackBad

	clock.Advance(50 * time.Millisecond)
	if len(summarizer.digests) != 0 {
		t.Fatal("summarization must wait for the delay")
	}
	clock.Advance(50 * time.Millisecond)

	if len(summarizer.digests) != 1 {
		t.Fatalf("expected one summarization, got %d", len(summarizer.digests))
	}
	if want := []string{"a", "b", "c", "d", "e"}; !reflect.DeepEqual(summarizer.digests[0].Liked, want) {
		t.Errorf("summarized %v, want snapshot %v", summarizer.digests[0].Liked, want)
	}
	if !reflect.DeepEqual(saved, []string{"summary"}) {
		t.Errorf("saved = %v", saved)
	}
}

func TestScheduleReplacesPending(t *testing.T) {
	clock := schedule.NewManual()
	summarizer := &fakeSummarizer{}
	l := NewLearner(summarizer, clock, 100*time.Millisecond, nil)

	l.Schedule(rated("a"))
	l.Schedule(rated("a", "b"))
	clock.Advance(time.Second)

	if len(summarizer.digests) != 1 {
		t.Fatalf("expected a single summarization, got %d", len(summarizer.digests))
	}
	if len(summarizer.digests[0].Liked) != 2 {
		t.Errorf("expected the latest snapshot, got %v", summarizer.digests[0].Liked)
	}
}

func TestCancel(t *testing.T) {
	clock := schedule.NewManual()
	summarizer := &fakeSummarizer{}
	l := NewLearner(summarizer, clock, time.Millisecond, nil)

	l.Schedule(rated("a"))
	if !l.Cancel() {
		t.Fatal("expected pending learning to be canceled")
	}
	clock.Advance(time.Second)
	if len(summarizer.digests) != 0 {
		t.Error("canceled learning ran")
	}
}

func TestLearnWithoutRatingsIsInformational(t *testing.T) {
	summarizer := &fakeSummarizer{}
	l := NewLearner(summarizer, schedule.NewManual(), 0, nil)

	history := journal.History{{Suggestion: recipe.Suggestion{RecipeName: "x"}}}
	if _, err := l.Learn(context.Background(), history); !errors.Is(err, common.ErrNothingToLearn) {
		t.Fatalf("expected ErrNothingToLearn, got %v", err)
	}
	if len(summarizer.digests) != 0 {
		t.Error("summarizer should not be called")
	}
}

func TestLearnPropagatesErrors(t *testing.T) {
	summarizer := &fakeSummarizer{err: common.ErrExternalServiceFailure}
	saved := false
	l := NewLearner(summarizer, schedule.NewManual(), 0, func(context.Context, string) error {
		saved = true
		return nil
	})
	if _, err := l.Learn(context.Background(), rated("a")); !errors.Is(err, common.ErrExternalServiceFailure) {
		t.Fatalf("expected ErrExternalServiceFailure, got %v", err)
	}
	if saved {
		t.Error("failed summarization must not be saved")
	}
}
