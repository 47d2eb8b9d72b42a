// Package journal 記錄做過的食譜、評價、書籤與偏好摘要歷程
package journal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"meal-planner/internal/pkg/common"
)

// Feedback 食譜評價，空字串表示未評價
type Feedback string

const (
	FeedbackNone  Feedback = ""
	FeedbackGreat Feedback = "great"
	FeedbackGood  Feedback = "good"
	FeedbackBad   Feedback = "bad"
)

// ParseFeedback 解析評價字串
func ParseFeedback(s string) (Feedback, error) {
	switch f := Feedback(s); f {
	case FeedbackGreat, FeedbackGood, FeedbackBad:
		return f, nil
	}
	return FeedbackNone, common.NewValidationError(fmt.Sprintf("unknown feedback %q", s))
}

// Positive great 與 good 視為喜歡
func (f Feedback) Positive() bool {
	return f == FeedbackGreat || f == FeedbackGood
}

// MarshalJSON 未評價輸出為 null
func (f Feedback) MarshalJSON() ([]byte, error) {
	if f == FeedbackNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(f))
}

// UnmarshalJSON null 或空字串視為未評價
func (f *Feedback) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = FeedbackNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = FeedbackNone
		return nil
	}
	parsed, err := ParseFeedback(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
