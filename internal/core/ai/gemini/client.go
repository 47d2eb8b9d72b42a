// Package gemini 呼叫 Gemini generateContent API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string    `json:"responseMimeType,omitempty"`
	ResponseSchema   ai.Schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Client Gemini 用戶端
type Client struct {
	client *resty.Client
	model  string
}

// NewClient 建立 Gemini 用戶端
func NewClient(cfg config.GeminiConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		client: client,
		model:  cfg.Model,
	}
}

// Model 使用中的模型名稱
func (c *Client) Model() string {
	return c.model
}

// Generate 發送 generateContent 請求並取出第一個候選的文字
func (c *Client) Generate(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.Schema != nil {
		body.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		err = common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("failed to send request to Gemini: %w", err))
		common.LogAICall(req.Purpose, time.Since(start), err)
		return nil, err
	}

	text, err := parseResponse(resp.StatusCode(), resp.Body())
	common.LogAICall(req.Purpose, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	common.LogDebug("Gemini 回應",
		zap.String("purpose", req.Purpose),
		zap.Int("length", len(text)),
	)
	return &ai.Response{Content: text}, nil
}

func parseResponse(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return "", common.Wrap(common.ErrExternalServiceFailure,
			fmt.Errorf("Gemini API returned status %d: %s", status, truncate(string(body), 200)))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("failed to parse Gemini response: %w", err))
	}

	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		if text := result.Candidates[0].Content.Parts[0].Text; text != "" {
			return text, nil
		}
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", common.Wrap(common.ErrExternalServiceFailure,
			fmt.Errorf("blocked: %s", result.PromptFeedback.BlockReason))
	}
	return "", common.Wrap(common.ErrExternalServiceFailure, fmt.Errorf("no candidate text in Gemini response"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
