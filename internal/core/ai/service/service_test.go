package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Generate(_ context.Context, req *ai.Request) (*ai.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Response{Content: "answer:" + req.Prompt}, nil
}

func (p *countingProvider) Model() string { return "fake" }

func newCache(t *testing.T) *cache.CacheManager {
	t.Helper()
	m := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestGenerateCachesCacheableRequests(t *testing.T) {
	provider := &countingProvider{}
	svc := NewService(provider, newCache(t))
	req := &ai.Request{Purpose: "reason", Prompt: "  理由 ", Cacheable: true}

	first, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected one provider call, got %d", provider.calls)
	}
	if first.CacheHit || !second.CacheHit || second.Content != "answer:理由" {
		t.Errorf("unexpected responses %+v %+v", first, second)
	}
}

func TestGenerateSkipsCacheForSuggestions(t *testing.T) {
	provider := &countingProvider{}
	svc := NewService(provider, newCache(t))
	req := &ai.Request{Purpose: "suggest", Prompt: "提案"}
	_, _ = svc.Generate(context.Background(), req)
	_, _ = svc.Generate(context.Background(), req)
	if provider.calls != 2 {
		t.Errorf("expected every suggestion to reach the provider, got %d calls", provider.calls)
	}
}

func TestGeneratePropagatesErrors(t *testing.T) {
	provider := &countingProvider{err: common.ErrExternalServiceFailure}
	svc := NewService(provider, nil)
	_, err := svc.Generate(context.Background(), &ai.Request{Prompt: "x", Cacheable: true})
	if !errors.Is(err, common.ErrExternalServiceFailure) {
		t.Fatalf("expected ErrExternalServiceFailure, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), &ai.Request{Prompt: "  "}); !common.IsValidationError(err) {
		t.Errorf("expected validation error for empty prompt, got %v", err)
	}
}
