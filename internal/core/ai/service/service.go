// Package service 在文字生成用戶端外加上快取與日誌
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/pkg/common"
)

// Service 文字生成服務
type Service struct {
	provider     ai.Provider
	cacheManager *cache.CacheManager
}

// NewService 建立服務，cacheManager 可為 nil
func NewService(provider ai.Provider, cacheManager *cache.CacheManager) *Service {
	return &Service{
		provider:     provider,
		cacheManager: cacheManager,
	}
}

// Generate 統一對外方法
func (s *Service) Generate(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, common.NewValidationError("prompt is empty")
	}
	normalized := *req
	normalized.Prompt = prompt

	useCache := req.Cacheable && s.cacheManager != nil
	key := cache.Key(req.Purpose, prompt)
	if useCache {
		if val, err := s.cacheManager.Get(key); err == nil {
			return &ai.Response{Content: val, CacheHit: true}, nil
		}
	}

	resp, err := s.provider.Generate(ctx, &normalized)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cacheManager.Set(key, resp.Content); err != nil {
			common.LogWarn("回應未寫入快取", zap.String("purpose", req.Purpose), zap.Error(err))
		}
	}
	return resp, nil
}

// Model 使用中的模型名稱
func (s *Service) Model() string {
	return s.provider.Model()
}
