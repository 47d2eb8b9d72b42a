// Package ai 定義文字生成服務的請求、回應與呼叫介面
package ai

import "context"

// Schema JSON 回應格式，依 Gemini responseSchema 的寫法
type Schema map[string]interface{}

// Request 文字生成請求
type Request struct {
	// Purpose 用途，僅供日誌與快取分區
	Purpose string
	Prompt  string
	// Schema 為 nil 時回應為自由文字
	Schema Schema
	// Cacheable 相同 prompt 可重用先前的回應
	Cacheable bool
}

// Response 文字生成回應
type Response struct {
	Content  string `json:"content"`
	CacheHit bool   `json:"cache_hit"`
}

// Provider 實際呼叫外部服務的用戶端
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	Model() string
}

// Generator 應用層使用的生成介面
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}
