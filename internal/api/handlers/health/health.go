package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/state"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/persistence"
	"meal-planner/internal/pkg/common"
)

// readyTimeout 就緒檢查時連線儲存後端的上限
const readyTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Storage   string                 `json:"storage"`
	Assistant bool                   `json:"assistant_enabled"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     state.Status           `json:"queue"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg     *config.Config
	store   *state.Store
	backend persistence.Backend
	cache   *cache.CacheManager
}

// NewHandler 建立健康檢查處理器，cacheManager 可為 nil
func NewHandler(cfg *config.Config, store *state.Store, backend persistence.Backend, cacheManager *cache.CacheManager) *Handler {
	return &Handler{cfg: cfg, store: store, backend: backend, cache: cacheManager}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Storage:   h.cfg.Storage.Driver,
		Assistant: h.cfg.Gemini.Enabled,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Queue: h.store.Status(),
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		response.Cache = &stats
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，儲存後端無法連線時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		common.LogWarn("儲存後端無法連線", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"storage": h.cfg.Storage.Driver,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
