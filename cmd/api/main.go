package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/api"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/gemini"
	"meal-planner/internal/core/ai/service"
	"meal-planner/internal/core/assistant"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/state"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/persistence"
	"meal-planner/internal/pkg/common"
	"meal-planner/internal/pkg/schedule"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("gemini_enabled", cfg.Gemini.Enabled),
		zap.String("gemini_model", cfg.Gemini.Model),
	)

	backend, err := openBackend(cfg)
	if err != nil {
		common.LogFatal("Failed to open storage backend", zap.Error(err))
	}
	defer backend.Close()

	table := nutrition.DefaultTable()
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	initial, err := persistence.Load(loadCtx, backend, cfg.Storage.KeyPrefix, table)
	cancelLoad()
	if err != nil {
		common.LogFatal("Failed to load persisted data", zap.Error(err))
	}

	store := state.NewStore(initial, cfg.Queue.MaxSize)
	store.Subscribe(persistence.NewPersister(backend, cfg.Storage.KeyPrefix).Listener())
	store.Start()
	defer store.Close()

	// 初始化快取，停用時為 nil
	cacheManager := cache.NewManager(cfg.Cache)
	if cacheManager != nil {
		defer cacheManager.Close()
	}

	var asst *assistant.Assistant
	if cfg.Gemini.Enabled {
		asst = assistant.New(service.NewService(gemini.NewClient(cfg.Gemini), cacheManager))
	} else {
		common.LogWarn("文字生成服務未啟用，提案與分析功能將回傳 503")
	}

	p := planner.New(store, table, asst, planner.Options{
		UndoWindow:    cfg.Planner.UndoWindow,
		LearningDelay: cfg.Planner.LearningDelay,
		LearningEvery: cfg.Planner.LearningEvery,
		Scheduler:     schedule.TimerScheduler{},
	})

	router := api.SetupRouter(cfg, api.Dependencies{
		Planner: p,
		Store:   store,
		Backend: backend,
		Cache:   cacheManager,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

func openBackend(cfg *config.Config) (persistence.Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return persistence.NewRedisBackend(ctx, cfg.Storage.Redis)
	case config.StoragePostgres:
		return persistence.NewPostgresBackend(cfg.Storage.Postgres)
	default:
		return persistence.NewMemoryBackend(), nil
	}
}
