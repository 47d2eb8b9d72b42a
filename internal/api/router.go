package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers/account"
	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/api/handlers/journal"
	"meal-planner/internal/api/handlers/pantry"
	"meal-planner/internal/api/handlers/recipe"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/state"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/persistence"
	"meal-planner/internal/pkg/common"
)

// 超時設置
const timeoutDuration = 120 * time.Second

// Dependencies 路由需要的服務
type Dependencies struct {
	Planner *planner.Planner
	Store   *state.Store
	Backend persistence.Backend
	Cache   *cache.CacheManager // 可為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件，requestid 需在 Logger 之前才能取得 ID
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Request.MaxBodyBytes))
	router.Use(requestTimeout(timeoutDuration))

	healthHandler := health.NewHandler(cfg, deps.Store, deps.Backend, deps.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	pantryHandler := pantry.NewHandler(deps.Planner)
	recipeHandler := recipe.NewHandler(deps.Planner)
	journalHandler := journal.NewHandler(deps.Planner)
	accountHandler := account.NewHandler(deps.Planner)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow).Middleware()
	limit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		limit = middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	api := router.Group("/api/v1")
	{
		api.GET("/state", accountHandler.GetState)
		api.GET("/options", accountHandler.Options)
		api.PUT("/profile", accountHandler.SetProfile)
		api.GET("/backup", accountHandler.Export)
		api.POST("/backup", accountHandler.Import)

		api.POST("/ingredients", pantryHandler.AddIngredient)
		api.PATCH("/ingredients/:id", pantryHandler.UpdateIngredient)
		api.DELETE("/ingredients/:id", pantryHandler.RemoveIngredient)
		api.POST("/ingredients/:id/must-use", pantryHandler.ToggleMustUse)
		api.POST("/allergies", pantryHandler.AddAllergy)
		api.DELETE("/allergies/:id", pantryHandler.RemoveAllergy)

		shopping := api.Group("/shopping-list")
		{
			shopping.DELETE("/:id", pantryHandler.RemoveShoppingEntry)
			shopping.POST("/:id/restock", dedup, pantryHandler.Restock)
			shopping.POST("/restock/undo", pantryHandler.UndoRestock)
		}

		recipes := api.Group("/recipes")
		{
			recipes.POST("/suggest", limit, recipeHandler.Suggest)
			recipes.POST("/reason", limit, recipeHandler.Reason)
			recipes.POST("/analyze", limit, recipeHandler.Analyze)
			recipes.POST("/make", dedup, recipeHandler.Make)
			recipes.POST("/shopping-list", dedup, recipeHandler.ShoppingList)
			recipes.POST("/evaluate", recipeHandler.Evaluate)
		}

		api.POST("/history/rate", dedup, journalHandler.Rate)
		api.DELETE("/history/:id", journalHandler.RemoveHistory)
		api.POST("/bookmarks", dedup, journalHandler.AddBookmark)
		api.DELETE("/bookmarks/:id", journalHandler.RemoveBookmark)
		api.POST("/preferences/learn", limit, journalHandler.Learn)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", cfg.Request.MaxBodyBytes),
	)

	return router
}

// requestTimeout 為請求加上截止時間，處理器尚未回應時以 504 結束
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", d),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeRequestTimeout,
				Message: "Request timeout",
				Details: gin.H{"timeout": d.String()},
			})
		}
	}
}
