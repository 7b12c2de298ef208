package api

import (
	"fmt"
	"time"

	"meal-planner/internal/api/handlers/health"
	nutritionHandler "meal-planner/internal/api/handlers/nutrition"
	pantryHandler "meal-planner/internal/api/handlers/pantry"
	plannerHandler "meal-planner/internal/api/handlers/planner"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/meal"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制預設 (1MB)
	defaultMaxBodySize = 1 << 20
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Engine     *meal.Engine
	Store      pantryHandler.Store
	Checkers   map[string]health.Checker
	CacheStats health.StatsProvider
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if deps.Engine == nil || deps.Store == nil {
		return nil, fmt.Errorf("engine and store are required")
	}

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Checkers, deps.CacheStats)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	nutritionH := nutritionHandler.NewHandler(deps.Engine)
	plannerH := plannerHandler.NewHandler(deps.Engine)
	pantryH := pantryHandler.NewHandler(deps.Store, deps.Engine)

	// API 路由組
	api := router.Group("/api/v1", middleware.Timeout(timeoutDuration))
	{
		nutritionGroup := api.Group("/nutrition")
		{
			nutritionGroup.POST("/contribution", nutritionH.HandleContribution)
			nutritionGroup.POST("/totals", nutritionH.HandleTotals)
			nutritionGroup.POST("/daily-values", nutritionH.HandleDailyValues)
		}

		api.GET("/meals/:mealId/nutrition", nutritionH.HandleMealNutrition)
		api.POST("/eligibility", plannerH.HandleEvaluate)

		userGroup := api.Group("/users/:userId")
		{
			userGroup.GET("/meals/:mealId/eligibility", plannerH.HandleMealEligibility)
			userGroup.GET("/suggestions", plannerH.HandleSuggestions)
			userGroup.GET("/suggestions/surprise", plannerH.HandleSurprise)
			userGroup.GET("/cookable", plannerH.HandleCookable)

			userGroup.GET("/pantry", pantryH.HandleGetPantry)
			userGroup.PUT("/pantry", pantryH.HandleReplacePantry)
			userGroup.POST("/pantry", pantryH.HandleAddToPantry)
			userGroup.DELETE("/pantry", pantryH.HandleRemoveFromPantry)

			userGroup.POST("/favorites/:mealId", pantryH.HandleAddFavorite)
			userGroup.DELETE("/favorites/:mealId", pantryH.HandleRemoveFavorite)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
