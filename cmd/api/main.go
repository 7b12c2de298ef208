package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/core/cache"
	"meal-planner/internal/core/meal"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/mongostore"
	"meal-planner/internal/infrastructure/profileapi"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
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
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("profile_api", cfg.ProfileAPI.BaseURL),
		zap.String("profile_key", config.MaskSecret(cfg.ProfileAPI.APIKey)),
	)

	ctx := context.Background()

	// 初始化資料庫
	store, err := mongostore.Connect(ctx, &cfg.Mongo)
	if err != nil {
		common.LogFatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			common.LogError("Failed to close MongoDB", zap.Error(err))
		}
	}()
	if err := store.EnsureIndexes(ctx); err != nil {
		common.LogWarn("Failed to ensure indexes", zap.Error(err))
	}

	checkers := map[string]health.Checker{"mongo": store}

	// 初始化快取
	opts := []meal.Option{}
	var cacheStats health.StatsProvider
	if cfg.Cache.Enabled {
		var resultCache cache.Store
		switch cfg.Cache.Backend {
		case config.CacheBackendRedis:
			redisStore, err := cache.NewRedisStore(ctx, &cfg.Redis, &cfg.Cache)
			if err != nil {
				common.LogFatal("Failed to initialize redis cache", zap.Error(err))
			}
			checkers["redis"] = redisStore
			resultCache = redisStore
		default:
			manager := cache.NewManager(&cfg.Cache)
			cacheStats = manager
			resultCache = manager
		}
		defer resultCache.Close()
		opts = append(opts, meal.WithCache(resultCache))
	}

	// 食材營養資料來源：設定遠端服務時優先使用
	var profiles meal.ProfileLookup = store
	if cfg.ProfileAPI.BaseURL != "" {
		profiles = profileapi.NewClient(&cfg.ProfileAPI)
	}

	engine := meal.NewEngine(meal.Collaborators{
		Catalog:   store,
		Pantry:    store,
		Favorites: store,
		Recent:    store,
		Profiles:  profiles,
	}, meal.SettingsFromConfig(cfg), opts...)

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Engine:     engine,
		Store:      store,
		Checkers:   checkers,
		CacheStats: cacheStats,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
