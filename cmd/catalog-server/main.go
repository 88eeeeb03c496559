package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/api"
	"github.com/MorseWayne/catalog_shop/internal/cache"
	"github.com/MorseWayne/catalog_shop/internal/config"
	"github.com/MorseWayne/catalog_shop/internal/database"
	"github.com/MorseWayne/catalog_shop/internal/limiter"
	"github.com/MorseWayne/catalog_shop/internal/logger"
	"github.com/MorseWayne/catalog_shop/internal/repo"
	"github.com/MorseWayne/catalog_shop/internal/router"
	"github.com/MorseWayne/catalog_shop/internal/service"
	"github.com/MorseWayne/catalog_shop/internal/web"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, lg, nil
}

// initDatabase 初始化数据库连接并执行迁移
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 在 HTTP 服务器启动前完成迁移
	lg.Info("using migrations directory", zap.String("path", cfg.Migrations.Dir))
	if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return db, nil
}

// initRedis 限流或缓存启用时连接 Redis；不可达时返回 nil，由调用方退回内存实现
func initRedis(cfg *config.Config, lg *zap.Logger) *redis.Client {
	if !cfg.RateLimit.Enabled && !cfg.Cache.Enabled {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		lg.Warn("failed to connect to Redis, falling back to in-memory implementations", zap.String("addr", addr), zap.Error(err))
		return nil
	}
	lg.Info("redis connected", zap.String("addr", addr))
	return client
}

// initLimiter 初始化 POST /search 的限流器，未启用时返回 nil
func initLimiter(cfg *config.Config, rdb *redis.Client, lg *zap.Logger) limiter.Limiter {
	if !cfg.RateLimit.Enabled {
		lg.Info("search rate limit disabled")
		return nil
	}

	limiterCfg := &limiter.Config{
		Rate:      cfg.RateLimit.Rate,
		Window:    cfg.RateLimit.Window,
		KeyPrefix: "catalog:ratelimit",
	}

	factory := limiter.NewFactory(nil)
	limiterType := limiter.MemoryFixedWindow
	if rdb != nil {
		factory = limiter.NewFactory(rdb)
		limiterType = limiter.FixedWindow
	}

	lim, err := factory.Create(limiterType, limiterCfg)
	if err != nil {
		lg.Error("invalid rate limit configuration, search is not rate limited", zap.Error(err))
		return nil
	}
	lg.Info("search rate limit enabled",
		zap.String("type", string(limiterType)),
		zap.Int64("rate", cfg.RateLimit.Rate),
		zap.Duration("window", cfg.RateLimit.Window),
	)
	return lim
}

// initCache 初始化过滤统计缓存
func initCache(cfg *config.Config, rdb *redis.Client, lg *zap.Logger) cache.Cache {
	switch {
	case !cfg.Cache.Enabled:
		lg.Info("cache disabled")
		return cache.NewNullCache()
	case rdb != nil:
		lg.Info("cache enabled", zap.String("type", "redis"), zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewRedisCache(rdb, "catalog:cache")
	default:
		lg.Info("cache enabled", zap.String("type", "memory"), zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemoryCache()
	}
}

// initDependencies 初始化依赖注入链：仓储 -> 服务 -> 处理器
func initDependencies(cfg *config.Config, db *database.DB, searchLimiter limiter.Limiter, filterCache cache.Cache, lg *zap.Logger) (*router.Dependencies, error) {
	productRepo := repo.NewProductRepository(db.DB)
	categoryRepo := repo.NewCategoryRepository(db.DB)

	// 可选缓存装饰器
	filterRepo := repo.NewFilterRepository(db.DB)
	if cfg.Cache.Enabled {
		filterRepo = repo.NewCachedFilterRepository(filterRepo, filterCache, cfg.Cache.TTL, lg)
	}

	catalogService := service.NewCatalogService(productRepo, categoryRepo, lg)
	filterService := service.NewFilterService(categoryRepo, filterRepo, lg)
	searchService := service.NewSearchService(&service.SearchServiceConfig{
		URL:     cfg.Search.URL,
		Timeout: cfg.Search.Timeout,
	}, nil, lg)

	pages, err := web.NewHandler(catalogService, filterService, lg)
	if err != nil {
		return nil, fmt.Errorf("init page templates: %w", err)
	}

	return &router.Dependencies{
		ProductHandler: api.NewProductHandler(catalogService, lg),
		FilterHandler:  api.NewFilterHandler(filterService, lg),
		SearchHandler:  api.NewSearchHandler(searchService, lg),
		PageHandler:    pages,
		SearchLimiter:  searchLimiter,
		DB:             db,
	}, nil
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Info("server starting", zap.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", zap.Error(err))
			return
		}
	case <-quit:
		lg.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server shutdown error", zap.Error(err))
	}
	lg.Info("server exited")
}

func main() {
	// 1) 加载配置和初始化日志
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// 2) 初始化数据库连接并执行迁移
	db, err := initDatabase(cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// 3) Redis、限流器与缓存（均可选）
	rdb := initRedis(cfg, lg)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				lg.Error("failed to close redis client", zap.Error(err))
			}
		}()
	}
	searchLimiter := initLimiter(cfg, rdb, lg)
	filterCache := initCache(cfg, rdb, lg)

	// 4) 仓储、服务、处理器
	deps, err := initDependencies(cfg, db, searchLimiter, filterCache, lg)
	if err != nil {
		lg.Fatal("failed to initialize dependencies", zap.Error(err))
	}

	// 5) 路由与中间件
	handler := router.New().Setup(cfg, deps, lg)

	// 6) 启动 HTTP 服务器
	startServer(cfg, handler, lg)
}
