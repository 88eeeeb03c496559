// Package router 提供 HTTP 路由设置和中间件配置功能
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/api"
	"github.com/MorseWayne/catalog_shop/internal/config"
	"github.com/MorseWayne/catalog_shop/internal/limiter"
	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/resp"
	"github.com/MorseWayne/catalog_shop/internal/web"
)

// Pinger 健康检查依赖，*sql.DB 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies 包含路由设置所需的所有依赖
type Dependencies struct {
	ProductHandler *api.ProductHandler
	FilterHandler  *api.FilterHandler
	SearchHandler  *api.SearchHandler
	PageHandler    *web.Handler
	// SearchLimiter 为 nil 时 POST /search 不限流
	SearchLimiter limiter.Limiter
	DB            Pinger
}

// Router 路由器接口
type Router interface {
	Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler
}

// GinRouter Gin路由器实现
type GinRouter struct {
	engine *gin.Engine
	deps   *Dependencies
	logger *zap.Logger
}

// New 创建新的路由器实例
func New() Router {
	return &GinRouter{}
}

// Setup 设置路由和中间件。
// 返回的 handler 外层依次为 RequestID -> Recovery -> Timeout -> CORS -> AccessLog，最内层是 gin 引擎。
func (r *GinRouter) Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	// 根据环境设置 Gin 模式
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r.engine = gin.New()
	r.engine.HandleMethodNotAllowed = true
	r.deps = deps
	r.logger = lg

	r.setupRoutes()

	return middleware.Chain(r.engine,
		middleware.RequestID,
		middleware.Recovery(lg),
		middleware.Timeout(cfg.App.RequestTimeout),
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:         600,
		}),
		middleware.AccessLog(lg),
	)
}

// setupRoutes 设置所有路由
func (r *GinRouter) setupRoutes() {
	r.engine.GET("/healthz", r.healthCheck)

	// JSON API
	r.engine.GET("/products", r.wrapHandler(r.deps.ProductHandler.ListProducts))
	r.engine.GET("/products/:product_id", r.wrapHandler(r.deps.ProductHandler.GetProduct))
	r.engine.GET("/categories", r.wrapHandler(r.deps.ProductHandler.ListCategories))
	r.engine.GET("/filters", r.wrapHandler(r.deps.FilterHandler.GetFilters))

	search := []gin.HandlerFunc{}
	if r.deps.SearchLimiter != nil {
		search = append(search, limiter.SearchRateLimitMiddleware(r.deps.SearchLimiter, r.logger))
	}
	search = append(search, r.wrapHandler(r.deps.SearchHandler.Search))
	r.engine.POST("/search", search...)

	// 页面
	if r.deps.PageHandler != nil {
		r.engine.GET("/", r.wrapHandler(r.deps.PageHandler.Listing))
		r.engine.GET("/product/:product_id", r.wrapHandler(r.deps.PageHandler.Product))
	}

	r.engine.NoRoute(func(c *gin.Context) {
		reqID := middleware.RequestIDFromContext(c.Request.Context())
		resp.Error(c.Writer, http.StatusNotFound, resp.CodeNotFound, "route not found", reqID, "")
	})
	r.engine.NoMethod(func(c *gin.Context) {
		reqID := middleware.RequestIDFromContext(c.Request.Context())
		resp.Error(c.Writer, http.StatusMethodNotAllowed, resp.CodeInvalidParam, "method not allowed", reqID, "")
	})
}

// healthCheck 健康检查处理器；配置了数据库时同时检查连接
func (r *GinRouter) healthCheck(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c.Request.Context())
	if r.deps.DB != nil {
		if err := r.deps.DB.PingContext(c.Request.Context()); err != nil {
			r.logger.Error("health check failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(c.Writer, http.StatusServiceUnavailable, resp.CodeInternalError, "database unavailable", reqID, "")
			return
		}
	}
	resp.OK(c.Writer, map[string]string{"status": "ok"}, reqID, "")
}

// wrapHandler 将标准的 http.HandlerFunc 包装为 gin.HandlerFunc，
// 并把 gin 的路径参数同步到 r.PathValue
func (r *GinRouter) wrapHandler(handler func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range c.Params {
			c.Request.SetPathValue(p.Key, p.Value)
		}
		handler(c.Writer, c.Request)
	}
}
