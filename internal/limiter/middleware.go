package limiter

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/resp"
)

// checkTimeout 单次限流检查的最长等待时间
const checkTimeout = 500 * time.Millisecond

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	// 限流器
	Limiter Limiter

	// Key生成函数
	KeyGenerator func(*gin.Context) string

	// 限流器异常处理函数，默认记录日志后放行
	ErrorHandler func(*gin.Context, error)

	// 限流回调函数
	OnLimitReached func(*gin.Context, *LimitResult)

	// 是否跳过限流检查
	Skip func(*gin.Context) bool

	// 响应头配置
	Headers *HeaderConfig

	Logger *zap.Logger
}

// HeaderConfig 响应头配置
type HeaderConfig struct {
	// 是否添加限流头
	Enable bool

	RemainingHeader  string // X-RateLimit-Remaining
	RetryAfterHeader string // Retry-After
}

// DefaultHeaderConfig 默认头配置
func DefaultHeaderConfig() *HeaderConfig {
	return &HeaderConfig{
		Enable:           true,
		RemainingHeader:  "X-RateLimit-Remaining",
		RetryAfterHeader: "Retry-After",
	}
}

// DefaultKeyGenerator 默认Key生成器（基于IP）
func DefaultKeyGenerator(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// PathKeyGenerator 路径+IP Key生成器
func PathKeyGenerator(c *gin.Context) string {
	return fmt.Sprintf("path:%s:%s:ip:%s", c.Request.Method, c.FullPath(), c.ClientIP())
}

// RateLimitMiddleware 创建限流中间件
func RateLimitMiddleware(config *MiddlewareConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator
	}
	if config.ErrorHandler == nil {
		logger := config.Logger
		config.ErrorHandler = func(c *gin.Context, err error) {
			logger.Error("rate limiter unavailable, request allowed",
				zap.String("request_id", middleware.RequestIDFromContext(c.Request.Context())),
				zap.Error(err),
			)
			c.Next()
		}
	}
	if config.OnLimitReached == nil {
		config.OnLimitReached = defaultOnLimitReached
	}
	if config.Headers == nil {
		config.Headers = DefaultHeaderConfig()
	}

	return func(c *gin.Context) {
		if config.Skip != nil && config.Skip(c) {
			c.Next()
			return
		}

		key := config.KeyGenerator(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		result, err := config.Limiter.Allow(ctx, key)
		cancel()
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		if config.Headers.Enable {
			setRateLimitHeaders(c, result, config.Headers)
		}

		if !result.Allowed {
			config.Logger.Warn("rate limit reached",
				zap.String("key", key),
				zap.Duration("retry_after", result.RetryAfter),
				zap.String("request_id", middleware.RequestIDFromContext(c.Request.Context())),
			)
			config.OnLimitReached(c, result)
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders 设置限流相关的响应头
func setRateLimitHeaders(c *gin.Context, result *LimitResult, headers *HeaderConfig) {
	if headers.RemainingHeader != "" {
		c.Header(headers.RemainingHeader, strconv.FormatInt(result.Remaining, 10))
	}
	if headers.RetryAfterHeader != "" && !result.Allowed {
		c.Header(headers.RetryAfterHeader, strconv.FormatInt(retryAfterSeconds(result.RetryAfter), 10))
	}
}

// retryAfterSeconds 向上取整到秒，至少为 1
func retryAfterSeconds(d time.Duration) int64 {
	s := int64(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// defaultOnLimitReached 默认限流回调
func defaultOnLimitReached(c *gin.Context, _ *LimitResult) {
	reqID := middleware.RequestIDFromContext(c.Request.Context())
	resp.Error(c.Writer, http.StatusTooManyRequests, resp.CodeTooManyRequests,
		"too many requests, please retry later", reqID, "")
}

// SearchRateLimitMiddleware 聊天搜索专用限流中间件，按客户端 IP 计数
func SearchRateLimitMiddleware(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return RateLimitMiddleware(&MiddlewareConfig{
		Limiter: limiter,
		KeyGenerator: func(c *gin.Context) string {
			return fmt.Sprintf("search:ip:%s", c.ClientIP())
		},
		Headers: DefaultHeaderConfig(),
		Logger:  logger,
	})
}
