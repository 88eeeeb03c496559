// Package limiter 提供固定窗口限流：Redis 实现用于多实例部署，内存实现用于单机与测试。
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitResult 限流结果
type LimitResult struct {
	Allowed       bool          `json:"allowed"`        // 是否允许通过
	Remaining     int64         `json:"remaining"`      // 剩余配额
	RetryAfter    time.Duration `json:"retry_after"`    // 建议重试时间
	TotalRequests int64         `json:"total_requests"` // 当前窗口已计数的请求
}

// Limiter 限流器接口
type Limiter interface {
	// Allow 检查是否允许请求通过
	Allow(ctx context.Context, key string) (*LimitResult, error)

	// AllowN 检查是否允许N个请求通过
	AllowN(ctx context.Context, key string, n int64) (*LimitResult, error)

	// Reset 重置限流状态
	Reset(ctx context.Context, key string) error

	// GetInfo 获取限流信息
	GetInfo(ctx context.Context, key string) (*LimitInfo, error)
}

// LimitInfo 限流信息
type LimitInfo struct {
	Limit     int64         `json:"limit"`      // 限流阈值
	Remaining int64         `json:"remaining"`  // 剩余配额
	Window    time.Duration `json:"window"`     // 时间窗口
	ResetTime time.Time     `json:"reset_time"` // 重置时间
}

// Config 限流配置
type Config struct {
	Rate      int64         `json:"rate"`       // 每个窗口允许的请求数
	Window    time.Duration `json:"window"`     // 时间窗口
	KeyPrefix string        `json:"key_prefix"` // Key前缀
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("limiter rate must be positive, got %d", c.Rate)
	}
	if c.Window < time.Second {
		return fmt.Errorf("limiter window must be at least 1s, got %s", c.Window)
	}
	return nil
}

// LimiterType 限流器类型
type LimiterType string

const (
	FixedWindow       LimiterType = "fixed_window"        // Redis 固定窗口
	MemoryFixedWindow LimiterType = "memory_fixed_window" // 进程内固定窗口
)

// Factory 限流器工厂
type Factory struct {
	redisClient redis.Cmdable
}

// NewFactory 创建限流器工厂；redisClient 可为 nil，此时只能创建内存限流器
func NewFactory(redisClient redis.Cmdable) *Factory {
	return &Factory{
		redisClient: redisClient,
	}
}

// Create 创建指定类型的限流器
func (f *Factory) Create(limiterType LimiterType, config *Config) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch limiterType {
	case FixedWindow:
		if f.redisClient == nil {
			return nil, fmt.Errorf("fixed window limiter requires a redis client")
		}
		return NewFixedWindowLimiter(f.redisClient, config), nil
	case MemoryFixedWindow:
		return NewMemoryLimiter(config), nil
	default:
		return nil, fmt.Errorf("unknown limiter type %q", limiterType)
	}
}

// windowStart 返回 now 所在窗口的起点
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}
