package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter 基于 Redis 的固定窗口限流器，多个服务实例共享计数
type FixedWindowLimiter struct {
	client    redis.Cmdable
	config    *Config
	keyPrefix string
	now       func() time.Time
}

// NewFixedWindowLimiter 创建固定窗口限流器
func NewFixedWindowLimiter(client redis.Cmdable, config *Config) *FixedWindowLimiter {
	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "limiter:fw"
	}
	return &FixedWindowLimiter{
		client:    client,
		config:    config,
		keyPrefix: prefix,
		now:       time.Now,
	}
}

// fixedWindowScript 原子地检查并累加窗口计数
// KEYS[1]: 当前窗口的计数 key
// ARGV[1]: 限制数量  ARGV[2]: 窗口毫秒数  ARGV[3]: 请求数量  ARGV[4]: 距窗口结束的毫秒数
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local requests = tonumber(ARGV[3])
local remaining_ms = tonumber(ARGV[4])

local current = tonumber(redis.call('GET', key) or 0)
if current + requests > limit then
    return {0, limit - current, remaining_ms, current}
end

local count = redis.call('INCRBY', key, requests)
if count == requests then
    redis.call('PEXPIRE', key, window_ms)
end
return {1, limit - count, 0, count}
`)

// getKey 生成当前窗口的 Redis key
func (fw *FixedWindowLimiter) getKey(key string, start time.Time) string {
	return fmt.Sprintf("%s:%s:%d", fw.keyPrefix, key, start.Unix())
}

// Allow 检查是否允许请求通过
func (fw *FixedWindowLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	return fw.AllowN(ctx, key, 1)
}

// AllowN 检查是否允许N个请求通过
func (fw *FixedWindowLimiter) AllowN(ctx context.Context, key string, n int64) (*LimitResult, error) {
	now := fw.now()
	start := windowStart(now, fw.config.Window)
	untilReset := start.Add(fw.config.Window).Sub(now)

	values, err := fixedWindowScript.Run(ctx, fw.client,
		[]string{fw.getKey(key, start)},
		fw.config.Rate,
		fw.config.Window.Milliseconds(),
		n,
		untilReset.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to execute fixed window script: %w", err)
	}
	if len(values) != 4 {
		return nil, fmt.Errorf("unexpected script result format: %v", values)
	}

	return &LimitResult{
		Allowed:       values[0] == 1,
		Remaining:     max(values[1], 0),
		RetryAfter:    time.Duration(values[2]) * time.Millisecond,
		TotalRequests: values[3],
	}, nil
}

// Reset 重置当前窗口
func (fw *FixedWindowLimiter) Reset(ctx context.Context, key string) error {
	pattern := fmt.Sprintf("%s:%s:*", fw.keyPrefix, key)
	iter := fw.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}

	if len(keys) > 0 {
		if err := fw.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete keys: %w", err)
		}
	}
	return nil
}

// GetInfo 获取当前窗口信息
func (fw *FixedWindowLimiter) GetInfo(ctx context.Context, key string) (*LimitInfo, error) {
	start := windowStart(fw.now(), fw.config.Window)

	current, err := fw.client.Get(ctx, fw.getKey(key, start)).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read window counter: %w", err)
	}

	return &LimitInfo{
		Limit:     fw.config.Rate,
		Remaining: max(fw.config.Rate-current, 0),
		Window:    fw.config.Window,
		ResetTime: start.Add(fw.config.Window),
	}, nil
}
