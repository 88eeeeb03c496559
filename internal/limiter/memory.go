package limiter

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter 进程内固定窗口限流器；未配置 Redis 时使用
type MemoryLimiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	start time.Time
	count int64
}

// NewMemoryLimiter 创建内存限流器
func NewMemoryLimiter(config *Config) *MemoryLimiter {
	return &MemoryLimiter{
		config:  config,
		now:     time.Now,
		windows: make(map[string]*memoryWindow),
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	return m.AllowN(ctx, key, 1)
}

func (m *MemoryLimiter) AllowN(_ context.Context, key string, n int64) (*LimitResult, error) {
	now := m.now()
	start := windowStart(now, m.config.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !w.start.Equal(start) {
		w = &memoryWindow{start: start}
		m.windows[key] = w
		m.evict(start)
	}

	if w.count+n > m.config.Rate {
		return &LimitResult{
			Allowed:       false,
			Remaining:     max(m.config.Rate-w.count, 0),
			RetryAfter:    start.Add(m.config.Window).Sub(now),
			TotalRequests: w.count,
		}, nil
	}

	w.count += n
	return &LimitResult{
		Allowed:       true,
		Remaining:     m.config.Rate - w.count,
		TotalRequests: w.count,
	}, nil
}

// evict 清理已过期窗口，调用方需持有锁
func (m *MemoryLimiter) evict(current time.Time) {
	for k, w := range m.windows {
		if w.start.Before(current) {
			delete(m.windows, k)
		}
	}
}

func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.windows, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryLimiter) GetInfo(_ context.Context, key string) (*LimitInfo, error) {
	start := windowStart(m.now(), m.config.Window)

	m.mu.Lock()
	var count int64
	if w, ok := m.windows[key]; ok && w.start.Equal(start) {
		count = w.count
	}
	m.mu.Unlock()

	return &LimitInfo{
		Limit:     m.config.Rate,
		Remaining: max(m.config.Rate-count, 0),
		Window:    m.config.Window,
		ResetTime: start.Add(m.config.Window),
	}, nil
}
