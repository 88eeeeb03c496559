package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/cache"
	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// CachedFilterRepository 带缓存的过滤统计仓储。
// 统计结果只随目录导入变化，按分类/属性缓存至 TTL 到期；缓存读写失败时直接查库。
type CachedFilterRepository struct {
	repo   FilterRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFilterRepository 创建带缓存的过滤统计仓储
func NewCachedFilterRepository(repo FilterRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) FilterRepository {
	return &CachedFilterRepository{repo: repo, cache: c, ttl: ttl, logger: logger}
}

type cachedBounds struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// FilterableAttributes 根据分类获取可过滤属性（带缓存）
func (r *CachedFilterRepository) FilterableAttributes(ctx context.Context, categoryID int64) ([]*domain.Attribute, error) {
	key := fmt.Sprintf("filters:attrs:%d", categoryID)

	var attrs []*domain.Attribute
	if r.lookup(ctx, key, &attrs) {
		return attrs, nil
	}

	attrs, err := r.repo.FilterableAttributes(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, attrs)
	return attrs, nil
}

// OptionCounts 获取多选属性的取值统计（带缓存）
func (r *CachedFilterRepository) OptionCounts(ctx context.Context, categoryID, attributeID int64) ([]domain.FilterOption, error) {
	key := fmt.Sprintf("filters:options:%d:%d", categoryID, attributeID)

	var options []domain.FilterOption
	if r.lookup(ctx, key, &options) {
		return options, nil
	}

	options, err := r.repo.OptionCounts(ctx, categoryID, attributeID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, options)
	return options, nil
}

// NumericBounds 获取数值属性的上下界（带缓存）
func (r *CachedFilterRepository) NumericBounds(ctx context.Context, categoryID, attributeID int64) (*float64, *float64, error) {
	key := fmt.Sprintf("filters:bounds:%d:%d", categoryID, attributeID)

	var b cachedBounds
	if r.lookup(ctx, key, &b) {
		return b.Min, b.Max, nil
	}

	lo, hi, err := r.repo.NumericBounds(ctx, categoryID, attributeID)
	if err != nil {
		return nil, nil, err
	}
	r.store(ctx, key, cachedBounds{Min: lo, Max: hi})
	return lo, hi, nil
}

func (r *CachedFilterRepository) lookup(ctx context.Context, key string, dest any) bool {
	err := r.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.logger.Warn("filter cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (r *CachedFilterRepository) store(ctx context.Context, key string, value any) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warn("filter cache write failed", zap.String("key", key), zap.Error(err))
	}
}
