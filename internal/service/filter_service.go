package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/repo"
)

// FilterService 根据分类生成动态过滤控件描述
type FilterService interface {
	GetFilters(ctx context.Context, categoryID int64) (*domain.FiltersResponse, error)
}

type filterService struct {
	categoryRepo repo.CategoryRepository
	filterRepo   repo.FilterRepository
	logger       *zap.Logger
}

// NewFilterService 创建过滤描述服务实例
func NewFilterService(categoryRepo repo.CategoryRepository, filterRepo repo.FilterRepository, logger *zap.Logger) FilterService {
	return &filterService{
		categoryRepo: categoryRepo,
		filterRepo:   filterRepo,
		logger:       logger,
	}
}

// GetFilters 返回分类下每个可过滤属性的描述，顺序与属性展示顺序一致
func (s *filterService) GetFilters(ctx context.Context, categoryID int64) (*domain.FiltersResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	attrs, err := s.filterRepo.FilterableAttributes(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list filterable attributes: %w", err)
	}

	filters := make([]domain.FilterDescriptor, 0, len(attrs))
	for _, attr := range attrs {
		desc, err := s.describe(ctx, categoryID, attr)
		if err != nil {
			// 单个属性统计失败不影响其余控件
			s.logger.Warn("skip filter descriptor",
				zap.Int64("category_id", categoryID),
				zap.String("attribute", attr.Name),
				zap.Error(err),
			)
			continue
		}
		filters = append(filters, *desc)
	}

	return &domain.FiltersResponse{
		Category: category,
		Filters:  filters,
	}, nil
}

func (s *filterService) describe(ctx context.Context, categoryID int64, attr *domain.Attribute) (*domain.FilterDescriptor, error) {
	filterType := domain.FilterTypeFor(attr.DataType)

	desc := &domain.FilterDescriptor{
		AttributeName: attr.Name,
		DisplayName:   displayName(attr.Name),
		FilterType:    filterType,
	}

	switch filterType {
	case domain.FilterMultiSelect:
		options, err := s.filterRepo.OptionCounts(ctx, categoryID, attr.ID)
		if err != nil {
			return nil, err
		}
		desc.TotalOptions = len(options)
		if len(options) > domain.MaxFilterOptions {
			options = options[:domain.MaxFilterOptions]
			desc.HasMoreOptions = true
		}
		desc.Options = options

	case domain.FilterRange:
		lo, hi, err := s.filterRepo.NumericBounds(ctx, categoryID, attr.ID)
		if err != nil {
			return nil, err
		}
		desc.MinValue, desc.MaxValue = lo, hi
	}

	return desc, nil
}

// displayName skin_type -> Skin Type（Caser 非并发安全，每次新建）
func displayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
