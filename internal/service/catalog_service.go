// Package service 实现业务逻辑层，协调各种资源完成业务需求。
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/repo"
)

// CatalogService 定义商品目录的只读业务接口
type CatalogService interface {
	// ListProducts 按过滤条件分页查询商品
	ListProducts(ctx context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error)
	// GetProduct 查询商品详情，不存在时返回 domain.ErrProductNotFound
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	// ListCategories 列出全部分类
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// catalogService 实现CatalogService接口
type catalogService struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	logger       *zap.Logger
}

// NewCatalogService 创建目录服务实例
func NewCatalogService(productRepo repo.ProductRepository, categoryRepo repo.CategoryRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ListProducts 获取商品列表
func (s *catalogService) ListProducts(ctx context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error) {
	if spec == nil {
		spec = domain.NewFilterSpec()
	}

	// 边界保护：无论调用方是否经过解码器，分页参数都在此再收敛一次
	if spec.Page < domain.DefaultPage {
		spec.Page = domain.DefaultPage
	}
	if spec.PageSize == 0 {
		spec.PageSize = domain.DefaultPageSize
	}
	spec.PageSize = domain.ClampPageSize(spec.PageSize)

	products, total, err := s.productRepo.List(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &domain.PagedResult{
		Products: products,
		Total:    total,
		Page:     spec.Page,
		PageSize: spec.PageSize,
	}, nil
}

// GetProduct 获取商品详情
func (s *catalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if productID == "" {
		return nil, domain.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// ListCategories 获取分类列表
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
