package web

import (
	"context"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

type mockCatalogService struct {
	listProductsFunc func(ctx context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error)
	getProductFunc   func(ctx context.Context, productID string) (*domain.Product, error)
	categories       []*domain.Category
	categoriesErr    error
}

func (m *mockCatalogService) ListProducts(ctx context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error) {
	if m.listProductsFunc != nil {
		return m.listProductsFunc(ctx, spec)
	}
	return &domain.PagedResult{Products: []*domain.Product{}, Page: spec.Page, PageSize: spec.PageSize}, nil
}

func (m *mockCatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if m.getProductFunc != nil {
		return m.getProductFunc(ctx, productID)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return m.categories, m.categoriesErr
}

type mockFilterService struct {
	filters map[int64][]domain.FilterDescriptor
	err     error
}

func (m *mockFilterService) GetFilters(ctx context.Context, categoryID int64) (*domain.FiltersResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	descriptors, ok := m.filters[categoryID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &domain.FiltersResponse{
		Category: &domain.Category{ID: categoryID},
		Filters:  descriptors,
	}, nil
}
