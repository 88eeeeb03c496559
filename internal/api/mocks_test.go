package api

import (
	"context"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// MockCatalogService for testing
type MockCatalogService struct {
	listProductsFunc   func(ctx context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error)
	getProductFunc     func(ctx context.Context, productID string) (*domain.Product, error)
	listCategoriesFunc func(ctx context.Context) ([]*domain.Category, error)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error) {
	if m.listProductsFunc != nil {
		return m.listProductsFunc(ctx, spec)
	}
	return &domain.PagedResult{Products: []*domain.Product{}, Page: spec.Page, PageSize: spec.PageSize}, nil
}

func (m *MockCatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if m.getProductFunc != nil {
		return m.getProductFunc(ctx, productID)
	}
	return &domain.Product{ProductID: productID, Title: "Test Product"}, nil
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if m.listCategoriesFunc != nil {
		return m.listCategoriesFunc(ctx)
	}
	return []*domain.Category{{ID: 1, Name: "Dresses"}}, nil
}

// MockFilterService for testing
type MockFilterService struct {
	getFiltersFunc func(ctx context.Context, categoryID int64) (*domain.FiltersResponse, error)
}

func (m *MockFilterService) GetFilters(ctx context.Context, categoryID int64) (*domain.FiltersResponse, error) {
	if m.getFiltersFunc != nil {
		return m.getFiltersFunc(ctx, categoryID)
	}
	return &domain.FiltersResponse{
		Category: &domain.Category{ID: categoryID, Name: "Dresses"},
		Filters:  []domain.FilterDescriptor{},
	}, nil
}

// MockSearchService for testing
type MockSearchService struct {
	searchFunc func(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
}

func (m *MockSearchService) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &domain.SearchResponse{Success: true, ResponseText: "ok", SessionID: req.SessionID}, nil
}
