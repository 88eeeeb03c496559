package service

import (
	"context"
	"errors"
	"sort"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// Mock ProductRepository for testing
type mockProductRepository struct {
	products map[string]*domain.Product
	lastSpec *domain.FilterSpec
	err      error
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		m.products[p.ProductID] = p
	}
	return m
}

func (m *mockProductRepository) List(ctx context.Context, spec *domain.FilterSpec) ([]*domain.Product, int64, error) {
	m.lastSpec = spec
	if m.err != nil {
		return nil, 0, m.err
	}

	ids := make([]string, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := int64(len(ids))
	result := make([]*domain.Product, 0, spec.PageSize)
	for i := spec.Offset(); i < total && len(result) < spec.PageSize; i++ {
		result = append(result, m.products[ids[i]])
	}
	return result, total, nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	product, exists := m.products[productID]
	if !exists {
		return nil, nil
	}
	return product, nil
}

// Mock CategoryRepository for testing
type mockCategoryRepository struct {
	categories map[int64]*domain.Category
	err        error
}

func newMockCategoryRepository(categories ...*domain.Category) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[int64]*domain.Category)}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories[id], nil
}

// Mock FilterRepository for testing
type mockFilterRepository struct {
	attributes map[int64][]*domain.Attribute
	options    map[int64][]domain.FilterOption
	bounds     map[int64][2]*float64
	failing    map[int64]bool
}

func newMockFilterRepository() *mockFilterRepository {
	return &mockFilterRepository{
		attributes: make(map[int64][]*domain.Attribute),
		options:    make(map[int64][]domain.FilterOption),
		bounds:     make(map[int64][2]*float64),
		failing:    make(map[int64]bool),
	}
}

var errStatistics = errors.New("statistics unavailable")

func (m *mockFilterRepository) FilterableAttributes(ctx context.Context, categoryID int64) ([]*domain.Attribute, error) {
	return m.attributes[categoryID], nil
}

func (m *mockFilterRepository) OptionCounts(ctx context.Context, categoryID, attributeID int64) ([]domain.FilterOption, error) {
	if m.failing[attributeID] {
		return nil, errStatistics
	}
	return m.options[attributeID], nil
}

func (m *mockFilterRepository) NumericBounds(ctx context.Context, categoryID, attributeID int64) (*float64, *float64, error) {
	if m.failing[attributeID] {
		return nil, nil, errStatistics
	}
	b := m.bounds[attributeID]
	return b[0], b[1], nil
}
