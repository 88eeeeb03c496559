package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func newFilterFixture() (*mockCategoryRepository, *mockFilterRepository) {
	categoryRepo := newMockCategoryRepository(&domain.Category{ID: 7, Name: "Skincare"})

	filterRepo := newMockFilterRepository()
	filterRepo.attributes[7] = []*domain.Attribute{
		{ID: 1, Name: "skin_type", DataType: domain.AttributeEnum, DisplayOrder: 1},
		{ID: 2, Name: "rating", DataType: domain.AttributeNumber, DisplayOrder: 2},
		{ID: 3, Name: "fragrance_free", DataType: domain.AttributeBoolean, DisplayOrder: 3},
		{ID: 4, Name: "finish", DataType: domain.AttributeString, DisplayOrder: 4},
	}
	filterRepo.options[1] = []domain.FilterOption{
		{Value: "Oily", Label: "Oily", Count: 4},
		{Value: "Dry", Label: "Dry", Count: 2},
	}
	filterRepo.bounds[2] = [2]*float64{floatPtr(1.5), floatPtr(4.9)}
	for i := 0; i < 25; i++ {
		v := fmt.Sprintf("finish-%02d", i)
		filterRepo.options[4] = append(filterRepo.options[4], domain.FilterOption{Value: v, Label: v, Count: 1})
	}
	return categoryRepo, filterRepo
}

func TestFilterService_GetFilters(t *testing.T) {
	categoryRepo, filterRepo := newFilterFixture()
	service := NewFilterService(categoryRepo, filterRepo, zap.NewNop())

	resp, err := service.GetFilters(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "Skincare", resp.Category.Name)
	require.Len(t, resp.Filters, 4)

	skin := resp.Filters[0]
	assert.Equal(t, "skin_type", skin.AttributeName)
	assert.Equal(t, "Skin Type", skin.DisplayName)
	assert.Equal(t, domain.FilterMultiSelect, skin.FilterType)
	assert.Len(t, skin.Options, 2)
	assert.False(t, skin.HasMoreOptions)
	assert.Equal(t, 2, skin.TotalOptions)

	rating := resp.Filters[1]
	assert.Equal(t, domain.FilterRange, rating.FilterType)
	require.NotNil(t, rating.MinValue)
	require.NotNil(t, rating.MaxValue)
	assert.Equal(t, 1.5, *rating.MinValue)
	assert.Equal(t, 4.9, *rating.MaxValue)
	assert.Empty(t, rating.Options)

	toggle := resp.Filters[2]
	assert.Equal(t, "Fragrance Free", toggle.DisplayName)
	assert.Equal(t, domain.FilterToggle, toggle.FilterType)

	finish := resp.Filters[3]
	assert.Equal(t, domain.FilterMultiSelect, finish.FilterType)
	assert.Len(t, finish.Options, domain.MaxFilterOptions)
	assert.True(t, finish.HasMoreOptions)
	assert.Equal(t, 25, finish.TotalOptions)
	assert.Equal(t, "finish-00", finish.Options[0].Value)
}

func TestFilterService_GetFilters_SkipsFailingAttribute(t *testing.T) {
	categoryRepo, filterRepo := newFilterFixture()
	filterRepo.failing[2] = true
	service := NewFilterService(categoryRepo, filterRepo, zap.NewNop())

	resp, err := service.GetFilters(context.Background(), 7)
	require.NoError(t, err)

	names := make([]string, 0, len(resp.Filters))
	for _, f := range resp.Filters {
		names = append(names, f.AttributeName)
	}
	assert.Equal(t, []string{"skin_type", "fragrance_free", "finish"}, names)
}

func TestFilterService_GetFilters_Errors(t *testing.T) {
	categoryRepo, filterRepo := newFilterFixture()
	service := NewFilterService(categoryRepo, filterRepo, zap.NewNop())

	_, err := service.GetFilters(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	categoryRepo.err = errors.New("db down")
	_, err = service.GetFilters(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestFilterService_EmptyCategory(t *testing.T) {
	categoryRepo := newMockCategoryRepository(&domain.Category{ID: 3, Name: "Shoes"})
	service := NewFilterService(categoryRepo, newMockFilterRepository(), zap.NewNop())

	resp, err := service.GetFilters(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, resp.Filters)
	assert.Empty(t, resp.Filters)
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"color":          "Color",
		"skin_type":      "Skin Type",
		"spf_value":      "Spf Value",
		"fragrance_free": "Fragrance Free",
	}
	for in, want := range tests {
		assert.Equal(t, want, displayName(in), in)
	}
}
