package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

func TestCategoryRepo_List(t *testing.T) {
	r := NewCategoryRepository(seedCatalog(t).DB)

	categories, err := r.List(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Bags", "Dresses", "Shoes"}, names)
}

func TestCategoryRepo_GetByID(t *testing.T) {
	r := NewCategoryRepository(seedCatalog(t).DB)
	ctx := context.Background()

	c, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Dresses", c.Name)
	assert.Nil(t, c.ParentID)

	missing, err := r.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFilterRepo_FilterableAttributes(t *testing.T) {
	r := NewFilterRepository(seedCatalog(t).DB)

	attrs, err := r.FilterableAttributes(context.Background(), 1)
	require.NoError(t, err)

	want := []*domain.Attribute{
		{ID: 1, Name: "color", DataType: domain.AttributeEnum, DisplayOrder: 1},
		{ID: 2, Name: "rating", DataType: domain.AttributeNumber, DisplayOrder: 2},
		{ID: 3, Name: "skin_friendly", DataType: domain.AttributeBoolean, DisplayOrder: 3},
	}
	assert.Equal(t, want, attrs)

	none, err := r.FilterableAttributes(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFilterRepo_OptionCounts(t *testing.T) {
	r := NewFilterRepository(seedCatalog(t).DB)
	ctx := context.Background()

	tests := []struct {
		name       string
		categoryID int64
		want       []domain.FilterOption
	}{
		{
			name:       "ordered by count then value",
			categoryID: 1,
			want: []domain.FilterOption{
				{Value: "Blue", Label: "Blue", Count: 5},
				{Value: "Red", Label: "Red", Count: 3},
			},
		},
		{
			name:       "scoped to category",
			categoryID: 2,
			want:       []domain.FilterOption{{Value: "red", Label: "red", Count: 1}},
		},
		{
			name:       "no products",
			categoryID: 3,
			want:       []domain.FilterOption{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.OptionCounts(ctx, tt.categoryID, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterRepo_NumericBounds(t *testing.T) {
	r := NewFilterRepository(seedCatalog(t).DB)
	ctx := context.Background()

	lo, hi, err := r.NumericBounds(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, lo)
	require.NotNil(t, hi)
	assert.Equal(t, 2.0, *lo)
	assert.Equal(t, 5.0, *hi)

	lo, hi, err = r.NumericBounds(ctx, 3, 2)
	require.NoError(t, err)
	assert.Nil(t, lo)
	assert.Nil(t, hi)
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"50%", "50!%"},
		{"a_b", "a!_b"},
		{"wow!", "wow!!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), tt.in)
	}
}

func TestBuildOrderClause(t *testing.T) {
	spec := domain.NewFilterSpec()
	assert.Equal(t, "ORDER BY p.product_id ASC", buildOrderClause(spec))

	spec.SortBy = domain.SortByDiscountPercent
	spec.SortOrder = domain.SortDesc
	assert.Equal(t, "ORDER BY p.discount_percent DESC, p.product_id ASC", buildOrderClause(spec))

	spec.SortBy = domain.SortField("price; DROP TABLE products")
	assert.Equal(t, "ORDER BY p.product_id DESC", buildOrderClause(spec))
}
