package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

func values(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Add(kv[i], kv[i+1])
	}
	return q
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %T: %v", err, err)
	assert.Equal(t, field, ve.Field)
}

func TestDecodeFilterSpec_Defaults(t *testing.T) {
	spec, err := DecodeFilterSpec(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, 20, spec.PageSize)
	assert.Equal(t, domain.SortByProductID, spec.SortBy)
	assert.Equal(t, domain.SortAsc, spec.SortOrder)
	assert.Nil(t, spec.Brand)
	assert.Nil(t, spec.CategoryID)
	assert.Nil(t, spec.MinPrice)
	assert.Nil(t, spec.AttributeFilters)
}

func TestDecodeFilterSpec_AllParams(t *testing.T) {
	q := values(
		"page", "2",
		"page_size", "12",
		"brand", " Acme ",
		"stock_status", "in stock",
		"category_id", "7",
		"min_price", "500",
		"max_price", "2000",
		"sort_by", "price",
		"sort_order", "DESC",
		"filters", `{"color":["Red","Navy Blue"],"rating":{"min":4},"skin_friendly":true}`,
		"utm_source", "newsletter",
	)

	spec, err := DecodeFilterSpec(q)
	require.NoError(t, err)

	assert.Equal(t, 2, spec.Page)
	assert.Equal(t, 12, spec.PageSize)
	require.NotNil(t, spec.Brand)
	assert.Equal(t, "Acme", *spec.Brand)
	require.NotNil(t, spec.StockStatus)
	assert.Equal(t, "In Stock", *spec.StockStatus)
	require.NotNil(t, spec.CategoryID)
	assert.Equal(t, int64(7), *spec.CategoryID)
	assert.Equal(t, 500.0, *spec.MinPrice)
	assert.Equal(t, 2000.0, *spec.MaxPrice)
	assert.Equal(t, domain.SortByPrice, spec.SortBy)
	assert.Equal(t, domain.SortDesc, spec.SortOrder)

	require.Len(t, spec.AttributeFilters, 3)
	assert.Equal(t, domain.MultiSelect{Values: []string{"Red", "Navy Blue"}}, spec.AttributeFilters["color"])
	rng, ok := spec.AttributeFilters["rating"].(domain.Range)
	require.True(t, ok)
	assert.Equal(t, 4.0, *rng.Min)
	assert.Nil(t, rng.Max)
	assert.Equal(t, domain.Toggle{Value: true}, spec.AttributeFilters["skin_friendly"])
}

func TestDecodeFilterSpec_PageSizeClamp(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"500", 100},
		{"100", 100},
		{"0", 1},
		{"-3", 1},
		{"7", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spec, err := DecodeFilterSpec(values("page_size", tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.PageSize)
		})
	}
}

func TestDecodeFilterSpec_EmptyValuesAreAbsent(t *testing.T) {
	spec, err := DecodeFilterSpec(values("brand", "", "min_price", " ", "filters", "", "sort_by", ""))
	require.NoError(t, err)
	assert.Nil(t, spec.Brand)
	assert.Nil(t, spec.MinPrice)
	assert.Nil(t, spec.AttributeFilters)
	assert.Equal(t, domain.SortByProductID, spec.SortBy)
}

func TestDecodeFilterSpec_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		q     url.Values
		field string
	}{
		{"page not integer", values("page", "abc"), "page"},
		{"page fractional", values("page", "1.5"), "page"},
		{"page zero", values("page", "0"), "page"},
		{"page size not integer", values("page_size", "ten"), "page_size"},
		{"category not integer", values("category_id", "shoes"), "category_id"},
		{"category negative", values("category_id", "-1"), "category_id"},
		{"min price malformed", values("min_price", "5OO"), "min_price"},
		{"max price NaN", values("max_price", "NaN"), "max_price"},
		{"negative price", values("min_price", "-10"), "min_price"},
		{"min above max", values("min_price", "300", "max_price", "100"), "min_price"},
		{"unknown sort field", values("sort_by", "rating"), "sort_by"},
		{"bad sort order", values("sort_order", "up"), "sort_order"},
		{"unknown stock status", values("stock_status", "backorder"), "stock_status"},
		{"filters not json", values("filters", "{color:red}"), "filters"},
		{"filters array", values("filters", `["Red"]`), "filters"},
		{"filters trailing data", values("filters", `{"a":true} {}`), "filters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFilterSpec(tt.q)
			requireField(t, err, tt.field)
		})
	}
}

func TestDecodeAttributeFilters_InvalidShapeNamesKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
	}{
		{"number value", `{"color":["Red"],"size":42}`, "filters.size"},
		{"string value", `{"color":"Red"}`, "filters.color"},
		{"mixed array", `{"color":["Red",3]}`, "filters.color"},
		{"range with string bound", `{"rating":{"min":"4"}}`, "filters.rating"},
		{"range with unknown key", `{"rating":{"from":4}}`, "filters.rating"},
		{"null value", `{"pattern":null}`, "filters.pattern"},
		{"range min above max", `{"rating":{"min":5,"max":1}}`, "filters.rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAttributeFilters([]byte(tt.raw))
			requireField(t, err, tt.key)
		})
	}
}

func TestDecodeAttributeFilters_PrunesNoOps(t *testing.T) {
	filters, err := DecodeAttributeFilters([]byte(`{"color":[],"rating":{},"weight":{"min":null,"max":null},"skin_friendly":false,"fabric":["Cotton","Cotton"]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.FilterValue{
		"fabric": domain.MultiSelect{Values: []string{"Cotton"}},
	}, filters)
}

func TestDecodeAttributeFilters_PreservesLiteralValues(t *testing.T) {
	filters, err := DecodeAttributeFilters([]byte(`{"neckline":["V-Neck","round neck ","Boat/Bateau"]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.MultiSelect{Values: []string{"V-Neck", "round neck ", "Boat/Bateau"}}, filters["neckline"])
}

func TestDecodeAttributeFilters_KeyWithSlash(t *testing.T) {
	_, err := DecodeAttributeFilters([]byte(`{"size/fit":7}`))
	requireField(t, err, "filters.size/fit")
}
