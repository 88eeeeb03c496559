package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry(strings.NewReader(`
attributes:
  Color: ENUM
  skin type: string
exclude: [Embedding Text]
`))
	require.NoError(t, err)
	assert.Equal(t, domain.AttributeEnum, reg.Attributes["color"])
	assert.Equal(t, domain.AttributeString, reg.Attributes["skin_type"])
	assert.True(t, reg.excluded("embedding_text"))

	_, err = ParseRegistry(strings.NewReader("attributes:\n  color: colour\n"))
	require.Error(t, err)

	reg, err = ParseRegistry(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, reg.Attributes)
}

func TestRegistry_TypeOf(t *testing.T) {
	reg := &Registry{Attributes: map[string]domain.AttributeDataType{"size": domain.AttributeEnum}}

	tests := []struct {
		column string
		value  string
		want   domain.AttributeDataType
	}{
		{"size", "9", domain.AttributeEnum},
		{"waterproof", "Yes", domain.AttributeBoolean},
		{"waterproof", "false", domain.AttributeBoolean},
		{"rating", "4.5", domain.AttributeNumber},
		{"pieces", "1", domain.AttributeNumber},
		{"fabric", "Cotton", domain.AttributeString},
	}
	for _, tt := range tests {
		t.Run(tt.column+"="+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.TypeOf(tt.column, tt.value))
		})
	}
}
