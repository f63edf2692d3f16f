package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Basic(t *testing.T) {
	input := "sku,name,category,retail_price\nSKU-1,Shampoing Doux,shampoings,9.90\nSKU-2,Coloration,colorations,19.90\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SKU-1", rows[0].SKU)
	assert.Equal(t, "Shampoing Doux", rows[0].Name)
	assert.Equal(t, "shampoings", rows[0].Category)
	assert.Equal(t, "9.90", rows[0].RetailPrice)
	assert.Equal(t, "SKU-2", rows[1].SKU)
}

func TestParseCSV_StripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFsku,name\nSKU-1,Produit\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-1", rows[0].SKU, "BOM must not corrupt the first header")
}

func TestParseCSV_LegacyThresholdHeader(t *testing.T) {
	input := "sku,name,min_stock_thresh\nSKU-1,Produit,5\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "5", rows[0].MinStockThreshold)
}

func TestParseCSV_IgnoresUnknownColumns(t *testing.T) {
	input := "sku,couleur,name\nSKU-1,rouge,Produit\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-1", rows[0].SKU)
	assert.Equal(t, "Produit", rows[0].Name)
}

func TestParseCSV_ShortRecordsTolerated(t *testing.T) {
	input := "sku,name,brand\nSKU-1,Produit\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Produit", rows[0].Name)
	assert.Empty(t, rows[0].Brand)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"no recognized columns", "foo,bar\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
