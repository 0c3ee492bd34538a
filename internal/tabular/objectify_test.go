package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Precio Unitário ":   "precio_unitario",
		"Código de Barras":   "codigo_de_barras",
		"  Razón   Social  ": "razon_social",
		"EAN13":              "ean13",
		"precio":             "precio",
		"Total ($)":          "total",
		"__name__":           "name",
		"":                   "",
		"***":                "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeHeader(raw), "raw=%q", raw)
	}
}

func TestObjectifyKeysRecordsByNormalizedHeader(t *testing.T) {
	records := Objectify([][]string{
		{"Descripción", "Precio Unitario"},
		{" Yerba ", "100"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, []string{"descripcion", "precio_unitario"}, records[0].Keys())
	assert.Equal(t, "Yerba", records[0].Get("descripcion"))
	assert.Equal(t, "100", records[0].Get("precio_unitario"))
}

func TestObjectifyEmptyAndDuplicateHeaders(t *testing.T) {
	records := Objectify([][]string{
		{"", "Precio", "precio", "PRECIO"},
		{"a", "b", "c", "d"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, []string{"column_1", "precio", "precio_2", "precio_3"}, records[0].Keys())
	assert.Equal(t, "a", records[0].Get("column_1"))
	assert.Equal(t, "d", records[0].Get("precio_3"))
}

func TestObjectifyPadsShortRows(t *testing.T) {
	records := Objectify([][]string{
		{"a", "b", "c"},
		{"1"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Get("a"))
	assert.True(t, records[0].Has("b"))
	assert.Equal(t, "", records[0].Get("b"))
	assert.Equal(t, "", records[0].Get("c"))
}

func TestObjectifyDropsEmptyDataRows(t *testing.T) {
	records := Objectify([][]string{
		{"a", "b"},
		{"  ", " "},
		{"1", "2"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Get("a"))
}

func TestObjectifyHeaderOnly(t *testing.T) {
	assert.Empty(t, Objectify([][]string{{"a", "b"}}))
	assert.Empty(t, Objectify(nil))
}
