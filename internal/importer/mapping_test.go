package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-backoffice/internal/tabular"
)

func productsTemplate(t *testing.T) *Template {
	t.Helper()
	template, err := TemplateByKey(TemplateProducts)
	require.NoError(t, err)
	return template
}

func TestAutoMapMatchesAliases(t *testing.T) {
	template := productsTemplate(t)
	columns := []string{"descripcion", "codigo_de_barras", "codigo", "cantidad", "importe_total", "rubro", "proveedor", "fecha"}

	mapping := AutoMap(columns, template)

	assert.Equal(t, "descripcion", mapping["name"])
	assert.Equal(t, "codigo_de_barras", mapping["barcode"])
	assert.Equal(t, "codigo", mapping["internal_code"])
	assert.Equal(t, "cantidad", mapping["quantity"])
	assert.Equal(t, "importe_total", mapping["subtotal"])
	assert.Equal(t, "rubro", mapping["category"])
	assert.Equal(t, "proveedor", mapping["supplier_name"])
	assert.Equal(t, "fecha", mapping["sold_at"])
	_, ok := mapping["unit_price"]
	assert.False(t, ok, "no column resembles a unit price")
}

func TestAutoMapPrefersFieldNameOverAliases(t *testing.T) {
	template := productsTemplate(t)
	mapping := AutoMap([]string{"precio", "unit_price"}, template)
	assert.Equal(t, "unit_price", mapping["unit_price"])
}

func TestAutoMapFirstAliasWins(t *testing.T) {
	template := productsTemplate(t)
	// "precio" precedes "pvp" in the alias list.
	mapping := AutoMap([]string{"pvp", "precio"}, template)
	assert.Equal(t, "precio", mapping["unit_price"])
}

func TestAutoMapUnmatchedColumnsIgnored(t *testing.T) {
	template := productsTemplate(t)
	mapping := AutoMap([]string{"columna_rara", "otra"}, template)
	assert.Empty(t, mapping)
}

func TestResolveMappingOverrideWins(t *testing.T) {
	template := productsTemplate(t)
	columns := []string{"descripcion", "precio", "valor_final"}
	auto := AutoMap(columns, template)
	require.Equal(t, "precio", auto["unit_price"])

	mapping := ResolveMapping(auto, map[string]string{"unit_price": "valor_final"}, template, columns)
	assert.Equal(t, "valor_final", mapping["unit_price"])
	assert.Equal(t, "descripcion", mapping["name"])
}

func TestResolveMappingDropsBadOverrides(t *testing.T) {
	template := productsTemplate(t)
	columns := []string{"descripcion", "precio"}
	auto := AutoMap(columns, template)

	mapping := ResolveMapping(auto, map[string]string{
		"no_such_field": "precio",
		"unit_price":    "no_such_column",
		"name":          "",
	}, template, columns)

	assert.Equal(t, "precio", mapping["unit_price"])
	assert.Equal(t, "descripcion", mapping["name"])
	_, ok := mapping["no_such_field"]
	assert.False(t, ok)
}

func TestApplyMappingProjectsInTemplateOrder(t *testing.T) {
	template := productsTemplate(t)
	rec := tabular.NewRecord()
	rec.Set("precio", " 100 ")
	rec.Set("descripcion", "Yerba")

	out := ApplyMapping(rec, map[string]string{"name": "descripcion", "unit_price": "precio"}, template)
	require.NotNil(t, out)
	assert.Equal(t, []string{"name", "unit_price"}, out.Keys())
	assert.Equal(t, "Yerba", out.Get("name"))
	assert.Equal(t, "100", out.Get("unit_price"))
}

func TestApplyMappingNilWhenNothingMaps(t *testing.T) {
	template := productsTemplate(t)
	rec := tabular.NewRecord()
	rec.Set("columna_rara", "x")

	assert.Nil(t, ApplyMapping(rec, map[string]string{}, template))
	assert.Nil(t, ApplyMapping(rec, map[string]string{"name": "ausente"}, template))
}

func TestTemplateByKeyUnknown(t *testing.T) {
	_, err := TemplateByKey("clientes")
	require.Error(t, err)
	assert.Equal(t, TagUnknownTemplate, TagOf(err))
}

func TestTemplateRequiredFields(t *testing.T) {
	template := productsTemplate(t)
	assert.Equal(t, []string{"name"}, template.RequiredFields())

	suppliers, err := TemplateByKey(TemplateSuppliers)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, suppliers.RequiredFields())
}
