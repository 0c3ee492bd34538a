package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-backoffice/internal/tabular"
)

func rec(pairs ...string) *tabular.Record {
	r := tabular.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func TestMergeRecordsNonEmptyIncomingWins(t *testing.T) {
	base := rec("name", "Yerba", "stock", "5", "category", "almacen")
	incoming := rec("name", "Yerba Suave", "stock", "", "barcode", "779")

	out := MergeRecords(base, incoming)

	assert.Equal(t, "Yerba Suave", out.Get("name"))
	assert.Equal(t, "5", out.Get("stock"), "empty never overwrites non-empty")
	assert.Equal(t, "779", out.Get("barcode"))
	assert.Equal(t, "almacen", out.Get("category"))

	// Inputs stay untouched.
	assert.Equal(t, "Yerba", base.Get("name"))
	assert.False(t, base.Has("barcode"))
}

func TestMergeRecordsEmptyFillsMissingKey(t *testing.T) {
	base := rec("name", "Yerba")
	incoming := rec("barcode", "")

	out := MergeRecords(base, incoming)
	assert.True(t, out.Has("barcode"))
	assert.Equal(t, "", out.Get("barcode"))
}

func TestMergeProductRecordsLaterDatedPriceWins(t *testing.T) {
	older := rec("name", "Yerba", "unit_price", "100", "sold_at", "2025-01-10")
	newer := rec("name", "Yerba", "unit_price", "120", "sold_at", "2025-03-05")

	out := MergeProductRecords(older, newer)
	assert.Equal(t, "120", out.Get("unit_price"))

	// Row order does not matter: the later-dated price wins either way.
	out = MergeProductRecords(newer, older)
	assert.Equal(t, "120", out.Get("unit_price"))
}

func TestMergeProductRecordsFallsBackWithoutTimestamps(t *testing.T) {
	base := rec("name", "Yerba", "unit_price", "100")
	incoming := rec("name", "Yerba", "unit_price", "120")

	// No timestamps: the generic rule applies, incoming wins.
	out := MergeProductRecords(base, incoming)
	assert.Equal(t, "120", out.Get("unit_price"))
}

func TestMergeProductRecordsFallsBackWhenOnePriceMissing(t *testing.T) {
	base := rec("name", "Yerba", "unit_price", "100", "sold_at", "2025-03-05")
	incoming := rec("name", "Yerba", "unit_price", "", "sold_at", "2025-01-10")

	out := MergeProductRecords(base, incoming)
	assert.Equal(t, "100", out.Get("unit_price"))
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "barcode:779123", DedupKey(rec("barcode", " 779123 ", "internal_code", "A1"), TemplateProducts))
	assert.Equal(t, "internal_code:a1", DedupKey(rec("barcode", "", "internal_code", "A1"), TemplateProducts))
	assert.Equal(t, "", DedupKey(rec("name", "Yerba"), TemplateProducts))
	assert.Equal(t, "supplier:la esperanza srl", DedupKey(rec("name", "  La   Esperanza  SRL "), TemplateSuppliers))
	assert.Equal(t, "", DedupKey(rec("tax_id", "30-123"), TemplateSuppliers))
}

func TestDeduplicateFoldsByBarcode(t *testing.T) {
	records := []*tabular.Record{
		rec("name", "Yerba", "barcode", "779", "stock", ""),
		rec("name", "Fideos", "barcode", "555"),
		rec("name", "Yerba Suave", "barcode", "779", "stock", "8"),
	}

	out, absorbed := Deduplicate(records, TemplateProducts)
	require.Len(t, out, 2)
	assert.Equal(t, 1, absorbed)

	// First-seen order survives the fold.
	assert.Equal(t, "Yerba Suave", out[0].Get("name"))
	assert.Equal(t, "8", out[0].Get("stock"))
	assert.Equal(t, "Fideos", out[1].Get("name"))
}

func TestDeduplicateCaseInsensitiveSupplierName(t *testing.T) {
	records := []*tabular.Record{
		rec("name", "La Esperanza", "phone", "11-1234"),
		rec("name", "la esperanza", "email", "ventas@esperanza.ar"),
	}

	out, absorbed := Deduplicate(records, TemplateSuppliers)
	require.Len(t, out, 1)
	assert.Equal(t, 1, absorbed)
	assert.Equal(t, "11-1234", out[0].Get("phone"))
	assert.Equal(t, "ventas@esperanza.ar", out[0].Get("email"))
}

func TestDeduplicateKeylessRowsNeverMerge(t *testing.T) {
	records := []*tabular.Record{
		rec("name", "Suelto uno"),
		rec("name", "Suelto uno"),
	}

	out, absorbed := Deduplicate(records, TemplateProducts)
	assert.Len(t, out, 2)
	assert.Equal(t, 0, absorbed)
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	records := []*tabular.Record{
		rec("name", "Yerba", "barcode", "779"),
		rec("name", "Yerba 2", "barcode", "779"),
		rec("name", "Fideos", "internal_code", "F1"),
	}

	once, absorbed := Deduplicate(records, TemplateProducts)
	assert.Equal(t, 1, absorbed)

	twice, absorbedAgain := Deduplicate(once, TemplateProducts)
	assert.Equal(t, 0, absorbedAgain)
	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Keys(), twice[i].Keys())
	}
}

func TestDeduplicateRowsKeepsFirstSeenRawPayload(t *testing.T) {
	pairs := []RowPair{
		{Raw: rec("descripcion", "Yerba"), Normalized: rec("name", "Yerba", "barcode", "779")},
		{Raw: rec("descripcion", "Yerba Suave"), Normalized: rec("name", "Yerba Suave", "barcode", "779")},
	}

	out, absorbed := DeduplicateRows(pairs, TemplateProducts)
	require.Len(t, out, 1)
	assert.Equal(t, 1, absorbed)
	assert.Equal(t, "Yerba", out[0].Raw.Get("descripcion"), "raw stays the first-seen original")
	assert.Equal(t, "Yerba Suave", out[0].Normalized.Get("name"), "normalized carries the merged values")
}

func TestDeduplicateRowsNilNormalized(t *testing.T) {
	pairs := []RowPair{
		{Raw: rec("x", "1")},
		{Raw: rec("x", "2")},
		{Raw: rec("descripcion", "Yerba"), Normalized: rec("name", "Yerba", "barcode", "779")},
	}

	out, absorbed := DeduplicateRows(pairs, TemplateProducts)
	assert.Len(t, out, 3)
	assert.Equal(t, 0, absorbed)
}
