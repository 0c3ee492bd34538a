package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-backoffice/internal/tabular"
)

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"5.300,00", 5300},
		{"1.234", 1234},
		{"1,234", 1234},
		{"1.23", 1.23},
		{"1,23", 1.23},
		{"1.234.567", 1234567},
		{"1.234.567,89", 1234567.89},
		{"100", 100},
		{"0,5", 0.5},
		{"-12,50", -12.5},
		{"$ 1.234,50", 1234.5},
		{"ARS 99", 99},
		{" 42 ", 42},
	}
	for _, tc := range cases {
		got, ok := ParseNumeric(tc.raw)
		require.True(t, ok, "raw=%q", tc.raw)
		assert.InDelta(t, tc.want, got, 1e-9, "raw=%q", tc.raw)
	}
}

func TestParseNumericRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "N/A", "-", ",", "$"} {
		_, ok := ParseNumeric(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestParseNumericIdempotentOverCanonicalForm(t *testing.T) {
	for _, raw := range []string{"1.234,56", "0,5", "12345", "-7,25"} {
		first, ok := ParseNumeric(raw)
		require.True(t, ok)
		second, ok := ParseNumeric(FormatNumeric(first))
		require.True(t, ok)
		assert.Equal(t, first, second, "raw=%q", raw)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3.0))
	assert.Equal(t, 2650.0, Round2(5300.0/2.0))
	assert.Equal(t, 0.1, Round2(0.099))
}

func TestParseDate(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
		{"2025-03-10 14:30:00", time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)},
		{"2025-03-10T14:30:00", time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)},
		{"10/03/2025", time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
		{"10-03-2025", time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
		{"10/03/2025 14:30", time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)},
		// Yearless point-of-sale form: the year comes from the reference.
		{"5/3 18:45", time.Date(2025, 3, 5, 18, 45, 0, 0, time.Local)},
		{"5/3 18:45:30", time.Date(2025, 3, 5, 18, 45, 30, 0, time.Local)},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.raw, ref)
		require.True(t, ok, "raw=%q", tc.raw)
		assert.True(t, tc.want.Equal(got), "raw=%q got=%v", tc.raw, got)
	}
}

func TestParseDateRejects(t *testing.T) {
	ref := time.Now()
	for _, raw := range []string{"", "mañana", "99/99/2025", "13/13 10:00", "32/01/2025"} {
		_, ok := ParseDate(raw, ref)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestCoerceValuesCanonicalizesTypedFields(t *testing.T) {
	template, err := TemplateByKey(TemplateProducts)
	require.NoError(t, err)
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	rec := tabular.NewRecord()
	rec.Set("name", "Yerba")
	rec.Set("unit_price", "1.234,56")
	rec.Set("quantity", "2")
	rec.Set("sold_at", "10/03/2025")
	rec.Set("stock", "no aplica")

	CoerceValues(rec, template, ref)

	assert.Equal(t, "Yerba", rec.Get("name"))
	assert.Equal(t, "1234.56", rec.Get("unit_price"))
	assert.Equal(t, "2", rec.Get("quantity"))
	assert.Equal(t, "2025-03-10 00:00:00", rec.Get("sold_at"))
	// Unparseable typed values are blanked, never coerced to zero.
	assert.Equal(t, "", rec.Get("stock"))
}

func TestCoerceValuesLeavesBlanksAlone(t *testing.T) {
	template, err := TemplateByKey(TemplateProducts)
	require.NoError(t, err)

	rec := tabular.NewRecord()
	rec.Set("name", "Fideos")
	rec.Set("unit_price", "")

	CoerceValues(rec, template, time.Now())
	assert.Equal(t, "", rec.Get("unit_price"))
}

func TestLooksLikeSubtotal(t *testing.T) {
	for _, col := range []string{"Total", "importe_total", "Subtotal", "MONTO", "total_linea"} {
		assert.True(t, LooksLikeSubtotal(col), "col=%q", col)
	}
	for _, col := range []string{"precio", "precio_unitario", "pvp", "cantidad"} {
		assert.False(t, LooksLikeSubtotal(col), "col=%q", col)
	}
}

func TestApplyDerivedUnitPriceFromSubtotal(t *testing.T) {
	rec := tabular.NewRecord()
	rec.Set("quantity", "2")
	rec.Set("subtotal", "100")

	ApplyDerivedUnitPrice(rec, "")
	assert.Equal(t, "50", rec.Get("unit_price"))
}

func TestApplyDerivedUnitPriceKeepsGoodPrice(t *testing.T) {
	rec := tabular.NewRecord()
	rec.Set("quantity", "3")
	rec.Set("unit_price", "10")
	rec.Set("subtotal", "30")

	ApplyDerivedUnitPrice(rec, "precio")
	assert.Equal(t, "10", rec.Get("unit_price"))
}

func TestApplyDerivedUnitPriceSubtotalishSource(t *testing.T) {
	// The column the user mapped to unit_price is really a line total.
	rec := tabular.NewRecord()
	rec.Set("quantity", "2")
	rec.Set("unit_price", "5300")

	ApplyDerivedUnitPrice(rec, "importe_total")
	assert.Equal(t, "2650", rec.Get("unit_price"))
}

func TestApplyDerivedUnitPriceNeedsPositiveQuantity(t *testing.T) {
	for _, qty := range []string{"", "0", "-1", "n/a"} {
		rec := tabular.NewRecord()
		rec.Set("quantity", qty)
		rec.Set("subtotal", "100")

		ApplyDerivedUnitPrice(rec, "")
		assert.Equal(t, "", rec.Get("unit_price"), "qty=%q", qty)
	}
}

func TestApplyDerivedUnitPriceRounds(t *testing.T) {
	rec := tabular.NewRecord()
	rec.Set("quantity", "3")
	rec.Set("subtotal", "100")

	ApplyDerivedUnitPrice(rec, "")
	assert.Equal(t, "33.33", rec.Get("unit_price"))
}
