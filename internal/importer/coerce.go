package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"retail-backoffice/internal/tabular"
)

var numericCleaner = regexp.MustCompile(`[^0-9,.\-]`)

// ParseNumeric parses a human-entered amount where both "," and "." occur
// as decimal or thousands separators. When both are present the one
// appearing last is the decimal point. A lone comma (or dot) is a decimal
// point only when at most two digits follow it; otherwise, or when repeated,
// it is a thousands separator. Empty or unparseable input reports ok=false,
// which callers must treat as "field absent", never as zero.
func ParseNumeric(raw string) (float64, bool) {
	cleaned := numericCleaner.ReplaceAllString(raw, "")
	if cleaned == "" || !strings.ContainsAny(cleaned, "0123456789") {
		return 0, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(cleaned, ".") == 1 && len(cleaned)-lastDot-1 <= 2 {
			// Already a decimal point.
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FormatNumeric renders a value in the canonical dot-decimal form used in
// normalized payloads.
func FormatNumeric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var shortDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
var isoPrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var fallbackLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006 15:04",
	"02/01/06",
	"2006/01/02",
}

// ParseDate parses the date formats retail exports actually contain: ISO
// prefixed, dd/mm/yyyy, dd-mm-yyyy, and the yearless d/m hh:mm[:ss] form
// that point-of-sale exports emit (year taken from ref, local time), plus a
// small fallback set. Reports ok=false when nothing matches.
func ParseDate(raw string, ref time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if isoPrefixPattern.MatchString(s) {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, true
			}
		}
	}

	if t, err := time.ParseInLocation("02/01/2006", s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("02-01-2006", s, time.Local); err == nil {
		return t, true
	}

	if m := shortDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		hour, _ := strconv.Atoi(m[3])
		minute, _ := strconv.Atoi(m[4])
		second := 0
		if m[5] != "" {
			second, _ = strconv.Atoi(m[5])
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 && hour < 24 && minute < 60 && second < 60 {
			return time.Date(ref.Year(), time.Month(month), day, hour, minute, second, 0, time.Local), true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

const canonicalDateLayout = "2006-01-02 15:04:05"

// CoerceValues canonicalizes the typed fields of a mapped record in place:
// numeric fields become dot-decimal strings, date fields become
// "2006-01-02 15:04:05". Unparseable values are blanked, since a null
// numeric or date means "absent", not zero.
func CoerceValues(rec *tabular.Record, t *Template, ref time.Time) {
	for _, field := range t.Fields {
		if !rec.Has(field.Name) {
			continue
		}
		raw := rec.Get(field.Name)
		if raw == "" {
			continue
		}
		switch field.Kind {
		case KindNumeric:
			if v, ok := ParseNumeric(raw); ok {
				rec.Set(field.Name, FormatNumeric(v))
			} else {
				rec.Set(field.Name, "")
			}
		case KindDate:
			if ts, ok := ParseDate(raw, ref); ok {
				rec.Set(field.Name, ts.Format(canonicalDateLayout))
			} else {
				rec.Set(field.Name, "")
			}
		}
	}
}

var subtotalHints = []string{"total", "importe", "subtotal", "monto"}

// LooksLikeSubtotal reports whether a source column name lexically reads as
// a line total rather than a per-unit price. The hint list is a starting
// heuristic, refined against real exports.
func LooksLikeSubtotal(column string) bool {
	lower := strings.ToLower(column)
	for _, hint := range subtotalHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// ApplyDerivedUnitPrice computes unit_price = round2(subtotal/quantity)
// when the record has no usable unit price, or when the column the user
// mapped to unit_price looks like a line total. Retail exports commonly
// report line totals instead of per-unit prices; importing a subtotal as a
// unit price is the expensive mistake this guard exists for. Requires a
// positive quantity; otherwise the record is left untouched.
func ApplyDerivedUnitPrice(rec *tabular.Record, unitPriceSource string) {
	qty, qtyOK := ParseNumeric(rec.Get("quantity"))
	if !qtyOK || qty <= 0 {
		return
	}

	price, priceOK := ParseNumeric(rec.Get("unit_price"))
	subtotalish := LooksLikeSubtotal(unitPriceSource)
	if priceOK && price >= 0 && !subtotalish {
		return
	}

	subtotal, subtotalOK := ParseNumeric(rec.Get("subtotal"))
	if !subtotalOK && subtotalish && priceOK {
		// The mapped "unit price" is really the line total.
		subtotal, subtotalOK = price, true
	}
	if !subtotalOK {
		return
	}

	rec.Set("unit_price", FormatNumeric(Round2(subtotal/qty)))
}
