package importer

import (
	"fmt"
	"strings"
	"time"

	"retail-backoffice/internal/tabular"
)

// MergeRecords folds incoming into base: for every key incoming carries, a
// non-empty incoming value wins, an empty one keeps whatever base has.
// Later non-empty values always beat earlier ones; empty never overwrites
// non-empty. Neither input is mutated.
func MergeRecords(base, incoming *tabular.Record) *tabular.Record {
	out := base.Clone()
	for _, key := range incoming.Keys() {
		value := incoming.Get(key)
		if value != "" {
			out.Set(key, value)
		} else if !out.Has(key) {
			out.Set(key, "")
		}
	}
	return out
}

// Fields consulted, in order, when extracting a row timestamp for the
// time-aware price merge.
var priceTimestampFields = []string{"sold_at", "fecha", "date", "fecha_venta", "updated_at"}

func recordTimestamp(rec *tabular.Record, ref time.Time) (time.Time, bool) {
	for _, field := range priceTimestampFields {
		if !rec.Has(field) {
			continue
		}
		if ts, ok := ParseDate(rec.Get(field), ref); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// MergeProductRecords is MergeRecords with a time-aware rule for
// unit_price: when both sides carry a parseable price and a parseable row
// timestamp, the later-dated price wins regardless of row order. In every
// other case the generic rule applies.
func MergeProductRecords(base, incoming *tabular.Record) *tabular.Record {
	out := MergeRecords(base, incoming)

	basePrice, baseOK := ParseNumeric(base.Get("unit_price"))
	incomingPrice, incomingOK := ParseNumeric(incoming.Get("unit_price"))
	if !baseOK || !incomingOK {
		return out
	}

	now := time.Now()
	baseTime, baseTimeOK := recordTimestamp(base, now)
	incomingTime, incomingTimeOK := recordTimestamp(incoming, now)
	if !baseTimeOK || !incomingTimeOK {
		return out
	}

	if baseTime.After(incomingTime) {
		out.Set("unit_price", FormatNumeric(basePrice))
	} else {
		out.Set("unit_price", FormatNumeric(incomingPrice))
	}
	return out
}

func normalizeKeyValue(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), " ")
}

// DedupKey derives the business-identity key for a record, or "" when no
// identity can be derived (the caller assigns a positional fallback, which
// never merges with anything).
func DedupKey(rec *tabular.Record, templateKey string) string {
	switch templateKey {
	case TemplateSuppliers:
		if name := normalizeKeyValue(rec.Get("name")); name != "" {
			return "supplier:" + name
		}
	default:
		if barcode := normalizeKeyValue(rec.Get("barcode")); barcode != "" {
			return "barcode:" + barcode
		}
		if code := normalizeKeyValue(rec.Get("internal_code")); code != "" {
			return "internal_code:" + code
		}
	}
	return ""
}

// RowPair carries one row through the import pipeline: the record as
// decoded from the file and its mapping-applied projection (nil when the
// mapping produced no fields).
type RowPair struct {
	Raw        *tabular.Record
	Normalized *tabular.Record
}

// DeduplicateRows folds row pairs sharing a DedupKey in first-seen order:
// the first pair with a key becomes the running base, each later one is
// merged in as incoming. The raw payload of a folded row stays the
// first-seen original. Pairs without a derivable key get a positional
// fallback key and never merge. The absorbed count (input - output) is
// returned alongside so the operator sees what was collapsed instead of it
// being silently dropped.
func DeduplicateRows(pairs []RowPair, templateKey string) ([]RowPair, int) {
	out := make([]RowPair, 0, len(pairs))
	index := make(map[string]int, len(pairs))

	for i, pair := range pairs {
		key := ""
		if pair.Normalized != nil {
			key = DedupKey(pair.Normalized, templateKey)
		}
		if key == "" {
			key = fmt.Sprintf("row:%d", i)
		}

		j, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, pair)
			continue
		}
		if templateKey == TemplateProducts {
			out[j].Normalized = MergeProductRecords(out[j].Normalized, pair.Normalized)
		} else {
			out[j].Normalized = MergeRecords(out[j].Normalized, pair.Normalized)
		}
	}

	return out, len(pairs) - len(out)
}

// Deduplicate is DeduplicateRows over bare records.
func Deduplicate(records []*tabular.Record, templateKey string) ([]*tabular.Record, int) {
	pairs := make([]RowPair, len(records))
	for i, rec := range records {
		pairs[i] = RowPair{Normalized: rec.Clone()}
	}

	folded, absorbed := DeduplicateRows(pairs, templateKey)
	out := make([]*tabular.Record, len(folded))
	for i, pair := range folded {
		out[i] = pair.Normalized
	}
	return out, absorbed
}
