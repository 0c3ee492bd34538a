package tabular

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeHeader slugifies a raw column header: diacritics stripped,
// lower-cased, runs of non-alphanumerics collapsed to a single underscore,
// leading and trailing underscores trimmed. "Precio Unitário " becomes
// "precio_unitario".
func NormalizeHeader(raw string) string {
	s := strings.ToLower(stripDiacritics(raw))

	var b strings.Builder
	lastUnderscore := false
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// Objectify takes decoded rows, treats the first as headers and turns the
// rest into records keyed by normalized header. Empty headers get a
// positional column_<n> name, duplicate normalized headers get a numeric
// suffix, so the key set always has the same cardinality as the header row.
// Data rows whose cells are all empty after trimming are dropped.
func Objectify(rows [][]string) []*Record {
	if len(rows) == 0 {
		return nil
	}

	headers := normalizeHeaders(rows[0])

	records := make([]*Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := NewRecord()
		for i, key := range headers {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			rec.Set(key, value)
		}
		if rec.IsEmpty() {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func normalizeHeaders(raw []string) []string {
	used := make(map[string]bool, len(raw))
	counts := make(map[string]int, len(raw))
	headers := make([]string, len(raw))

	for i, h := range raw {
		name := NormalizeHeader(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for used[name] {
			counts[base]++
			name = fmt.Sprintf("%s_%d", base, counts[base]+1)
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}
