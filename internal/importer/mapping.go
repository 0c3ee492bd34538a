package importer

import (
	"strings"

	"retail-backoffice/internal/tabular"
)

// AutoMap proposes a target-field -> source-column mapping for the detected
// columns. For each template field the field's own name is tried first, then
// its aliases in order; the first detected column that matches wins.
// Unmatched fields are simply absent from the mapping: every field is
// optional at this layer, required-field enforcement happens at validation.
func AutoMap(columns []string, t *Template) map[string]string {
	detected := make(map[string]string, len(columns))
	for _, col := range columns {
		lower := strings.ToLower(col)
		if _, ok := detected[lower]; !ok {
			detected[lower] = col
		}
	}

	mapping := make(map[string]string)
	for _, field := range t.Fields {
		candidates := append([]string{field.Name}, field.Aliases...)
		for _, candidate := range candidates {
			if col, ok := detected[strings.ToLower(candidate)]; ok {
				mapping[field.Name] = col
				break
			}
		}
	}
	return mapping
}

// ResolveMapping merges the auto-proposal with explicit user selections.
// A user selection always wins for its field, independently per field;
// selections naming unknown fields or undetected columns are dropped.
func ResolveMapping(auto, overrides map[string]string, t *Template, columns []string) map[string]string {
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}

	mapping := make(map[string]string, len(auto))
	for field, col := range auto {
		mapping[field] = col
	}
	for field, col := range overrides {
		if col == "" {
			continue
		}
		if _, ok := t.Field(field); !ok {
			continue
		}
		if !known[col] {
			continue
		}
		mapping[field] = col
	}
	return mapping
}

// ApplyMapping projects a raw record onto the template's fields. Fields are
// emitted in template order. Returns nil when the mapping produced no
// fields, which downstream persists as an absent normalized payload.
func ApplyMapping(rec *tabular.Record, mapping map[string]string, t *Template) *tabular.Record {
	out := tabular.NewRecord()
	for _, field := range t.Fields {
		col, ok := mapping[field.Name]
		if !ok {
			continue
		}
		if !rec.Has(col) {
			continue
		}
		out.Set(field.Name, strings.TrimSpace(rec.Get(col)))
	}
	if out.Len() == 0 {
		return nil
	}
	return out
}
