package tabular

import (
	"strings"
)

// DecodeCSV tokenizes comma-separated text into rows of cells.
//
// Quoting follows the usual rules: a field wrapped in double quotes may
// contain commas, quotes and newlines, and a doubled quote inside a quoted
// field is a literal quote. Rows end at \n or \r\n. Rows whose cells are all
// empty are never emitted, so blank trailing lines do not produce phantom
// records. A trailing row without a terminating newline is flushed if it has
// any non-empty cell.
func DecodeCSV(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	flushField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	flushRow := func() {
		flushField()
		for _, cell := range row {
			if cell != "" {
				rows = append(rows, row)
				break
			}
		}
		row = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteRune(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			flushField()
		case '\r':
			// Swallowed; the row ends at the \n that follows.
		case '\n':
			flushRow()
		default:
			field.WriteRune(ch)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}

	return rows
}
