package directory

import "strings"

// Search filters the directory by a case-insensitive substring match.
//
// An empty field searches every column; otherwise only the named column is
// matched. An empty term returns d itself (the same slice, not a filtered
// copy), so row indices stay stable for the editor.
func Search(d Directory, term, field string) Directory {
	if term == "" {
		return d
	}

	needle := strings.ToLower(term)
	out := make(Directory, 0, len(d))
	for _, rec := range d {
		if memberMatches(rec.Member, needle, field) {
			out = append(out, rec)
		}
	}
	return out
}

func memberMatches(m Member, needle, field string) bool {
	if field != "" {
		return strings.Contains(strings.ToLower(m.Get(field)), needle)
	}
	for _, v := range m {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Grid chunks the directory into rows of up to columnsPerRow records for
// card-layout rendering. Pure layout, no filtering. columnsPerRow < 1 is
// treated as 1.
func Grid(d Directory, columnsPerRow int) []Directory {
	if columnsPerRow < 1 {
		columnsPerRow = 1
	}
	var rows []Directory
	for start := 0; start < len(d); start += columnsPerRow {
		end := start + columnsPerRow
		if end > len(d) {
			end = len(d)
		}
		rows = append(rows, d[start:end])
	}
	return rows
}

// Project returns the member's (column, value) pairs for the selected
// columns, in selection order, omitting columns whose value is empty.
// Used by the print view; the web layer keeps name and photo columns out of
// the selectable set since those render separately.
func Project(m Member, cols []string) []Field {
	fields := make([]Field, 0, len(cols))
	for _, col := range cols {
		if v := m.Get(col); v != "" {
			fields = append(fields, Field{Column: col, Value: v})
		}
	}
	return fields
}
