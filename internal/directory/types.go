// Package directory provides the business logic for the membership directory:
// loading rows from the member sheet, searching and projecting them for
// display, and merging edits back into single-row writes.
// This package has no UI dependencies and can be used by any frontend.
package directory

// Member is one row of the membership directory, keyed by column name.
// The schema is not fixed in code: any column present in the sheet's header
// row is a legal field, and unknown columns round-trip unchanged.
type Member map[string]string

// Header is the ordered sequence of column names taken from the sheet's
// first row. It defines both the write order of fields and the authoritative
// set of recognized columns.
type Header []string

// Record pairs a Member with its load-time row index. The index is the
// member's identity for update purposes: data row i corresponds to physical
// sheet row i+2 (row 1 is the header). Indices are only valid until the next
// write-then-reload cycle.
type Record struct {
	Row    int    `json:"row"`
	Member Member `json:"member"`
}

// Directory is the full in-memory collection of Records for the current
// view. It is sourced anew on each load; there is no cache beyond the
// request lifetime.
type Directory []Record

// Field is a single (column, value) pair in header order, produced by
// Project for the print view.
type Field struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Roles is the fixed ordered list of church offices the 직분 column is
// expected to hold. Unrecognized values are preserved as free text, never
// rejected.
var Roles = []string{"목사", "전도사", "장로", "권사", "집사", "성도"}

// KnownRole reports whether role is one of the recognized offices.
func KnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Get returns the value for column, or "" if the member has no such field.
func (m Member) Get(column string) string {
	if m == nil {
		return ""
	}
	return m[column]
}

// Clone returns a copy of the member. A nil member clones to an empty one.
func (m Member) Clone() Member {
	out := make(Member, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToRow serializes the member into header order. Columns the member does not
// have are written as empty strings, so the row length always equals the
// header length.
func (m Member) ToRow(header Header) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = m.Get(col)
	}
	return row
}

// MemberFromRow builds a Member from a raw sheet row using the header for
// column names. Short rows are padded with empty strings; cells beyond the
// header are dropped, matching how the sheet API reports trailing blanks.
func MemberFromRow(header Header, row []string) Member {
	m := make(Member, len(header))
	for i, col := range header {
		if i < len(row) {
			m[col] = row[i]
		} else {
			m[col] = ""
		}
	}
	return m
}
