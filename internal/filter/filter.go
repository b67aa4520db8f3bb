package filter

import (
	"fmt"
	"strings"
)

// Selection accumulates multi-select filter choices and renders them as a
// parameterized SQL predicate: one IN clause per column, joined with AND.
// Values are never interpolated into the SQL text; each one binds to a
// named parameter derived from the column's prefix (:c0, :c1, ...).
type Selection struct {
	cols []selectionColumn
}

type selectionColumn struct {
	name   string
	prefix string
	values []string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// In adds an IN filter on column with the given values. The parameter
// prefix is derived from the column name (first letter of its final
// identifier segment); use InAs to pin a specific prefix.
func (s *Selection) In(column string, values ...string) *Selection {
	return s.InAs(column, derivePrefix(column), values...)
}

// InAs adds an IN filter on column using the given parameter prefix.
// Prefixes are sanitized to lowercase letters and made unique across the
// selection, so parameter names never collide between columns.
func (s *Selection) InAs(column, prefix string, values ...string) *Selection {
	if column == "" {
		return s
	}
	p := sanitizePrefix(prefix)
	if p == "" {
		p = derivePrefix(column)
	}
	for s.prefixTaken(p) {
		// Doubling the first letter keeps the prefix letters-only, which
		// keeps prefix+index parameter names collision-free.
		p += p[:1]
	}
	s.cols = append(s.cols, selectionColumn{
		name:   column,
		prefix: p,
		values: append([]string(nil), values...),
	})
	return s
}

// Empty reports whether no column holds any values.
func (s *Selection) Empty() bool {
	for _, c := range s.cols {
		if len(c.values) > 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the selection.
func (s *Selection) Clone() *Selection {
	out := &Selection{cols: make([]selectionColumn, len(s.cols))}
	for i, c := range s.cols {
		out.cols[i] = selectionColumn{
			name:   c.name,
			prefix: c.prefix,
			values: append([]string(nil), c.values...),
		}
	}
	return out
}

// Predicate renders the selection as a SQL predicate and its bound
// parameters. Columns with no values contribute nothing; an entirely
// empty selection yields "" and an empty map.
func (s *Selection) Predicate() (string, map[string]any) {
	params := make(map[string]any)
	var clauses []string
	for _, c := range s.cols {
		if len(c.values) == 0 {
			continue
		}
		placeholders := make([]string, len(c.values))
		for i, v := range c.values {
			name := fmt.Sprintf("%s%d", c.prefix, i)
			placeholders[i] = ":" + name
			params[name] = v
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", c.name, strings.Join(placeholders, ", ")))
	}
	return strings.Join(clauses, " AND "), params
}

// Where renders the predicate with a leading "WHERE ", or "" when the
// selection is empty. Callers splice the result directly into statements,
// so an empty selection must produce no clause at all.
func (s *Selection) Where() (string, map[string]any) {
	pred, params := s.Predicate()
	if pred == "" {
		return "", params
	}
	return "WHERE " + pred, params
}

func (s *Selection) prefixTaken(p string) bool {
	for _, c := range s.cols {
		if c.prefix == p {
			return true
		}
	}
	return false
}

// derivePrefix picks the first letter of the column's final identifier
// segment, so "fl.Provider_Type" derives "p" and "city" derives "c".
func derivePrefix(column string) string {
	seg := column
	if i := strings.LastIndexByte(seg, '.'); i >= 0 {
		seg = seg[i+1:]
	}
	for _, r := range seg {
		if r >= 'a' && r <= 'z' {
			return string(r)
		}
		if r >= 'A' && r <= 'Z' {
			return string(r + ('a' - 'A'))
		}
	}
	return "p"
}

// sanitizePrefix keeps lowercase letters only. Digits are dropped so a
// prefix can never run into the numeric index that follows it.
func sanitizePrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}
