// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColumnKind is the inferred type of a column.
type ColumnKind int

const (
	// Text columns compare by exact string.
	Text ColumnKind = iota
	// Numeric columns compare by float value.
	Numeric
)

// naTokens are read as missing, like the pandas CSV reader defaults.
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "#N/A N/A": {},
	"1.#IND": {}, "-1.#IND": {}, "1.#QNAN": {}, "-1.#QNAN": {},
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(cell string) bool {
	_, ok := naTokens[strings.TrimSpace(cell)]
	return ok
}

// ParseNumber parses a cell as a finite float. Missing or malformed cells fail.
func ParseNumber(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Table is an immutable in-memory dataset. Filtering returns views that
// share the underlying rows.
type Table struct {
	columns []string
	index   map[string]int
	kinds   []ColumnKind
	rows    [][]string
}

// NewTable builds a table, padding short rows with missing cells and
// inferring column kinds.
func NewTable(columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		cols[i] = c
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	norm := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) < len(cols) {
			padded := make([]string, len(cols))
			copy(padded, r)
			r = padded
		} else if len(r) > len(cols) {
			r = r[:len(cols)]
		}
		norm[i] = r
	}

	t := &Table{columns: cols, index: index, rows: norm}
	t.kinds = make([]ColumnKind, len(cols))
	for c := range cols {
		t.kinds[c] = t.inferKind(c)
	}
	return t
}

func (t *Table) inferKind(col int) ColumnKind {
	seen := false
	for _, r := range t.rows {
		cell := r[col]
		if IsMissing(cell) {
			continue
		}
		if _, ok := ParseNumber(cell); !ok {
			return Text
		}
		seen = true
	}
	if !seen {
		return Text
	}
	return Numeric
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Kind returns the inferred kind of col.
func (t *Table) Kind(col string) ColumnKind {
	i := t.Index(col)
	if i < 0 {
		return Text
	}
	return t.kinds[i]
}

// Cell returns the raw cell at (row, col) and whether it holds a value.
func (t *Table) Cell(row int, col string) (string, bool) {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= len(t.rows) {
		return "", false
	}
	cell := t.rows[row][i]
	if IsMissing(cell) {
		return "", false
	}
	return strings.TrimSpace(cell), true
}

// Key returns the comparison key of (row, col): the canonical number for
// numeric columns, the trimmed text otherwise.
func (t *Table) Key(row int, col string) (string, bool) {
	cell, ok := t.Cell(row, col)
	if !ok {
		return "", false
	}
	if t.Kind(col) == Numeric {
		v, _ := ParseNumber(cell)
		return CanonicalNumber(v), true
	}
	return cell, true
}

// KeyOf normalizes a user-supplied value to the comparison key of col.
func (t *Table) KeyOf(col, value string) string {
	value = strings.TrimSpace(value)
	if t.Kind(col) == Numeric {
		if v, ok := ParseNumber(value); ok {
			return CanonicalNumber(v)
		}
	}
	return value
}

// CanonicalNumber formats v in its shortest round-trip form.
func CanonicalNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Row returns a copy of the raw cells of row.
func (t *Table) Row(row int) []string {
	out := make([]string, len(t.columns))
	copy(out, t.rows[row])
	return out
}

// Where returns the rows for which keep returns true.
func (t *Table) Where(keep func(row int) bool) *Table {
	out := &Table{columns: t.columns, index: t.index, kinds: t.kinds}
	for i, r := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Equal returns the rows whose col key equals value's key.
func (t *Table) Equal(col, value string) *Table {
	want := t.KeyOf(col, value)
	return t.Where(func(row int) bool {
		k, ok := t.Key(row, col)
		return ok && k == want
	})
}

// Distinct returns the distinct non-missing keys of col in first-appearance order.
func (t *Table) Distinct(col string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range t.rows {
		k, ok := t.Key(i, col)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Project returns the rows restricted to the listed columns that exist, in
// the given order. Missing cells are rendered as empty strings.
func (t *Table) Project(cols []string) ([]string, [][]string) {
	var present []string
	var idx []int
	for _, c := range cols {
		if i := t.Index(c); i >= 0 {
			present = append(present, c)
			idx = append(idx, i)
		}
	}
	out := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells := make([]string, len(idx))
		for j, i := range idx {
			if !IsMissing(row[i]) {
				cells[j] = strings.TrimSpace(row[i])
			}
		}
		out[r] = cells
	}
	return present, out
}

// String implements fmt.Stringer for debugging.
func (t *Table) String() string {
	return fmt.Sprintf("Table(%d rows x %d cols)", len(t.rows), len(t.columns))
}
