// Package table holds the in-memory parsed form of one spreadsheet dataset.
package table

// Row maps a column name to a cell value. A cell is a string, a float64
// (numeric spreadsheet cell), or blank (""). Rows never hold nil values.
type Row map[string]any

// Table is an ordered sequence of rows plus the header-row column order.
// Immutable after decoding; queries never mutate it.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// First returns row 0, or nil for an empty table. Schema probing treats the
// first row as representative of the column set.
func (t *Table) First() Row {
	if t.Len() == 0 {
		return nil
	}
	return t.Rows[0]
}

// HasColumn reports whether the header row declared the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
