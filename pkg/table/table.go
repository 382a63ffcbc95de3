// Package table holds the tabular value exchanged by the delimited-text
// and spreadsheet adapters. Cells are kept as strings; numeric
// interpretation is left to the caller.
package table

import "sort"

// Table is a rectangular block of cells with named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Shape reports the number of data rows and columns.
func (t *Table) Shape() (rows, cols int) {
	rows = len(t.Rows)
	cols = len(t.Columns)
	if cols == 0 && rows > 0 {
		cols = len(t.Rows[0])
	}
	return rows, cols
}

// Append adds one row. Short rows are padded with empty cells to the
// column count; long rows keep their extra cells.
func (t *Table) Append(row ...string) {
	for len(row) < len(t.Columns) {
		row = append(row, "")
	}
	t.Rows = append(t.Rows, row)
}

// At returns the cell at (row, col), or "" when out of range.
func (t *Table) At(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Records converts the rows to column-keyed maps, for handing tabular data
// to the document formats (JSON, YAML).
func (t *Table) Records() []map[string]string {
	recs := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

// FromRecords builds a table from column-keyed maps. Columns are the
// sorted union of all record keys, so the result is deterministic.
func FromRecords(recs []map[string]string) *Table {
	seen := map[string]bool{}
	var columns []string
	for _, rec := range recs {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	t := New(columns...)
	for _, rec := range recs {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
