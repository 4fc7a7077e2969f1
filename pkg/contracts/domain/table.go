package domain

import (
	"fmt"
	"sort"
)

// ColumnType is the declared type of a column
type ColumnType string

const (
	ColumnRaw         ColumnType = "raw"
	ColumnList        ColumnType = "list"
	ColumnFloat       ColumnType = "float"
	ColumnInt         ColumnType = "int"
	ColumnTimestamp   ColumnType = "timestamp"
	ColumnCategorical ColumnType = "categorical"
)

// Column is a named sequence of cells. Categories is only set for
// categorical columns and holds the sorted distinct non-absent values.
type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	Values     []Value    `json:"values"`
	Categories []Value    `json:"categories,omitempty"`
}

// NewColumn creates a column; the values slice is copied.
func NewColumn(name string, typ ColumnType, values []Value) Column {
	cp := make([]Value, len(values))
	copy(cp, values)
	return Column{Name: name, Type: typ, Values: cp}
}

// Len returns the number of cells
func (c Column) Len() int { return len(c.Values) }

// AbsentCount returns the number of absent cells
func (c Column) AbsentCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsAbsent() {
			n++
		}
	}
	return n
}

// Distinct returns the sorted distinct non-absent values of the column
func (c Column) Distinct() []Value {
	seen := make(map[string]bool)
	var out []Value
	for _, v := range c.Values {
		if v.IsAbsent() {
			continue
		}
		k := v.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

func (c Column) clone() Column {
	out := Column{Name: c.Name, Type: c.Type}
	out.Values = make([]Value, len(c.Values))
	copy(out.Values, c.Values)
	if c.Categories != nil {
		out.Categories = make([]Value, len(c.Categories))
		copy(out.Categories, c.Categories)
	}
	return out
}

func (c Column) equal(o Column) bool {
	if c.Name != o.Name || c.Type != o.Type || len(c.Values) != len(o.Values) || len(c.Categories) != len(o.Categories) {
		return false
	}
	for i := range c.Values {
		if !c.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	for i := range c.Categories {
		if !c.Categories[i].Equal(o.Categories[i]) {
			return false
		}
	}
	return true
}

// Table is an ordered collection of equally long named columns. Rows are
// identified by position. Methods returning a Table never modify the receiver.
type Table struct {
	columns []Column
	rows    int
}

// NewTable builds a table from columns, which must be equally long and
// uniquely named.
func NewTable(columns ...Column) (Table, error) {
	var t Table
	for _, col := range columns {
		if t.HasColumn(col.Name) {
			return Table{}, fmt.Errorf("duplicate column %q", col.Name)
		}
		if err := t.Set(col); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

// FromRows builds a raw table from a header and row-major cells. Short rows
// are padded with absent values.
func FromRows(header []string, rows [][]Value) (Table, error) {
	cols := make([]Column, len(header))
	for j, name := range header {
		cols[j] = Column{Name: name, Type: ColumnRaw, Values: make([]Value, len(rows))}
	}
	for i, row := range rows {
		if len(row) > len(header) {
			return Table{}, fmt.Errorf("row %d has %d cells, header has %d", i, len(row), len(header))
		}
		for j := range row {
			cols[j].Values[i] = row[j]
		}
	}
	t, err := NewTable(cols...)
	if err != nil {
		return Table{}, err
	}
	t.rows = len(rows)
	return t, nil
}

// NumRows returns the number of rows
func (t Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns
func (t Table) NumColumns() int { return len(t.columns) }

// Empty reports whether the table has no rows
func (t Table) Empty() bool { return t.rows == 0 }

// ColumnNames returns the column names in order
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column exists
func (t Table) HasColumn(name string) bool {
	return t.indexOf(name) >= 0
}

// Column returns a copy of the named column
func (t Table) Column(name string) (Column, bool) {
	i := t.indexOf(name)
	if i < 0 {
		return Column{}, false
	}
	return t.columns[i].clone(), true
}

// Columns returns copies of all columns in order
func (t Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.clone()
	}
	return out
}

// Value returns the cell at row i of the named column
func (t Table) Value(name string, i int) (Value, bool) {
	j := t.indexOf(name)
	if j < 0 || i < 0 || i >= t.rows {
		return Value{}, false
	}
	return t.columns[j].Values[i], true
}

// Row returns the cells of row i keyed by column name
func (t Table) Row(i int) map[string]Value {
	row := make(map[string]Value, len(t.columns))
	if i < 0 || i >= t.rows {
		return row
	}
	for _, c := range t.columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	out := Table{rows: t.rows, columns: make([]Column, len(t.columns))}
	for i, c := range t.columns {
		out.columns[i] = c.clone()
	}
	return out
}

// Set replaces the column with the same name in place or appends it.
// The first column of an empty table fixes the row count.
func (t *Table) Set(col Column) error {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, col.Len(), t.rows)
	}
	col = col.clone()
	if i := t.indexOf(col.Name); i >= 0 {
		t.columns[i] = col
		return nil
	}
	if len(t.columns) == 0 {
		t.rows = col.Len()
	}
	t.columns = append(t.columns, col)
	return nil
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t Table) Drop(names ...string) Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := Table{rows: t.rows}
	for _, c := range t.columns {
		if !skip[c.Name] {
			out.columns = append(out.columns, c.clone())
		}
	}
	return out
}

// Select returns a table with only the named columns, in the given order
func (t Table) Select(names ...string) (Table, error) {
	out := Table{rows: t.rows}
	for _, n := range names {
		i := t.indexOf(n)
		if i < 0 {
			return Table{}, fmt.Errorf("column %q not found", n)
		}
		out.columns = append(out.columns, t.columns[i].clone())
	}
	return out, nil
}

// Equal reports whether two tables have the same columns, types, domains
// and cells in the same order.
func (t Table) Equal(o Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if !t.columns[i].equal(o.columns[i]) {
			return false
		}
	}
	return true
}

func (t Table) indexOf(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
