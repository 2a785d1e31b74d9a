package schema

import (
	"cmp"
	"slices"
)

// TableKind distinguishes a labeled report table from a single-row aggregate.
type TableKind string

// All table kinds supported.
const (
	GeneralTable TableKind = "general" // default
	SimpleTable  TableKind = "simple"
)

// Table is an ordered hierarchical report table.
// Rows of a general table are addressed by their label column; a simple table
// holds exactly one aggregate row and has no label axis.
type Table struct {
	Kind     TableKind
	Metadata map[string]any

	rows       []*Row
	labelIndex map[string]*Row
}

// NewTable returns an empty general table.
func NewTable() *Table {
	return &Table{
		Kind:     GeneralTable,
		Metadata: make(map[string]any),
	}
}

// NewSimpleTable returns a simple table wrapping a single aggregate row.
func NewSimpleTable(row *Row) *Table {
	t := &Table{
		Kind:     SimpleTable,
		Metadata: make(map[string]any),
	}
	if row != nil {
		t.rows = []*Row{row}
	}
	return t
}

// IsSimple reports whether the table is a single-row aggregate.
func (t *Table) IsSimple() bool {
	return t != nil && t.Kind == SimpleTable
}

// AddRow appends a row. When two rows share a label, lookups return the last one added.
func (t *Table) AddRow(row *Row) {
	t.rows = append(t.rows, row)
	if t.labelIndex != nil {
		if label, ok := row.Label(); ok {
			t.labelIndex[label] = row
		}
	}
}

// Rows returns the rows in insertion order.
func (t *Table) Rows() []*Row {
	if t == nil {
		return nil
	}
	return t.rows
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// FirstRow returns the first row or nil for an empty table.
func (t *Table) FirstRow() *Row {
	if t == nil || len(t.rows) == 0 {
		return nil
	}
	return t.rows[0]
}

// RowFromLabel returns the row whose label column equals label, or nil.
// The label index is built on first use and kept current by AddRow.
func (t *Table) RowFromLabel(label string) *Row {
	if t == nil {
		return nil
	}
	if t.labelIndex == nil {
		t.labelIndex = make(map[string]*Row, len(t.rows))
		for _, row := range t.rows {
			if l, ok := row.Label(); ok {
				t.labelIndex[l] = row
			}
		}
	}
	return t.labelIndex[label]
}

// SetMetadata sets a table-level metadata value.
func (t *Table) SetMetadata(key string, value any) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.Metadata[key] = value
}

// GetMetadata returns a table-level metadata value.
func (t *Table) GetMetadata(key string) (any, bool) {
	if t == nil || t.Metadata == nil {
		return nil, false
	}
	v, ok := t.Metadata[key]
	return v, ok
}

// SortByColumn orders rows by a numeric column, descending when desc is true.
// Rows missing the column or holding a non-numeric value sort last.
func (t *Table) SortByColumn(column string, desc bool) {
	slices.SortStableFunc(t.rows, func(a, b *Row) int {
		av, aok := a.Float(column)
		bv, bok := b.Float(column)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		if desc {
			return cmp.Compare(bv, av)
		}
		return cmp.Compare(av, bv)
	})
}

// Slice keeps at most limit rows starting at offset. A limit <= 0 keeps all remaining rows.
func (t *Table) Slice(offset, limit int) {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.rows) {
		t.rows = nil
		t.labelIndex = nil
		return
	}
	t.rows = t.rows[offset:]
	if limit > 0 && limit < len(t.rows) {
		t.rows = t.rows[:limit]
	}
	t.labelIndex = nil
}

// Release drops every row, sub-table and comparison table so the memory can be reclaimed.
func (t *Table) Release() {
	if t == nil {
		return
	}
	for _, row := range t.rows {
		row.Subtable.Release()
		row.Comparisons.Release()
		row.Subtable = nil
		row.Comparisons = nil
	}
	t.rows = nil
	t.labelIndex = nil
}
