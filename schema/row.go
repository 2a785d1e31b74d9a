package schema

import (
	"fmt"
	"maps"
	"slices"
)

// LabelColumn is the column that addresses rows of a general table.
const LabelColumn = "label"

// Column is a single named value used to build rows.
type Column struct {
	Name  string
	Value any
}

// Col is shorthand for constructing a Column.
func Col(name string, value any) Column {
	return Column{Name: name, Value: value}
}

// Row is an ordered set of columns plus metadata, an optional owned sub-table
// and the comparison entries attached to it.
type Row struct {
	Metadata    map[string]any
	Subtable    *Table
	Comparisons *Table

	keys   []string
	values map[string]any
}

// NewRow builds a row from columns in the given order.
func NewRow(columns ...Column) *Row {
	r := &Row{
		Metadata: make(map[string]any),
		values:   make(map[string]any, len(columns)),
	}
	for _, c := range columns {
		r.SetColumn(c.Name, c.Value)
	}
	return r
}

// Columns returns the column names in order.
func (r *Row) Columns() []string {
	return slices.Clone(r.keys)
}

// ColumnCount returns the number of columns.
func (r *Row) ColumnCount() int {
	return len(r.keys)
}

// Column returns the value stored under name.
func (r *Row) Column(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// SetColumn sets a column value, appending the column if it does not exist yet.
func (r *Row) SetColumn(name string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// DeleteColumn removes a column if present.
func (r *Row) DeleteColumn(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == name })
}

// Float returns the numeric value of a column.
func (r *Row) Float(name string) (float64, bool) {
	v, ok := r.values[name]
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Label returns the row label as a string.
func (r *Row) Label() (string, bool) {
	v, ok := r.values[LabelColumn]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// RenameColumns rewrites column names through mapping, keeping column order.
// If a renamed column collides with an existing one, the renamed value wins.
func (r *Row) RenameColumns(mapping map[string]string) {
	keys := make([]string, 0, len(r.keys))
	values := make(map[string]any, len(r.values))
	renamed := make(map[string]bool, len(mapping))
	for _, k := range r.keys {
		name, ok := mapping[k]
		if !ok {
			name = k
		}
		if _, seen := values[name]; !seen {
			keys = append(keys, name)
		} else if renamed[name] && !ok {
			continue
		}
		values[name] = r.values[k]
		if ok {
			renamed[name] = true
		}
	}
	r.keys = keys
	r.values = values
}

// Clone returns a deep copy of the row's columns and metadata.
// Sub-tables and comparison tables are shared, not copied.
func (r *Row) Clone() *Row {
	return &Row{
		Metadata:    maps.Clone(r.Metadata),
		Subtable:    r.Subtable,
		Comparisons: r.Comparisons,
		keys:        slices.Clone(r.keys),
		values:      maps.Clone(r.values),
	}
}
