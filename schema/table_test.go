package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFromLabel(t *testing.T) {
	table := NewTable()
	table.AddRow(NewRow(Col("label", "A"), Col("nb_visits", 1)))
	table.AddRow(NewRow(Col("label", "B"), Col("nb_visits", 2)))

	require.NotNil(t, table.RowFromLabel("A"))
	assert.Nil(t, table.RowFromLabel("missing"))

	// Rows added after the index exists are still found, and the last duplicate wins.
	dup := NewRow(Col("label", "A"), Col("nb_visits", 3))
	table.AddRow(dup)
	assert.Same(t, dup, table.RowFromLabel("A"))

	numeric := NewRow(Col("label", 42), Col("nb_visits", 4))
	table.AddRow(numeric)
	assert.Same(t, numeric, table.RowFromLabel("42"))
}

func TestSimpleTable(t *testing.T) {
	row := NewRow(Col("nb_visits", 7))
	table := NewSimpleTable(row)

	assert.True(t, table.IsSimple())
	assert.Equal(t, 1, table.RowCount())
	assert.Same(t, row, table.FirstRow())
	assert.False(t, NewTable().IsSimple())

	var nilTable *Table
	assert.False(t, nilTable.IsSimple())
	assert.Nil(t, nilTable.FirstRow())
	assert.Equal(t, 0, nilTable.RowCount())
}

func TestRowColumns(t *testing.T) {
	row := NewRow(Col("label", "A"), Col("2", 10), Col("3", "15"))
	assert.Equal(t, []string{"label", "2", "3"}, row.Columns())

	v, ok := row.Float("3")
	assert.True(t, ok)
	assert.Equal(t, 15.0, v)

	_, ok = row.Float("label")
	assert.False(t, ok)

	row.SetColumn("2", 11)
	assert.Equal(t, []string{"label", "2", "3"}, row.Columns(), "overwriting keeps position")

	row.RenameColumns(map[string]string{"2": "nb_visits", "3": "nb_actions"})
	assert.Equal(t, []string{"label", "nb_visits", "nb_actions"}, row.Columns())
	val, _ := row.Column("nb_visits")
	assert.Equal(t, 11, val)

	row.DeleteColumn("label")
	assert.Equal(t, []string{"nb_visits", "nb_actions"}, row.Columns())
	_, ok = row.Label()
	assert.False(t, ok)
}

func TestRenameColumnsCollision(t *testing.T) {
	row := NewRow(Col("nb_visits", 1), Col("2", 5))
	row.RenameColumns(map[string]string{"2": "nb_visits"})

	assert.Equal(t, []string{"nb_visits"}, row.Columns())
	v, _ := row.Column("nb_visits")
	assert.Equal(t, 5, v)
}

func TestSortAndSlice(t *testing.T) {
	table := NewTable()
	for _, r := range []struct {
		label  string
		visits any
	}{{"a", 3}, {"b", 10}, {"c", "n/a"}, {"d", 7}} {
		table.AddRow(NewRow(Col("label", r.label), Col("nb_visits", r.visits)))
	}

	table.SortByColumn("nb_visits", true)
	var labels []string
	for _, row := range table.Rows() {
		l, _ := row.Label()
		labels = append(labels, l)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, labels)

	table.Slice(1, 2)
	require.Equal(t, 2, table.RowCount())
	assert.Nil(t, table.RowFromLabel("b"))
	assert.NotNil(t, table.RowFromLabel("d"))

	table.Slice(5, 0)
	assert.Equal(t, 0, table.RowCount())
}

func TestRelease(t *testing.T) {
	sub := NewTable()
	sub.AddRow(NewRow(Col("label", "child")))
	row := NewRow(Col("label", "parent"))
	row.Subtable = sub
	table := NewTable()
	table.AddRow(row)

	table.Release()
	assert.Equal(t, 0, table.RowCount())
	assert.Nil(t, row.Subtable)
	assert.Equal(t, 0, sub.RowCount())
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{10, 10, true},
		{int64(3), 3, true},
		{2.5, 2.5, true},
		{"4.5", 4.5, true},
		{" 7 ", 7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"0x1p4", 0, false},
		{"1_000", 0, false},
		{".5", 0.5, true},
		{"-2e2", -200, true},
		{"1e999", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "input %#v", tt.in)
		assert.Equal(t, tt.want, got, "input %#v", tt.in)
	}
}

func TestIsNumericName(t *testing.T) {
	for _, name := range []string{"2", "1.5", " 5", "5 ", "+3", "-4", ".5", "5.", "1e3", "2E-2", "\t7"} {
		assert.True(t, IsNumericName(name), "%q", name)
	}
	for _, name := range []string{"", " ", "2_change", "nb_visits", "inf", "NaN", "0x1p4", "0x1A", "0b101", "1_000", ".", "e5", "1e", "--1"} {
		assert.False(t, IsNumericName(name), "%q", name)
	}
}
