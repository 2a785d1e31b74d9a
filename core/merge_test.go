package core

import (
	"testing"

	"github.com/huangsam/datacompare/internal/display"
	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeComparisonSimpleTable(t *testing.T) {
	base := baseTable(labeled("A", schema.Col("nb_visits", 10)))
	compare := schema.NewSimpleTable(schema.NewRow(schema.Col("nb_visits", 7)))

	MergeComparison(schema.VariantParams{}, base, compare, CalculateEvolution)

	entries := base.FirstRow().Comparisons
	require.Equal(t, 1, entries.RowCount())
	entry := entries.FirstRow()
	assert.Equal(t, 7, column(t, entry, "nb_visits"))
	assert.Equal(t, CalculateEvolution(7, 10, 1), column(t, entry, "nb_visits_change"))
	assert.Empty(t, entry.Metadata)
}

func TestMergeComparisonUnmatchedRowIsZeroed(t *testing.T) {
	base := baseTable(labeled("B", schema.Col("nb_visits", 5), schema.Col("nb_actions", 8), schema.Col("note", "x")))
	compare := schema.NewTable()
	compare.AddRow(labeled("other", schema.Col("nb_visits", 50)))

	MergeComparison(schema.VariantParams{Segment: "browserCode==FF"}, base, compare, CalculateEvolution)

	entry := base.FirstRow().Comparisons.FirstRow()
	require.NotNil(t, entry)
	assert.Equal(t, []string{"nb_visits", "nb_actions", "nb_visits_change", "nb_actions_change"}, entry.Columns())
	assert.Equal(t, 0, column(t, entry, "nb_visits"))
	assert.Equal(t, CalculateEvolution(0, 5, 1), column(t, entry, "nb_visits_change"))
	assert.Equal(t, -100.0, column(t, entry, "nb_actions_change"))
	assert.Equal(t, map[string]any{schema.MetaCompareSegment: "browserCode==FF"}, entry.Metadata)
}

func TestMergeComparisonMatchedRowCopiesNumericColumns(t *testing.T) {
	base := baseTable(labeled("/index", schema.Col("nb_visits", 4)))
	compare := schema.NewTable()
	compare.AddRow(labeled("/index",
		schema.Col("nb_visits", 6),
		schema.Col("nb_hits", "12"),
		schema.Col("url", "http://example.com"),
	))

	variant := schema.VariantParams{Date: "2019-12-01", Period: "month"}
	MergeComparison(variant, base, compare, CalculateEvolution)

	entry := base.FirstRow().Comparisons.FirstRow()
	assert.Equal(t, []string{"nb_visits", "nb_hits", "nb_visits_change", "nb_hits_change"}, entry.Columns())
	assert.Equal(t, 12.0, column(t, entry, "nb_hits"), "numeric strings become numbers")
	assert.Equal(t, 50.0, column(t, entry, "nb_visits_change"))
	// base has no nb_hits, so the old value is 0
	assert.Equal(t, 100.0, column(t, entry, "nb_hits_change"))
	assert.Equal(t, map[string]any{
		schema.MetaComparePeriod: "month",
		schema.MetaCompareDate:   "2019-12-01",
	}, entry.Metadata)
}

func TestMergeComparisonFormatsNumericStrings(t *testing.T) {
	base := baseTable(labeled("/index", schema.Col("nb_visits", 4), schema.Col("avg_time_on_page", 30.0)))
	compare := schema.NewTable()
	compare.AddRow(labeled("/index", schema.Col("nb_visits", "1200"), schema.Col("avg_time_on_page", "75")))

	MergeComparison(schema.VariantParams{}, base, compare, CalculateEvolution)
	entries := base.FirstRow().Comparisons
	display.NewFormatter(1).FormatMetrics(entries)

	entry := entries.FirstRow()
	assert.Equal(t, "1,200", column(t, entry, "nb_visits"))
	assert.Equal(t, "00:01:15", column(t, entry, "avg_time_on_page"))
	assert.Equal(t, "+29900.0%", column(t, entry, "nb_visits_change"))
}

func TestMergeComparisonAccumulatesAcrossVariants(t *testing.T) {
	base := baseTable(labeled("A", schema.Col("nb_visits", 10)), labeled("B", schema.Col("nb_visits", 2)))
	first := schema.NewTable()
	first.AddRow(labeled("A", schema.Col("nb_visits", 5)))
	second := schema.NewTable()
	second.AddRow(labeled("B", schema.Col("nb_visits", 4)))

	MergeComparison(schema.VariantParams{Segment: "s==1"}, base, first, CalculateEvolution)
	MergeComparison(schema.VariantParams{Segment: "s==2"}, base, second, CalculateEvolution)

	for _, row := range base.Rows() {
		require.Equal(t, 2, row.Comparisons.RowCount())
		assert.Equal(t, "s==1", row.Comparisons.Rows()[0].Metadata[schema.MetaCompareSegment])
		assert.Equal(t, "s==2", row.Comparisons.Rows()[1].Metadata[schema.MetaCompareSegment])
	}
	a := base.RowFromLabel("A").Comparisons.Rows()
	assert.Equal(t, 5, column(t, a[0], "nb_visits"))
	assert.Equal(t, 0, column(t, a[1], "nb_visits"))
}

func TestMergeComparisonRecursion(t *testing.T) {
	newFolder := func(visits int, children ...*schema.Row) *schema.Row {
		row := labeled("blog", schema.Col("nb_visits", visits))
		if children != nil {
			row.Subtable = schema.NewTable()
			for _, c := range children {
				row.Subtable.AddRow(c)
			}
		}
		return row
	}

	t.Run("both sides have sub-tables", func(t *testing.T) {
		base := baseTable(newFolder(10, labeled("post", schema.Col("nb_visits", 4))))
		compare := schema.NewTable()
		compare.AddRow(newFolder(8, labeled("post", schema.Col("nb_visits", 2))))

		MergeComparison(schema.VariantParams{}, base, compare, CalculateEvolution)

		child := base.FirstRow().Subtable.FirstRow()
		require.Equal(t, 1, child.Comparisons.RowCount())
		assert.Equal(t, 2, column(t, child.Comparisons.FirstRow(), "nb_visits"))
		assert.Equal(t, -50.0, column(t, child.Comparisons.FirstRow(), "nb_visits_change"))
	})

	t.Run("variant row without sub-table stops recursion", func(t *testing.T) {
		base := baseTable(newFolder(10, labeled("post", schema.Col("nb_visits", 4))))
		compare := schema.NewTable()
		compare.AddRow(newFolder(8))

		MergeComparison(schema.VariantParams{}, base, compare, CalculateEvolution)

		assert.Equal(t, 1, base.FirstRow().Comparisons.RowCount())
		assert.Nil(t, base.FirstRow().Subtable.FirstRow().Comparisons)
	})

	t.Run("unmatched row stops recursion", func(t *testing.T) {
		base := baseTable(newFolder(10, labeled("post", schema.Col("nb_visits", 4))))

		MergeComparison(schema.VariantParams{}, base, schema.NewTable(), CalculateEvolution)

		assert.Equal(t, 1, base.FirstRow().Comparisons.RowCount())
		assert.Nil(t, base.FirstRow().Subtable.FirstRow().Comparisons)
	})

	t.Run("base row without sub-table ignores variant sub-table", func(t *testing.T) {
		base := baseTable(newFolder(10))
		compare := schema.NewTable()
		compare.AddRow(newFolder(8, labeled("post", schema.Col("nb_visits", 2))))

		MergeComparison(schema.VariantParams{}, base, compare, CalculateEvolution)

		assert.Nil(t, base.FirstRow().Subtable)
		assert.Equal(t, 1, base.FirstRow().Comparisons.RowCount())
	})
}

func TestMergeComparisonNilCompareAndCustomEvolution(t *testing.T) {
	base := baseTable(labeled("A", schema.Col("nb_visits", 3)))
	var calls int
	evolution := func(newValue, oldValue float64, precision int) float64 {
		calls++
		assert.Equal(t, 0.0, newValue)
		assert.Equal(t, 3.0, oldValue)
		assert.Equal(t, 1, precision)
		return 42
	}

	MergeComparison(schema.VariantParams{}, base, nil, evolution)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 42.0, column(t, base.FirstRow().Comparisons.FirstRow(), "nb_visits_change"))
}
