package outwriter

import (
	"strings"

	"github.com/huangsam/datacompare/internal/parquet"
	"github.com/huangsam/datacompare/schema"
)

// pathSeparator joins the labels of parent rows.
const pathSeparator = " > "

// FlattenComparisons walks the annotated tree depth first and emits one record per metric of
// every comparison entry. Rows without comparisons are skipped but their sub-tables are visited.
func FlattenComparisons(table *schema.Table, fmtFloat func(float64) string) []parquet.ComparisonRow {
	var out []parquet.ComparisonRow
	flattenTable(table, nil, fmtFloat, &out)
	return out
}

func flattenTable(table *schema.Table, parents []string, fmtFloat func(float64) string, out *[]parquet.ComparisonRow) {
	for _, row := range table.Rows() {
		label, ok := row.Label()
		if !ok && table.IsSimple() {
			label = "total"
		}
		for _, entry := range row.Comparisons.Rows() {
			*out = append(*out, flattenEntry(row, entry, label, parents, fmtFloat)...)
		}
		if row.Subtable != nil {
			flattenTable(row.Subtable, append(parents, label), fmtFloat, out)
		}
	}
}

func flattenEntry(row, entry *schema.Row, label string, parents []string, fmtFloat func(float64) string) []parquet.ComparisonRow {
	segment, _ := entry.Metadata[schema.MetaCompareSegment].(string)
	date, _ := entry.Metadata[schema.MetaCompareDate].(string)
	period, _ := entry.Metadata[schema.MetaComparePeriod].(string)

	var records []parquet.ComparisonRow
	for _, metric := range entry.Columns() {
		if strings.HasSuffix(metric, schema.ChangeSuffix) {
			continue
		}
		record := parquet.ComparisonRow{
			Path:           strings.Join(parents, pathSeparator),
			Label:          label,
			Depth:          int32(len(parents)),
			Metric:         metric,
			CompareSegment: segment,
			CompareDate:    date,
			ComparePeriod:  period,
		}
		if value, ok := entry.Column(metric); ok {
			record.CompareValue = stringPtr(cellString(value, fmtFloat))
		}
		if change, ok := entry.Column(metric + schema.ChangeSuffix); ok {
			record.Change = stringPtr(cellString(change, fmtFloat))
		}
		// Base columns keep their archived names, so only same-named metrics line up
		if base, ok := row.Column(metric); ok {
			record.BaseValue = stringPtr(cellString(base, fmtFloat))
		}
		records = append(records, record)
	}
	return records
}

func stringPtr(s string) *string {
	return &s
}
