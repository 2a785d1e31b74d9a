package core

import (
	"github.com/huangsam/datacompare/schema"
)

// MergeComparison attaches one comparison entry per base row for variant, matching rows of
// compare by label (or its single row when compare is a simple table), and descends into
// sub-tables when both the base row and its match carry one. base is mutated in place.
func MergeComparison(variant schema.VariantParams, base, compare *schema.Table, evolution EvolutionFunc) {
	if evolution == nil {
		evolution = CalculateEvolution
	}
	mergeTables(variant, base, compare, evolution)
}

func mergeTables(variant schema.VariantParams, base, compare *schema.Table, evolution EvolutionFunc) {
	simple := compare.IsSimple()
	for _, row := range base.Rows() {
		var match *schema.Row
		switch {
		case compare == nil:
		case simple:
			match = compare.FirstRow()
		default:
			if label, ok := row.Label(); ok {
				match = compare.RowFromLabel(label)
			}
		}
		mergeRow(variant, row, match, evolution)
	}
}

// mergeRow appends the comparison entry for one base row and recurses into sub-tables.
func mergeRow(variant schema.VariantParams, row, match *schema.Row, evolution EvolutionFunc) {
	if row.Comparisons == nil {
		row.Comparisons = schema.NewTable()
	}

	entry := newComparisonEntry(row, match)
	setVariantMetadata(entry, variant)

	for _, name := range entry.Columns() {
		value, _ := entry.Float(name)
		baseValue, ok := row.Float(name)
		if !ok {
			baseValue = 0
		}
		entry.SetColumn(name+schema.ChangeSuffix, evolution(value, baseValue, comparisonPrecision))
	}
	row.Comparisons.AddRow(entry)

	if row.Subtable != nil && match != nil && match.Subtable != nil {
		mergeTables(variant, row.Subtable, match.Subtable, evolution)
	}
}

// newComparisonEntry copies the numeric columns of match, or zeroes the numeric columns of
// row when there is no match, so every entry has the same shape.
func newComparisonEntry(row, match *schema.Row) *schema.Row {
	entry := schema.NewRow()
	source := match
	if source == nil {
		source = row
	}
	for _, name := range source.Columns() {
		if name == schema.LabelColumn {
			continue
		}
		value, _ := source.Column(name)
		f, ok := schema.ToFloat(value)
		if !ok {
			continue
		}
		switch {
		case match == nil:
			value = 0
		case isString(value):
			value = f
		}
		entry.SetColumn(name, value)
	}
	return entry
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func setVariantMetadata(entry *schema.Row, variant schema.VariantParams) {
	if variant.Segment != "" {
		entry.Metadata[schema.MetaCompareSegment] = variant.Segment
	}
	if variant.Period != "" {
		entry.Metadata[schema.MetaComparePeriod] = variant.Period
	}
	if variant.Date != "" {
		entry.Metadata[schema.MetaCompareDate] = variant.Date
	}
}
