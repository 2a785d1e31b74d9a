package core

import (
	"fmt"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// BuildColumnMappings expands a metric id to name mapping into the column rewrite table:
// every id maps to its name and every id change column to the name change column.
func BuildColumnMappings(mapping map[string]string) map[string]string {
	out := make(map[string]string, len(mapping)*2)
	for id, name := range mapping {
		out[id] = name
		out[id+schema.ChangeSuffix] = name + schema.ChangeSuffix
	}
	return out
}

// FormatComparisons renames the comparison columns of every row to display names and hands
// each comparison table to formatter once. It walks the rows' own sub-tables so nested
// comparisons are formatted too. Rows without comparison entries are skipped.
func FormatComparisons(table *schema.Table, mappings map[string]string, formatter contract.MetricFormatter) error {
	for _, row := range table.Rows() {
		comparisons := row.Comparisons
		if comparisons.RowCount() == 0 {
			continue
		}

		for _, entry := range comparisons.Rows() {
			entry.RenameColumns(mappings)
			for _, name := range entry.Columns() {
				if schema.IsNumericName(name) {
					return fmt.Errorf("%w: column %q", ErrMappingGap, name)
				}
			}
		}

		if formatter != nil {
			formatter.FormatMetrics(comparisons)
		}

		if row.Subtable != nil {
			if err := FormatComparisons(row.Subtable, mappings, formatter); err != nil {
				return err
			}
		}
	}
	return nil
}
