// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/parquet"
	"github.com/huangsam/datacompare/schema"
)

// PrintComparison writes the annotated report to the configured output file or stdout.
func PrintComparison(table *schema.Table, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		return writeComparisonParquet(table, cfg)
	}
	successMsg := "Wrote table"
	switch cfg.Output {
	case schema.JSONOut:
		successMsg = "Wrote JSON"
	case schema.CSVOut:
		successMsg = "Wrote CSV"
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteComparison(w, table, cfg, duration)
	}, successMsg)
}

// writeComparisonParquet flattens the comparison values into a Parquet file.
func writeComparisonParquet(table *schema.Table, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}
	records := FlattenComparisons(table, createFormatter(cfg.Precision))
	if err := parquet.WriteComparisonRowsParquet(records, cfg.OutputFile); err != nil {
		return fmt.Errorf("error writing Parquet output: %w", err)
	}
	contract.Logger().Info("Wrote Parquet", "file", cfg.OutputFile, "rows", len(records))
	return nil
}
