package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/parquet"
)

// ExecuteRunsExport writes the recorded comparison runs to a Parquet file.
func ExecuteRunsExport(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --run-backend to record runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no comparison runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total comparison runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve comparison runs: %w", err)
	}

	records := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteComparisonRunsParquet(records, outputFile); err != nil {
		return fmt.Errorf("failed to write comparison runs: %w", err)
	}
	fmt.Printf("Exported %d comparison runs to: %s\n", len(records), outputFile)
	return nil
}
