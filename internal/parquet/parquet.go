// Package parquet provides data structures and functions for exporting comparison
// results and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/datacompare/schema"
	"github.com/parquet-go/parquet-go"
)

// ComparisonRun represents a single comparison run.
// This struct maps to the comparison_runs database table.
type ComparisonRun struct {
	RunID         int64      `parquet:"run_id,snappy"`
	RunUUID       string     `parquet:"run_uuid,snappy"`
	Method        string     `parquet:"method,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int64     `parquet:"run_duration_ms,optional,snappy"`
	VariantCount  int32      `parquet:"variant_count,snappy"`
	RowsCompared  int32      `parquet:"rows_compared,snappy"`
	Status        string     `parquet:"status,snappy"`

	// ErrorMessage is set for failed runs
	ErrorMessage *string `parquet:"error_message,optional,snappy"`

	// RequestParams contains the JSON-encoded comparison request
	RequestParams *string `parquet:"request_params,optional,snappy"`
}

// ComparisonRow is one metric of one comparison entry, flattened out of the report tree.
type ComparisonRow struct {
	// Path joins the labels of the parent rows, empty at the top level
	Path  string `parquet:"path,snappy"`
	Label string `parquet:"label,snappy"`
	Depth int32  `parquet:"depth,snappy"`

	Metric    string  `parquet:"metric,snappy"`
	BaseValue *string `parquet:"base_value,optional,snappy"`

	CompareSegment string  `parquet:"compare_segment,snappy"`
	CompareDate    string  `parquet:"compare_date,snappy"`
	ComparePeriod  string  `parquet:"compare_period,snappy"`
	CompareValue   *string `parquet:"compare_value,optional,snappy"`
	Change         *string `parquet:"change,optional,snappy"`
}

// WriteComparisonRunsParquet writes comparison runs to a Parquet file.
func WriteComparisonRunsParquet(data []ComparisonRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteComparisonRowsParquet writes flattened comparison rows to a Parquet file.
func WriteComparisonRowsParquet(data []ComparisonRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records to outputPath with a schema inferred from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to ComparisonRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ComparisonRun {
	result := make([]ComparisonRun, len(records))
	for i, record := range records {
		result[i] = ComparisonRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			Method:        record.Method,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			VariantCount:  int32(record.VariantCount),
			RowsCompared:  int32(record.RowsCompared),
			Status:        string(record.Status),
			ErrorMessage:  record.ErrorMessage,
			RequestParams: record.RequestParams,
		}
	}
	return result
}
