package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/parquet"
	"github.com/huangsam/datacompare/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// comparisonCSVHeader matches the parquet column names.
var comparisonCSVHeader = []string{
	"path",
	"label",
	"depth",
	"metric",
	"base_value",
	"compare_segment",
	"compare_date",
	"compare_period",
	"compare_value",
	"change",
}

// WriteComparison outputs the annotated report to w, dispatching on the configured format.
// Parquet needs a file path and is handled by PrintComparison.
func WriteComparison(w io.Writer, table *schema.Table, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, table); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeComparisonCSV(w, FlattenComparisons(table, fmtFloat)); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeComparisonTable(w, table, cfg, fmtFloat, duration)
	}
	return nil
}

// writeComparisonCSV writes one line per flattened comparison value.
func writeComparisonCSV(w io.Writer, records []parquet.ComparisonRow) error {
	return writeCSVWithHeader(w, comparisonCSVHeader, func(cw *csv.Writer) error {
		for _, r := range records {
			row := []string{
				r.Path,
				r.Label,
				strconv.Itoa(int(r.Depth)),
				r.Metric,
				deref(r.BaseValue),
				r.CompareSegment,
				r.CompareDate,
				r.ComparePeriod,
				deref(r.CompareValue),
				deref(r.Change),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeComparisonTable writes the comparison values as a human-readable table.
func writeComparisonTable(w io.Writer, table *schema.Table, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	records := FlattenComparisons(table, fmtFloat)

	tbl := tablewriter.NewWriter(w)
	defer func() { _ = tbl.Close() }()

	tbl.Header([]string{"Label", "Compare", "Metric", "Base", "Value", "Change"})
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignRight}
	})

	labelWidth := GetMaxTableLabelWidth(cfg)
	data := make([][]string, 0, len(records))
	for _, r := range records {
		label := strings.Repeat("  ", int(r.Depth)) + r.Label
		change := deref(r.Change)
		if cfg.UseColors {
			change = contract.ColorizeChange(change, changeSign(change))
		}
		data = append(data, []string{
			contract.TruncateLabel(label, labelWidth),
			describeVariant(r.CompareSegment, r.CompareDate, r.ComparePeriod),
			r.Metric,
			deref(r.BaseValue),
			deref(r.CompareValue),
			change,
		})
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d comparison values for %s\n", len(records), describeBase(table)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Comparison completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// describeVariant renders the overridden dimensions of a comparison entry.
func describeVariant(segment, date, period string) string {
	var parts []string
	if segment != "" {
		parts = append(parts, "segment="+segment)
	}
	if period != "" {
		parts = append(parts, "period="+period)
	}
	if date != "" {
		parts = append(parts, "date="+date)
	}
	if len(parts) == 0 {
		return "base"
	}
	return strings.Join(parts, " ")
}

// describeBase names the base report from its table metadata.
func describeBase(table *schema.Table) string {
	var parts []string
	if site, ok := table.GetMetadata(schema.MetaSite); ok {
		parts = append(parts, fmt.Sprintf("site %v", site))
	}
	if period, ok := table.GetMetadata(schema.MetaPeriod); ok {
		parts = append(parts, fmt.Sprint(period))
	}
	if segment, ok := table.GetMetadata(schema.MetaSegment); ok {
		parts = append(parts, fmt.Sprintf("segment %v", segment))
	}
	if len(parts) == 0 {
		return "the base report"
	}
	return strings.Join(parts, ", ")
}

// changeSign reads the direction of a formatted change value such as "+12.5%" or "-3%".
func changeSign(change string) float64 {
	switch {
	case strings.HasPrefix(change, "+"):
		return 1
	case strings.HasPrefix(change, "-"):
		return -1
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(change, "%"), 64)
	if err != nil {
		return 0
	}
	return v
}
