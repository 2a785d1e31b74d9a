package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var reportSummaryHeader = []string{"site", "method", "period", "date", "segment", "rows", "updated_at"}

// PrintReportSummaries writes the archived report listing to the configured output file or stdout.
func PrintReportSummaries(reports []schema.ReportSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteReportSummaries(w, reports, cfg.Output)
	}, "Wrote report list")
}

// WriteReportSummaries writes one line per archived report.
func WriteReportSummaries(w io.Writer, reports []schema.ReportSummary, output schema.OutputMode) error {
	switch output {
	case schema.JSONOut:
		if reports == nil {
			reports = []schema.ReportSummary{}
		}
		return writeJSON(w, reports)
	case schema.CSVOut:
		return writeCSVWithHeader(w, reportSummaryHeader, func(cw *csv.Writer) error {
			for _, r := range reports {
				if err := cw.Write(reportSummaryRecord(r)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	tbl := tablewriter.NewWriter(w)
	defer func() { _ = tbl.Close() }()
	tbl.Header([]string{"Site", "Method", "Period", "Date", "Segment", "Rows", "Updated"})
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = []tw.Align{
			tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft,
		}
	})
	data := make([][]string, 0, len(reports))
	for _, r := range reports {
		data = append(data, reportSummaryRecord(r))
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d archived reports\n", len(reports))
	return err
}

func reportSummaryRecord(r schema.ReportSummary) []string {
	return []string{
		strconv.Itoa(r.SiteID),
		r.Method,
		r.Period,
		r.Date,
		r.Segment,
		strconv.Itoa(r.Rows),
		time.Unix(r.UpdatedAt, 0).UTC().Format(time.RFC3339),
	}
}
