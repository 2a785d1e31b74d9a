package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// metricNameEntry is one row of the metric id to name mapping.
type metricNameEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PrintMetricNames writes the metric id to name mapping used to label comparison columns.
// Parquet output is not supported for this listing and falls back to text.
func PrintMetricNames(mapping map[string]string, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMetricNames(w, mapping, cfg.Output)
	}, "Wrote metric names")
}

// WriteMetricNames writes the mapping to w ordered by numeric id.
func WriteMetricNames(w io.Writer, mapping map[string]string, output schema.OutputMode) error {
	entries := sortedMetricNames(mapping)

	switch output {
	case schema.JSONOut:
		return writeJSON(w, entries)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"id", "name"}, func(cw *csv.Writer) error {
			for _, e := range entries {
				if err := cw.Write([]string{e.ID, e.Name}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	tbl := tablewriter.NewWriter(w)
	defer func() { _ = tbl.Close() }()
	tbl.Header([]string{"ID", "Name"})
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = []tw.Align{tw.AlignRight, tw.AlignLeft}
	})
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{e.ID, e.Name})
	}
	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d metric names\n", len(entries))
	return err
}

// sortedMetricNames orders ids numerically, falling back to string order for ties.
func sortedMetricNames(mapping map[string]string) []metricNameEntry {
	entries := make([]metricNameEntry, 0, len(mapping))
	for id, name := range mapping {
		entries = append(entries, metricNameEntry{ID: id, Name: name})
	}
	slices.SortFunc(entries, func(a, b metricNameEntry) int {
		ai, aerr := strconv.Atoi(a.ID)
		bi, berr := strconv.Atoi(b.ID)
		if aerr == nil && berr == nil && ai != bi {
			return ai - bi
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return entries
}
