package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/outwriter"
	"github.com/huangsam/datacompare/schema"
)

// ImportReport decodes a JSON report table from r and archives it under the selected key.
// It returns the number of top-level rows stored.
func ImportReport(ctx context.Context, store contract.ReportStore, sel contract.ReportSelection, r io.Reader) (int, error) {
	if store == nil {
		return 0, ErrNoReportStore
	}
	table := schema.NewTable()
	if err := json.NewDecoder(r).Decode(table); err != nil {
		return 0, fmt.Errorf("failed to decode report table: %w", err)
	}
	if err := store.SaveReport(ctx, sel.Key(), table); err != nil {
		return 0, err
	}
	return table.RowCount(), nil
}

// ImportMetricNames decodes a JSON object of metric ids to names from r and archives it.
func ImportMetricNames(ctx context.Context, store contract.ReportStore, r io.Reader) (int, error) {
	if store == nil {
		return 0, ErrNoReportStore
	}
	var names map[string]string
	if err := json.NewDecoder(r).Decode(&names); err != nil {
		return 0, fmt.Errorf("failed to decode metric names: %w", err)
	}
	for id, name := range names {
		if !schema.IsNumericName(strings.TrimSpace(id)) {
			return 0, fmt.Errorf("%w: metric id %q is not numeric", ErrInvalidInput, id)
		}
		if strings.TrimSpace(name) == "" || schema.IsNumericName(name) {
			return 0, fmt.Errorf("%w: metric %s needs a non-numeric name (received %q)", ErrInvalidInput, id, name)
		}
	}
	if err := store.SaveMetricNames(ctx, names); err != nil {
		return 0, err
	}
	return len(names), nil
}

// ExecuteImport archives the JSON report table in path under the configured selection.
// It serves as the main entry point for the 'report import' command.
func ExecuteImport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string) error {
	if err := contract.RequireReportSelection(cfg); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ImportReport(ctx, mgr.GetReportStore(), cfg.Selection, f)
	if err != nil {
		return err
	}
	contract.Logger().Info("Archived report",
		"method", cfg.Selection.Method,
		"site", cfg.Selection.SiteID,
		"period", cfg.Selection.Period.Label,
		"date", cfg.Selection.Period.Date,
		"rows", rows)
	return nil
}

// ExecuteImportMetricNames archives the metric names held in the JSON file at path.
// It serves as the main entry point for the 'report names' command.
func ExecuteImportMetricNames(ctx context.Context, _ *contract.Config, mgr contract.StoreManager, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open metric names file: %w", err)
	}
	defer func() { _ = f.Close() }()

	count, err := ImportMetricNames(ctx, mgr.GetReportStore(), f)
	if err != nil {
		return err
	}
	contract.Logger().Info("Archived metric names", "count", count)
	return nil
}

// ExecuteListReports prints the archived reports, optionally filtered by site.
// It serves as the main entry point for the 'report list' command.
func ExecuteListReports(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetReportStore()
	if store == nil {
		return ErrNoReportStore
	}
	reports, err := store.ListReports(ctx, cfg.Selection.SiteID)
	if err != nil {
		return err
	}
	return outwriter.PrintReportSummaries(reports, cfg)
}

// ExecuteMetrics prints the metric id to name mapping comparisons are labeled with.
// It serves as the main entry point for the 'metrics' command.
func ExecuteMetrics(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	mapping, err := BuildRegistry(cfg, mgr).GetMapping(ctx)
	if err != nil {
		return fmt.Errorf("failed to load metric names: %w", err)
	}
	return outwriter.PrintMetricNames(mapping, cfg)
}
