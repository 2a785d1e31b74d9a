// Package core has the comparison engine: variant expansion, fetching, tree merging and formatting.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/display"
	"github.com/huangsam/datacompare/internal/iocache"
	"github.com/huangsam/datacompare/internal/outwriter"
	"github.com/huangsam/datacompare/internal/registry"
	"github.com/huangsam/datacompare/internal/telemetry"
	"github.com/huangsam/datacompare/schema"
	"github.com/jonboulle/clockwork"
)

// ErrNoReportStore is returned when comparisons are requested without a report archive.
var ErrNoReportStore = errors.New("report store is disabled (store backend is none)")

// ExecutorFunc defines the function signature for the CLI entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// Session runs tracked comparisons against the configured stores.
// CLI, HTTP and MCP surfaces share it.
type Session struct {
	Comparator *Comparator
	Reports    contract.ReportExecutor
	Runs       contract.RunStore
	Clock      clockwork.Clock
	Surface    string
}

// NewSession wires the comparator for cfg against the stores held by mgr.
func NewSession(cfg *contract.Config, mgr contract.StoreManager, surface string) (*Session, error) {
	store := mgr.GetReportStore()
	if store == nil {
		return nil, ErrNoReportStore
	}
	executor := telemetry.InstrumentExecutor(store)
	comparator := NewComparator(executor, BuildRegistry(cfg, mgr), display.NewFormatter(cfg.Precision))
	return &Session{
		Comparator: comparator,
		Reports:    executor,
		Runs:       mgr.GetRunStore(),
		Clock:      clockwork.NewRealClock(),
		Surface:    surface,
	}, nil
}

// BuildRegistry returns the metric registry for cfg: the archive's metric names, cached in the
// key/value store when a TTL is set, with configured overrides on top.
func BuildRegistry(cfg *contract.Config, mgr contract.StoreManager) contract.MetricRegistry {
	var reg contract.MetricRegistry = registry.NewStatic(nil)
	if store := mgr.GetReportStore(); store != nil {
		reg = store
	}
	if cache := mgr.GetCacheStore(); cache != nil && cfg.MetricsCacheTTL > 0 {
		reg = iocache.NewCachedRegistry(reg, cache, cfg.MetricsCacheTTL)
	}
	return registry.WithOverrides(reg, cfg.MetricNames)
}

// Compare loads the selected base report and applies the comparison request to it.
// The run is recorded in the run store when one is configured.
func (s *Session) Compare(ctx context.Context, sel contract.ReportSelection, req schema.CompareRequest) (*schema.Table, ApplyResult, error) {
	start := s.Clock.Now()
	runUUID := uuid.NewString()
	ctx = withRunUUID(ctx, runUUID)
	runID := s.beginRun(start, runUUID, req)

	base, result, err := s.compare(ctx, sel, req)

	s.endRun(runID, len(result.Variants), result.RowsCompared, err)
	telemetry.RecordComparison(s.Surface, len(result.Variants), err)
	contract.Logger().Debug("Comparison finished",
		"run", runUUID,
		"method", req.Method,
		"variants", len(result.Variants),
		"rows", result.RowsCompared,
		"duration", s.Clock.Since(start))
	return base, result, err
}

func (s *Session) compare(ctx context.Context, sel contract.ReportSelection, req schema.CompareRequest) (*schema.Table, ApplyResult, error) {
	if req.Method == "" {
		req.Method = sel.Method
	}
	if err := s.Comparator.Fetcher.CheckMethod(req.Method); err != nil {
		return nil, ApplyResult{}, err
	}
	base, err := LoadBaseReport(ctx, s.Reports, sel)
	if err != nil {
		return nil, ApplyResult{}, err
	}
	result, err := s.Comparator.Apply(ctx, base, req)
	if err != nil {
		base.Release()
		return nil, result, err
	}
	return base, result, nil
}

func (s *Session) beginRun(start time.Time, runUUID string, req schema.CompareRequest) int64 {
	if s.Runs == nil {
		return 0
	}
	runID, err := s.Runs.BeginRun(start, runUUID, req)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

func (s *Session) endRun(runID int64, variants, rows int, runErr error) {
	if s.Runs == nil || runID <= 0 {
		return
	}
	if err := s.Runs.EndRun(runID, s.Clock.Now(), variants, rows, runErr); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// LoadBaseReport executes the selected report and makes sure its site and period metadata
// are present so variants can be derived from it.
func LoadBaseReport(ctx context.Context, executor contract.ReportExecutor, sel contract.ReportSelection) (*schema.Table, error) {
	table, err := executor.Execute(ctx, sel.Method, sel.Key().Params())
	if err != nil {
		return nil, fmt.Errorf("failed to load base report %s: %w", sel.Method, err)
	}
	if _, ok := table.GetMetadata(schema.MetaSite); !ok {
		table.SetMetadata(schema.MetaSite, sel.SiteID)
	}
	if _, ok := table.GetMetadata(schema.MetaPeriod); !ok {
		table.SetMetadata(schema.MetaPeriod, sel.Period)
	}
	if _, ok := table.GetMetadata(schema.MetaSegment); !ok && sel.Segment != "" {
		table.SetMetadata(schema.MetaSegment, sel.Segment)
	}
	return table, nil
}

// ExecuteCompare runs the comparison described by cfg and prints the annotated report.
// It serves as the main entry point for the 'compare' command.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if err := contract.RequireReportSelection(cfg); err != nil {
		return err
	}
	session, err := NewSession(cfg, mgr, "cli")
	if err != nil {
		return err
	}
	start := session.Clock.Now()
	base, _, err := session.Compare(ctx, cfg.Selection, cfg.Compare)
	if err != nil {
		return err
	}
	defer base.Release()
	return outwriter.PrintComparison(base, cfg, session.Clock.Since(start))
}
