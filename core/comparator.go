package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// Comparator multiplies a base report into its comparison variants and merges them back.
type Comparator struct {
	Fetcher   *Fetcher
	Registry  contract.MetricRegistry
	Formatter contract.MetricFormatter
	Evolution EvolutionFunc
	Logger    *slog.Logger
}

// NewComparator wires a Comparator with the standard evolution and the process logger.
func NewComparator(executor contract.ReportExecutor, registry contract.MetricRegistry, formatter contract.MetricFormatter) *Comparator {
	return &Comparator{
		Fetcher:   NewFetcher(executor),
		Registry:  registry,
		Formatter: formatter,
		Evolution: CalculateEvolution,
		Logger:    contract.Logger(),
	}
}

// ApplyResult summarizes a finished comparison.
type ApplyResult struct {
	Variants     []schema.VariantParams
	RowsCompared int
}

// Apply annotates base with one comparison entry per expanded variant on every row, then
// formats the comparison tables and records the requested dimensions as table metadata.
//
// Variants are fetched and merged one at a time in expansion order and each variant table is
// released right after its merge. Any failure aborts the whole comparison.
func (c *Comparator) Apply(ctx context.Context, base *schema.Table, req schema.CompareRequest) (ApplyResult, error) {
	var result ApplyResult
	if err := c.Fetcher.CheckMethod(req.Method); err != nil {
		return result, err
	}

	variants, err := ExpandVariants(req.Segments, req.Dates, req.Periods)
	if err != nil {
		return result, err
	}
	result.Variants = variants

	logger := c.logger()
	if runUUID, ok := RunUUIDFromContext(ctx); ok {
		logger = logger.With("run", runUUID)
	}
	for i, variant := range variants {
		compare, err := c.Fetcher.Fetch(ctx, base, req.Method, variant)
		if err != nil {
			return result, err
		}
		logger.Debug("Merging comparison variant",
			"method", req.Method,
			"index", i,
			"segment", variant.Segment,
			"date", variant.Date,
			"period", variant.Period,
			"rows", compare.RowCount())
		MergeComparison(variant, base, compare, c.Evolution)
		compare.Release()
	}

	mapping, err := c.Registry.GetMapping(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load metric names: %w", err)
	}
	if err := FormatComparisons(base, BuildColumnMappings(mapping), c.Formatter); err != nil {
		return result, err
	}

	if len(req.Segments) > 0 {
		base.SetMetadata(schema.MetaCompareSegments, slices.Clone(req.Segments))
	}
	if len(req.Dates) > 0 {
		base.SetMetadata(schema.MetaCompareDates, slices.Clone(req.Dates))
	}
	if len(req.Periods) > 0 {
		base.SetMetadata(schema.MetaComparePeriods, slices.Clone(req.Periods))
	}

	result.RowsCompared = countRows(base)
	return result, nil
}

func (c *Comparator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return contract.Logger()
}

// countRows counts base rows carrying comparison entries at every depth.
func countRows(table *schema.Table) int {
	n := 0
	for _, row := range table.Rows() {
		if row.Comparisons.RowCount() > 0 {
			n++
		}
		n += countRows(row.Subtable)
	}
	return n
}
