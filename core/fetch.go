package core

import (
	"context"
	"fmt"
	"strconv"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// Fetcher re-runs the base report under one variant through a report executor.
type Fetcher struct {
	Executor contract.ReportExecutor
}

// NewFetcher returns a Fetcher backed by executor.
func NewFetcher(executor contract.ReportExecutor) *Fetcher {
	return &Fetcher{Executor: executor}
}

// CheckMethod fails when the report method cannot be compared.
func (f *Fetcher) CheckMethod(method string) error {
	if method == schema.LiveMethod {
		return fmt.Errorf("%w: %s", ErrUnsupportedReport, method)
	}
	if method == "" {
		return fmt.Errorf("%w: report method is required", ErrInvalidInput)
	}
	return nil
}

// Fetch executes method for the base table's site and period with the variant applied.
// The executor result is returned unchanged. Executor errors are wrapped with ErrVariantFetch
// and keep the original error in the chain.
func (f *Fetcher) Fetch(ctx context.Context, base *schema.Table, method string, variant schema.VariantParams) (*schema.Table, error) {
	params, err := VariantRequestParams(base, variant)
	if err != nil {
		return nil, err
	}
	table, err := f.Executor.Execute(ctx, method, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVariantFetch, method, err)
	}
	return table, nil
}

// VariantRequestParams builds the full executor parameter set for one variant: the base
// table's site, period, date and segment with every post-processing step switched off,
// then the variant's overrides.
func VariantRequestParams(base *schema.Table, variant schema.VariantParams) (map[string]any, error) {
	siteID, err := SiteFromMetadata(base)
	if err != nil {
		return nil, err
	}
	period, err := PeriodFromMetadata(base)
	if err != nil {
		return nil, err
	}
	date, err := period.DateStart()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	params := map[string]any{
		schema.ParamIDSite: strconv.Itoa(siteID),
		schema.ParamPeriod: string(period.Label),
		schema.ParamDate:   date,

		schema.ParamFilterLimit:          -1,
		schema.ParamFilterOffset:         0,
		schema.ParamFilterSortColumn:     "",
		schema.ParamFilterTruncate:       -1,
		schema.ParamCompare:              0,
		schema.ParamTotals:               0,
		schema.ParamDisableQueuedFilters: 1,
		schema.ParamFormatMetrics:        0,
	}
	if segment, ok := base.GetMetadata(schema.MetaSegment); ok {
		if seg, _ := segment.(string); seg != "" {
			params[schema.ParamSegment] = seg
		}
	}
	if variant.Segment != "" {
		params[schema.ParamSegment] = variant.Segment
	}
	if variant.Date != "" {
		params[schema.ParamDate] = variant.Date
	}
	if variant.Period != "" {
		params[schema.ParamPeriod] = variant.Period
	}
	return params, nil
}

// SiteFromMetadata reads the site id a table was produced for.
func SiteFromMetadata(table *schema.Table) (int, error) {
	v, ok := table.GetMetadata(schema.MetaSite)
	if !ok {
		return 0, fmt.Errorf("%w: base table has no %s metadata", ErrInvalidInput, schema.MetaSite)
	}
	f, ok := schema.ToFloat(v)
	if !ok || f <= 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: invalid %s metadata %v", ErrInvalidInput, schema.MetaSite, v)
	}
	return int(f), nil
}

// PeriodFromMetadata reads the period a table was produced for. It accepts a schema.Period,
// its decoded JSON form, or a period label paired with a date entry.
func PeriodFromMetadata(table *schema.Table) (schema.Period, error) {
	v, ok := table.GetMetadata(schema.MetaPeriod)
	if !ok {
		return schema.Period{}, fmt.Errorf("%w: base table has no %s metadata", ErrInvalidInput, schema.MetaPeriod)
	}

	var label, date string
	switch p := v.(type) {
	case schema.Period:
		label, date = string(p.Label), p.Date
	case *schema.Period:
		if p != nil {
			label, date = string(p.Label), p.Date
		}
	case map[string]any:
		label, _ = p["label"].(string)
		date, _ = p["date"].(string)
	case string:
		label = p
		if d, ok := table.GetMetadata(schema.MetaDate); ok {
			date, _ = d.(string)
		}
	}

	period, err := schema.ParsePeriod(label, date)
	if err != nil {
		return schema.Period{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return period, nil
}
