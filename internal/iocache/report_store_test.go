package iocache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/datacompare/schema"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageUrls = "Actions.getPageUrls"

func newTestReportStore(t *testing.T, clock clockwork.Clock) *ReportStoreImpl {
	t.Helper()
	store, err := NewReportStoreWithClock(schema.SQLiteBackend, filepath.Join(t.TempDir(), "store.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func pageTable() *schema.Table {
	table := schema.NewTable()
	table.AddRow(schema.NewRow(schema.Col("label", "/a"), schema.Col("1", 10), schema.Col("2", 30)))
	table.AddRow(schema.NewRow(schema.Col("label", "/b"), schema.Col("1", 40), schema.Col("2", 50)))
	table.AddRow(schema.NewRow(schema.Col("label", "/c"), schema.Col("1", 2), schema.Col("2", 5)))
	return table
}

func requestParams(site, period, date string) map[string]any {
	return map[string]any{
		schema.ParamIDSite: site,
		schema.ParamPeriod: period,
		schema.ParamDate:   date,
	}
}

func labels(table *schema.Table) []string {
	var out []string
	for _, row := range table.Rows() {
		label, _ := row.Label()
		out = append(out, label)
	}
	return out
}

func TestReportStore_NoneBackend(t *testing.T) {
	_, err := NewReportStore(schema.NoneBackend, "")
	assert.ErrorContains(t, err, "requires a database backend")
}

func TestReportStore_Execute(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())
	key := schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}
	require.NoError(t, store.SaveReport(ctx, key, pageTable()))

	t.Run("archived report", func(t *testing.T) {
		table, err := store.Execute(ctx, pageUrls, requestParams("1", "day", "2020-01-02"))
		require.NoError(t, err)
		assert.Equal(t, []string{"/a", "/b", "/c"}, labels(table))

		site, ok := table.GetMetadata(schema.MetaSite)
		require.True(t, ok)
		assert.Equal(t, 1, site)
		period, ok := table.GetMetadata(schema.MetaPeriod)
		require.True(t, ok)
		assert.Equal(t, schema.Period{Label: schema.DayPeriod, Date: "2020-01-02"}, period)

		v, ok := table.RowFromLabel("/b").Float("2")
		require.True(t, ok)
		assert.Equal(t, 50.0, v)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := store.Execute(ctx, "Goals.get", requestParams("1", "day", "2020-01-02"))
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})

	t.Run("site without archives", func(t *testing.T) {
		_, err := store.Execute(ctx, pageUrls, requestParams("2", "day", "2020-01-02"))
		assert.ErrorIs(t, err, ErrInvalidSite)
	})

	t.Run("malformed site", func(t *testing.T) {
		_, err := store.Execute(ctx, pageUrls, requestParams("abc", "day", "2020-01-02"))
		assert.ErrorIs(t, err, ErrInvalidSite)
	})

	t.Run("missing combination returns an empty table", func(t *testing.T) {
		table, err := store.Execute(ctx, pageUrls, requestParams("1", "day", "2019-12-31"))
		require.NoError(t, err)
		assert.Equal(t, 0, table.RowCount())
		assert.False(t, table.IsSimple())
		_, ok := table.GetMetadata(schema.MetaSite)
		assert.True(t, ok)
	})

	t.Run("missing segment returns an empty table", func(t *testing.T) {
		params := requestParams("1", "day", "2020-01-02")
		params[schema.ParamSegment] = "browserCode==FF"
		table, err := store.Execute(ctx, pageUrls, params)
		require.NoError(t, err)
		assert.Equal(t, 0, table.RowCount())
		segment, _ := table.GetMetadata(schema.MetaSegment)
		assert.Equal(t, "browserCode==FF", segment)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := store.Execute(ctx, pageUrls, requestParams("1", "decade", "2020-01-02"))
		assert.ErrorContains(t, err, "invalid period")
	})
}

func TestReportStore_ExecuteFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())
	require.NoError(t, store.SaveReport(ctx, schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}, pageTable()))

	tests := []struct {
		name   string
		extra  map[string]any
		labels []string
	}{
		{name: "comparison overlay keeps everything", extra: map[string]any{
			schema.ParamFilterLimit: -1, schema.ParamFilterOffset: 0, schema.ParamFilterSortColumn: "",
		}, labels: []string{"/a", "/b", "/c"}},
		{name: "sort descending", extra: map[string]any{schema.ParamFilterSortColumn: "2"}, labels: []string{"/b", "/a", "/c"}},
		{name: "sort and limit", extra: map[string]any{schema.ParamFilterSortColumn: "2", schema.ParamFilterLimit: "2"}, labels: []string{"/b", "/a"}},
		{name: "offset and limit", extra: map[string]any{schema.ParamFilterSortColumn: "2", schema.ParamFilterOffset: 1, schema.ParamFilterLimit: 2}, labels: []string{"/a", "/c"}},
		{name: "offset past the end", extra: map[string]any{schema.ParamFilterOffset: 10}, labels: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := requestParams("1", "day", "2020-01-02")
			for k, v := range tt.extra {
				params[k] = v
			}
			table, err := store.Execute(ctx, pageUrls, params)
			require.NoError(t, err)
			assert.Equal(t, tt.labels, labels(table))
		})
	}
}

func TestReportStore_PeriodNormalization(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())
	// 2020-01-15 is a Wednesday; the week starts on Monday 2020-01-13
	require.NoError(t, store.SaveReport(ctx, schema.ReportKey{SiteID: 3, Method: pageUrls, Period: "week", Date: "2020-01-15"}, pageTable()))

	for _, date := range []string{"2020-01-13", "2020-01-19"} {
		table, err := store.Execute(ctx, pageUrls, requestParams("3", "week", date))
		require.NoError(t, err)
		assert.Equal(t, 3, table.RowCount(), date)
		period, _ := table.GetMetadata(schema.MetaPeriod)
		assert.Equal(t, schema.Period{Label: schema.WeekPeriod, Date: "2020-01-13"}, period)
	}

	reports, err := store.ListReports(ctx, 3)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "2020-01-13", reports[0].Date)
}

func TestReportStore_SimpleTableAndSegment(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())

	total := schema.NewSimpleTable(schema.NewRow(schema.Col("nb_visits", 120), schema.Col("bounce_rate", 0.25)))
	segmented := schema.NewSimpleTable(schema.NewRow(schema.Col("nb_visits", 30), schema.Col("bounce_rate", 0.5)))
	require.NoError(t, store.SaveReport(ctx, schema.ReportKey{SiteID: 1, Method: "VisitsSummary.get", Period: "month", Date: "2020-02-01"}, total))
	require.NoError(t, store.SaveReport(ctx, schema.ReportKey{SiteID: 1, Method: "VisitsSummary.get", Period: "month", Date: "2020-02-01", Segment: "browserCode==FF"}, segmented))

	table, err := store.Execute(ctx, "VisitsSummary.get", requestParams("1", "month", "2020-02-20"))
	require.NoError(t, err)
	require.True(t, table.IsSimple())
	v, _ := table.FirstRow().Float("nb_visits")
	assert.Equal(t, 120.0, v)

	params := requestParams("1", "month", "2020-02-01")
	params[schema.ParamSegment] = "browserCode==FF"
	table, err = store.Execute(ctx, "VisitsSummary.get", params)
	require.NoError(t, err)
	require.True(t, table.IsSimple())
	v, _ = table.FirstRow().Float("nb_visits")
	assert.Equal(t, 30.0, v)
}

func TestReportStore_SaveReportValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())

	tests := []struct {
		name    string
		key     schema.ReportKey
		table   *schema.Table
		wantErr string
	}{
		{"zero site", schema.ReportKey{Method: pageUrls, Period: "day", Date: "2020-01-01"}, pageTable(), "invalid site id"},
		{"empty method", schema.ReportKey{SiteID: 1, Period: "day", Date: "2020-01-01"}, pageTable(), "method cannot be empty"},
		{"nil table", schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-01"}, nil, "table cannot be nil"},
		{"bad date", schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "01/01/2020"}, pageTable(), "invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, store.SaveReport(ctx, tt.key, tt.table), tt.wantErr)
		})
	}
}

func TestReportStore_SaveReportReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())
	key := schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}
	require.NoError(t, store.SaveReport(ctx, key, pageTable()))

	smaller := schema.NewTable()
	smaller.AddRow(schema.NewRow(schema.Col("label", "/z"), schema.Col("2", 1)))
	require.NoError(t, store.SaveReport(ctx, key, smaller))

	table, err := store.Execute(ctx, pageUrls, requestParams("1", "day", "2020-01-02"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/z"}, labels(table))

	reports, err := store.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Rows)
}

func TestReportStore_ListReports(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := newTestReportStore(t, clock)

	keys := []schema.ReportKey{
		{SiteID: 2, Method: pageUrls, Period: "day", Date: "2020-01-02"},
		{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"},
		{SiteID: 1, Method: "VisitsSummary.get", Period: "day", Date: "2020-01-02"},
	}
	for _, key := range keys {
		require.NoError(t, store.SaveReport(ctx, key, pageTable()))
	}

	all, err := store.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].SiteID)
	assert.Equal(t, pageUrls, all[0].Method)
	assert.Equal(t, 3, all[0].Rows)
	assert.Equal(t, clock.Now().Unix(), all[0].UpdatedAt)
	assert.Equal(t, 2, all[2].SiteID)

	site1, err := store.ListReports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, site1, 2)

	none, err := store.ListReports(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReportStore_MetricNames(t *testing.T) {
	ctx := context.Background()
	store := newTestReportStore(t, clockwork.NewFakeClock())

	mapping, err := store.GetMapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nb_visits", mapping["2"])

	require.NoError(t, store.SaveMetricNames(ctx, map[string]string{"99": "custom_metric", "2": "visits"}))
	mapping, err = store.GetMapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "custom_metric", mapping["99"])
	assert.Equal(t, "visits", mapping["2"])
	assert.Equal(t, "nb_uniq_visitors", mapping["1"])

	assert.ErrorContains(t, store.SaveMetricNames(ctx, map[string]string{"visits": "nb_visits"}), "must be numeric")
	assert.ErrorContains(t, store.SaveMetricNames(ctx, map[string]string{"5": "6"}), "must be non-numeric")
}

func TestReportStore_GetStatus(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := newTestReportStore(t, clock)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalReports)
	assert.True(t, status.LastUpdatedAt.IsZero())

	require.NoError(t, store.SaveReport(ctx, schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}, pageTable()))
	clock.Advance(time.Hour)
	require.NoError(t, store.SaveReport(ctx, schema.ReportKey{SiteID: 2, Method: "VisitsSummary.get", Period: "day", Date: "2020-01-02"}, pageTable()))
	require.NoError(t, store.SaveMetricNames(ctx, map[string]string{"99": "custom_metric"}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalReports)
	assert.Equal(t, 2, status.TotalSites)
	assert.Equal(t, 2, status.TotalMethods)
	assert.Equal(t, 1, status.MetricNames)
	assert.Equal(t, clock.Now().Unix(), status.LastUpdatedAt.Unix())
}

func TestReportStore_ExecuteCanceledContext(t *testing.T) {
	store := newTestReportStore(t, clockwork.NewFakeClock())
	require.NoError(t, store.SaveReport(context.Background(), schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}, pageTable()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Execute(ctx, pageUrls, requestParams("1", "day", "2020-01-02"))
	assert.ErrorIs(t, err, context.Canceled)
}
