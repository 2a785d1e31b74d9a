package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/huangsam/datacompare/core"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/iocache"
	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageUrls = "Actions.getPageUrls"

func visitsTable(visits int) *schema.Table {
	table := schema.NewTable()
	table.AddRow(schema.NewRow(schema.Col(schema.LabelColumn, "/a"), schema.Col("2", visits)))
	return table
}

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	cfg := &contract.Config{Precision: 1, ServerAddr: "127.0.0.1:0", AllowedOrigins: []string{"http://localhost:3000"}}
	mgr := iocache.NewStoreManager(nil, nil, nil)
	if withStore {
		store, err := iocache.NewReportStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "store.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		ctx := context.Background()
		key := schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}
		require.NoError(t, store.SaveReport(ctx, key, visitsTable(10)))
		key.Date = "2020-01-01"
		require.NoError(t, store.SaveReport(ctx, key, visitsTable(8)))
		mgr = iocache.NewStoreManager(nil, store, nil)
	}
	ts := httptest.NewServer(NewServer(cfg, mgr).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, false)

	var health map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &health))
	assert.Equal(t, "ok", health["status"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCompareEndpoint(t *testing.T) {
	ts := newTestServer(t, true)

	var body struct {
		Variants     []schema.VariantParams `json:"variants"`
		RowsCompared int                    `json:"rows_compared"`
		Report       json.RawMessage        `json:"report"`
	}
	url := ts.URL + "/api/compare?method=" + pageUrls + "&idSite=1&period=day&date=2020-01-02" +
		"&compareDates[]=2020-01-01&comparePeriods[]=day"
	require.Equal(t, http.StatusOK, getJSON(t, url, &body))
	require.Len(t, body.Variants, 1)
	assert.Equal(t, "2020-01-01", body.Variants[0].Date)
	assert.Equal(t, 1, body.RowsCompared)

	report := schema.NewTable()
	require.NoError(t, json.Unmarshal(body.Report, report))
	entry := report.RowFromLabel("/a").Comparisons.FirstRow()
	require.NotNil(t, entry)
	change, _ := entry.Column("nb_visits_change")
	assert.Equal(t, "-20.0%", change)

	dates, ok := report.GetMetadata(schema.MetaCompareDates)
	require.True(t, ok)
	assert.Equal(t, []any{"2020-01-01"}, dates)
}

func TestCompareEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name      string
		withStore bool
		query     string
		status    int
		message   string
	}{
		{"missing method", true, "idSite=1&period=day&date=2020-01-02", http.StatusBadRequest, "method is required"},
		{"bad site", true, "method=" + pageUrls + "&idSite=x&period=day&date=2020-01-02", http.StatusBadRequest, "invalid idSite"},
		{"live report", true, "method=Live&idSite=1&period=day&date=2020-01-02", http.StatusUnprocessableEntity, "does not support comparison"},
		{"unpaired dates", true, "method=" + pageUrls + "&idSite=1&period=day&date=2020-01-02&compareDates=2020-01-01", http.StatusUnprocessableEntity, "invalid comparison input"},
		{"unknown method", true, "method=Nope.get&idSite=1&period=day&date=2020-01-02", http.StatusNotFound, "unknown report method"},
		{"no store", false, "method=" + pageUrls + "&idSite=1&period=day&date=2020-01-02", http.StatusServiceUnavailable, "report store is disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.withStore)
			var body map[string]string
			assert.Equal(t, tt.status, getJSON(t, ts.URL+"/api/compare?"+tt.query, &body))
			assert.Contains(t, body["error"], tt.message)
		})
	}
}

func TestListReportsEndpoint(t *testing.T) {
	ts := newTestServer(t, true)

	var reports []schema.ReportSummary
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/reports?idSite=1", &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "2020-01-01", reports[0].Date)

	var empty []schema.ReportSummary
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/reports?idSite=2", &empty))
	assert.Empty(t, empty)

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/reports?idSite=0", &body))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, false)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/reports", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: Live", core.ErrUnsupportedReport), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: bad", core.ErrInvalidInput), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w", core.ErrVariantFetch, iocache.ErrUnknownMethod), http.StatusBadGateway},
		{fmt.Errorf("load: %w", iocache.ErrInvalidSite), http.StatusNotFound},
		{core.ErrNoReportStore, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}
