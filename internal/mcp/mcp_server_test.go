package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/iocache"
	mcp_internal "github.com/huangsam/datacompare/internal/mcp"
	"github.com/huangsam/datacompare/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageUrls = "Actions.getPageUrls"

func visitsTable(visits int) *schema.Table {
	table := schema.NewTable()
	table.AddRow(schema.NewRow(schema.Col(schema.LabelColumn, "/a"), schema.Col("2", visits)))
	return table
}

func newArchiveManager(t *testing.T) contract.StoreManager {
	t.Helper()
	store, err := iocache.NewReportStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	key := schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}
	require.NoError(t, store.SaveReport(ctx, key, visitsTable(10)))
	key.Segment = "browserCode==FF"
	require.NoError(t, store.SaveReport(ctx, key, visitsTable(5)))
	return iocache.NewStoreManager(nil, store, nil)
}

func callTool(t *testing.T, mgr contract.StoreManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(&contract.Config{Precision: 1}, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	mgr := iocache.NewStoreManager(nil, nil, nil)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "invalid period",
			args: map[string]any{"site": 1.0, "method": pageUrls, "period": "decade", "date": "2020-01-02"},
			want: "invalid report parameters",
		},
		{
			name: "missing site",
			args: map[string]any{"method": pageUrls, "period": "day", "date": "2020-01-02"},
			want: "--site must be greater than 0",
		},
		{
			name: "no report store",
			args: map[string]any{"site": 1.0, "method": pageUrls, "period": "day", "date": "2020-01-02"},
			want: "report store is disabled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, mgr, "compare_report", tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(res), tt.want)
		})
	}

	t.Run("list_reports without store", func(t *testing.T) {
		res := callTool(t, mgr, "list_reports", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "report store is disabled")
	})
}

func TestMCPServerHandlers_CompareReport(t *testing.T) {
	mgr := newArchiveManager(t)

	res := callTool(t, mgr, "compare_report", map[string]any{
		"site":             1.0,
		"method":           pageUrls,
		"period":           "day",
		"date":             "2020-01-02",
		"compare_segments": []any{"browserCode==FF"},
	})
	require.False(t, res.IsError, resultText(res))

	var payload struct {
		Variants     []schema.VariantParams `json:"variants"`
		RowsCompared int                    `json:"rows_compared"`
		Report       json.RawMessage        `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &payload))
	require.Len(t, payload.Variants, 1)
	assert.Equal(t, "browserCode==FF", payload.Variants[0].Segment)

	report := schema.NewTable()
	require.NoError(t, json.Unmarshal(payload.Report, report))
	row := report.RowFromLabel("/a")
	require.NotNil(t, row)
	entry := row.Comparisons.FirstRow()
	require.NotNil(t, entry)
	change, ok := entry.Column("nb_visits_change")
	require.True(t, ok)
	assert.Equal(t, "-50.0%", change)
	assert.Equal(t, "browserCode==FF", entry.Metadata[schema.MetaCompareSegment])
}

func TestMCPServerHandlers_CompareLiveReport(t *testing.T) {
	res := callTool(t, newArchiveManager(t), "compare_report", map[string]any{
		"site":   1.0,
		"method": "Live",
		"period": "day",
		"date":   "2020-01-02",
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "report does not support comparison")
}

func TestMCPServerHandlers_ListReports(t *testing.T) {
	res := callTool(t, newArchiveManager(t), "list_reports", map[string]any{"site": 1.0})
	require.False(t, res.IsError, resultText(res))

	var reports []schema.ReportSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, pageUrls, reports[0].Method)
	assert.Equal(t, "", reports[0].Segment)
	assert.Equal(t, "browserCode==FF", reports[1].Segment)
}
