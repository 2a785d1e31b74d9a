package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/datacompare/core"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// compareResponse is the JSON payload returned by compare_report.
type compareResponse struct {
	Variants     []schema.VariantParams `json:"variants"`
	RowsCompared int                    `json:"rows_compared"`
	Report       *schema.Table          `json:"report"`
}

func (h *toolHandler) handleCompareReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel := contract.ReportSelection{
		SiteID:  request.GetInt("site", 0),
		Method:  request.GetString("method", ""),
		Segment: request.GetString("segment", ""),
	}
	period, err := schema.ParsePeriod(request.GetString("period", ""), request.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}
	sel.Period = period

	cfg := h.baseCfg.Clone()
	cfg.Selection = sel
	if err := contract.RequireReportSelection(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}
	req := schema.CompareRequest{
		Method:   sel.Method,
		Segments: request.GetStringSlice("compare_segments", nil),
		Dates:    request.GetStringSlice("compare_dates", nil),
		Periods:  request.GetStringSlice("compare_periods", nil),
	}

	session, err := core.NewSession(cfg, h.mgr, "mcp")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison unavailable: %v", err)), nil
	}
	table, result, err := session.Compare(ctx, sel, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	defer table.Release()

	jsonData, err := json.MarshalIndent(compareResponse{
		Variants:     result.Variants,
		RowsCompared: result.RowsCompared,
		Report:       table,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetReportStore()
	if store == nil {
		return mcp.NewToolResultError(core.ErrNoReportStore.Error()), nil
	}
	reports, err := store.ListReports(ctx, request.GetInt("site", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reports: %v", err)), nil
	}
	if reports == nil {
		reports = []schema.ReportSummary{}
	}

	jsonData, _ := json.MarshalIndent(reports, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
