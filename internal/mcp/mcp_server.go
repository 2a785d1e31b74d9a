// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the datacompare MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Data Comparison Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compare_report ---
	s.AddTool(mcp.NewTool("compare_report",
		mcp.WithDescription("Load an archived report and annotate every row with the same report computed for other segments, dates or periods."),
		mcp.WithNumber("site", mcp.Description("Site id of the base report."), mcp.Required()),
		mcp.WithString("method", mcp.Description("Report method, for example Actions.getPageUrls."), mcp.Required()),
		mcp.WithString("period", mcp.Description("Period of the base report."), mcp.Required(), mcp.Enum("day", "week", "month", "year", "range")),
		mcp.WithString("date", mcp.Description("Date of the base report (YYYY-MM-DD, or start,end for a range)."), mcp.Required()),
		mcp.WithString("segment", mcp.Description("Segment of the base report.")),
		mcp.WithArray("compare_segments", mcp.Description("Segments to compare against. An empty string keeps the base report segment."), mcp.WithStringItems()),
		mcp.WithArray("compare_dates", mcp.Description("Dates to compare against, paired with compare_periods."), mcp.WithStringItems()),
		mcp.WithArray("compare_periods", mcp.Description("Periods to compare against, paired with compare_dates."), mcp.WithStringItems()),
	), h.handleCompareReport)

	// --- 2. Tool: list_reports ---
	s.AddTool(mcp.NewTool("list_reports",
		mcp.WithDescription("List the archived reports that can be compared."),
		mcp.WithNumber("site", mcp.Description("Only list reports of this site id.")),
	), h.handleListReports)

	return s
}

// StartMCPServer starts the datacompare MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
