package cmd

import (
	"github.com/huangsam/datacompare/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve comparisons over HTTP",
	Long: `Start an HTTP server exposing comparisons and the report archive.

Routes:
  GET /api/compare  - compare a report (method, idSite, period, date, segment,
                      compareSegments[], compareDates[], comparePeriods[])
  GET /api/reports  - list archived reports (optional idSite)
  GET /healthz      - liveness probe
  GET /metrics      - Prometheus metrics

Examples:
  datacompare serve --addr 127.0.0.1:8080
  datacompare serve --allowed-origins http://localhost:3000`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return server.ExecuteServe(rootCtx, cfg, storeManager)
	},
}
