package cmd

import (
	"github.com/huangsam/datacompare/core"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd manages the archived report tables comparisons are computed from.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Import and list archived report tables",
	Long: `Manage the archived report tables that serve as the report executor.

Subcommands:
  import - Archive a JSON report table under a site, method, period and date
  names  - Archive metric id to name mappings
  list   - List the archived reports`,
}

// reportImportCmd archives one report table.
var reportImportCmd = &cobra.Command{
	Use:   "import <report.json>",
	Short: "Archive a JSON report table",
	Long: `Store a report table so that comparisons can load it.

The date is stored as the start of its period, so any date inside the period finds it.

Examples:
  datacompare report import pages.json --site 1 --method Actions.getPageUrls --period day --date 2024-03-02
  datacompare report import ff.json --site 1 --method Actions.getPageUrls --period day --date 2024-03-02 \
    --segment browserCode==FF`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteImport(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot import report", err)
		}
	},
}

// reportNamesCmd archives metric names.
var reportNamesCmd = &cobra.Command{
	Use:   "names <names.json>",
	Short: "Archive metric id to name mappings",
	Long: `Store a JSON object of numeric metric ids to metric names, for example {"2": "nb_visits"}.

Examples:
  datacompare report names metrics.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteImportMetricNames(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot import metric names", err)
		}
	},
}

// reportListCmd lists the archive.
var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports",
	Long: `List the archived reports, optionally for one site.

Examples:
  datacompare report list
  datacompare report list --site 1 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteListReports(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list reports", err)
		}
	},
}
