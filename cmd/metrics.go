package cmd

import (
	"github.com/huangsam/datacompare/core"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the metric id to name mapping.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the metric names comparison columns are labeled with",
	Long: `Show the mapping from numeric metric ids to metric names.

The mapping merges the archived metric names with the metric-names overrides
of the config file. Comparison columns keep numeric ids only when this mapping
has no name for them.

Examples:
  datacompare metrics
  datacompare metrics --config .datacompare.yaml --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
