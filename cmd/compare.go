package cmd

import (
	"github.com/huangsam/datacompare/core"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd annotates an archived report with its comparison variants.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare an archived report across segments, dates or periods.",
	Long: `Load an archived report and annotate every row with the same report computed
for other segments, dates or periods.

Each comparison dimension is a list. The cartesian product of the segment list and the
paired date/period lists forms the variants; the base report itself is never repeated.
An empty segment keeps the segment of the base report.

Ideal for:
- Segment comparisons - see how Firefox visitors differ from everyone
- Period over period - compare a day with the same day last week
- Range reviews - compare two custom date ranges

Examples:
  # Compare Firefox visitors with all visitors
  datacompare compare --site 1 --method Actions.getPageUrls --period day --date 2024-03-02 \
    --compare-segments browserCode==FF

  # Compare with the previous day
  datacompare compare --site 1 --method Actions.getPageUrls --period day --date 2024-03-02 \
    --compare-dates 2024-03-01 --compare-periods day

  # Export the comparison values to Parquet
  datacompare compare --site 1 --method VisitsSummary.get --period month --date 2024-03-01 \
    --compare-dates 2024-02-01 --compare-periods month --output parquet --output-file cmp.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
