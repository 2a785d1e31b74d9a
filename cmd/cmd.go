// Package cmd defines the command-line interface for datacompare.
package cmd

import (
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig, recordBuildInfo)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the report subcommands to the parent report command
	reportCmd.AddCommand(reportImportCmd)
	reportCmd.AddCommand(reportNamesCmd)
	reportCmd.AddCommand(reportListCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored changes in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Report archive backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from store-db-connect)")
	rootCmd.PersistentFlags().Int("site", 0, "Site id of the base report")
	rootCmd.PersistentFlags().String("method", "", "Report method, for example Actions.getPageUrls")
	rootCmd.PersistentFlags().String("period", "", "Period of the base report: day or week or month or year or range")
	rootCmd.PersistentFlags().String("date", "", "Date of the base report (YYYY-MM-DD, or start,end for a range)")
	rootCmd.PersistentFlags().String("segment", "", "Segment of the base report")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of compareCmd to Viper
	// StringArray keeps commas inside segment definitions and range dates intact.
	compareCmd.Flags().StringArray("compare-segments", nil, "Segments to compare against (repeatable; empty string keeps the base segment)")
	compareCmd.Flags().StringArray("compare-dates", nil, "Dates to compare against, paired with --compare-periods (repeatable)")
	compareCmd.Flags().StringArray("compare-periods", nil, "Periods to compare against, paired with --compare-dates (repeatable)")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServerAddr, "Address the HTTP server listens on")
	serveCmd.Flags().String("allowed-origins", "", "Comma-separated list of CORS origins")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Migration targets are read from the command flags directly
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
