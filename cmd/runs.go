package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/iocache"
	"github.com/huangsam/datacompare/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run tracking operations.
func runsSetup() error {
	if err := runsMigrateSetup(nil, nil); err != nil {
		return err
	}

	// Initialize stores with the loaded config (no archive for run commands)
	if err := iocache.InitStores("", "", cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the run backend without opening it,
// allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	backend, connStr, err := backendSettings("run-backend", "run-db-connect", schema.NoneBackend)
	if err != nil {
		return err
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focused on comparison run tracking.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage comparison run tracking and exports",
	Long: `Manage the history of comparison runs.

When --run-backend is set, every comparison records its request, duration,
variant count, compared rows and outcome.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  datacompare runs status --run-backend sqlite

  # Export for analysis in pandas/DuckDB
  datacompare runs export --run-backend sqlite --output-file runs.parquet`,
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show the backend, total and failed runs, the newest and oldest run and table sizes.

Examples:
  datacompare runs status --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs := storeManager.GetRunStore()
		if runs == nil {
			iocache.PrintRunStatus(os.Stdout, schema.RunStoreStatus{Backend: string(cfg.RunBackend)})
			return
		}
		status, err := runs.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports runs to Parquet.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export comparison runs to a Parquet file",
	Long: `Write every recorded comparison run to a Parquet file.

Examples:
  datacompare runs export --run-backend sqlite --output-file runs.parquet`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(storeManager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsClearCmd clears the run tracking data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all comparison run history",
	Long: `Delete every recorded comparison run.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  datacompare runs export --run-backend sqlite --output-file backup.parquet
  datacompare runs clear --run-backend sqlite`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		path := sqliteFilePath(cfg.RunDBConnect, contract.GetRunDBFilePath())
		if err := iocache.ClearRuns(cfg.RunBackend, path, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsMigrateCmd runs the run tracking schema migrations.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run comparison run tracking schema migrations",
	Long: `Apply or roll back the schema migrations of the run tracking database.

Examples:
  # Migrate to the latest version
  datacompare runs migrate --run-backend sqlite

  # Migrate to a specific version
  datacompare runs migrate --run-backend sqlite --target-version 1`,
	PreRunE: runsMigrateSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		if cfg.RunBackend == schema.NoneBackend {
			contract.LogFatal("Failed to migrate runs", errors.New("run tracking is disabled. Set --run-backend to migrate"))
		}
		target, _ := cmd.Flags().GetInt("target-version")
		if err := iocache.Migrate(iocache.RunMigrations, cfg.RunBackend, cfg.RunDBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate runs", err)
		}
		fmt.Println("Run migrations applied successfully.")
	},
}
