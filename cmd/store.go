package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/iocache"
	"github.com/huangsam/datacompare/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// backendSettings reads and validates a backend and connection string pair from Viper.
// An empty backend resolves to fallback.
func backendSettings(backendKey, connKey string, fallback schema.DatabaseBackend) (schema.DatabaseBackend, string, error) {
	backend := fallback
	if raw := viper.GetString(backendKey); raw != "" {
		backend = schema.DatabaseBackend(raw)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid %s '%s'. must be sqlite, mysql, postgresql, none", backendKey, backend)
	}
	connStr := viper.GetString(connKey)
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// sqliteFilePath returns the database file a SQLite backend uses for connStr.
func sqliteFilePath(connStr, defaultPath string) string {
	if connStr == "" {
		return defaultPath
	}
	return connStr
}

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need the report archive without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	backend, connStr, err := backendSettings("store-backend", "store-db-connect", schema.SQLiteBackend)
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no run tracking for store commands)
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads the store backend without opening it,
// allowing migrations to run on a fresh database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	backend, connStr, err := backendSettings("store-backend", "store-db-connect", schema.SQLiteBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// storeCmd focused on report archive management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup. This avoids report selection validation for simple
// maintenance operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the report archive and metric name cache",
	Long: `Manage the database that holds archived reports, metric names and the metric name cache.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show archive and cache statistics
  clear   - Remove the archive and cache
  migrate - Run database schema migrations

Examples:
  # Check archive status
  datacompare store status

  # Use a MySQL archive
  DATACOMPARE_STORE_BACKEND=mysql DATACOMPARE_STORE_DB_CONNECT="..." datacompare store status`,
}

// storeStatusCmd shows archive and cache status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display archive and cache statistics",
	Long: `Show the backend, connection state and contents of the report archive
together with the metric name cache living in the same database.

Examples:
  datacompare store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if reports := storeManager.GetReportStore(); reports != nil {
			status, err := reports.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get archive status", err)
			}
			iocache.PrintArchiveStatus(os.Stdout, status)
		} else {
			iocache.PrintArchiveStatus(os.Stdout, schema.ArchiveStatus{Backend: string(cfg.StoreBackend)})
		}
		fmt.Println()

		cache := storeManager.GetCacheStore()
		if cache == nil {
			return
		}
		status, err := cache.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// storeClearCmd clears the archive and cache.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all archived reports, metric names and cached data",
	Long: `Delete the report archive and metric name cache from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the store tables

WARNING: This action cannot be undone.

Examples:
  datacompare store clear`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		path := sqliteFilePath(cfg.StoreDBConnect, contract.GetStoreDBFilePath())
		if err := iocache.ClearStore(cfg.StoreBackend, path, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs the store schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run report archive schema migrations",
	Long: `Apply or roll back the schema migrations of the report archive.

Examples:
  # Migrate to the latest version
  datacompare store migrate

  # Roll back every migration
  datacompare store migrate --target-version 0`,
	PreRunE: storeMigrateSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		target, _ := cmd.Flags().GetInt("target-version")
		if err := iocache.Migrate(iocache.StoreMigrations, cfg.StoreBackend, cfg.StoreDBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate store", err)
		}
		fmt.Println("Store migrations applied successfully.")
	},
}
