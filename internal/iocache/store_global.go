package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// Table names owned by the stores.
const (
	cacheTable          = "metric_cache"
	reportArchivesTable = "report_archives"
	metricNamesTable    = "metric_names"
	runsTable           = "comparison_runs"

	storeMigrationsTable = "store_schema_migrations"
	runMigrationsTable   = "run_schema_migrations"
)

// storeTables lists the tables living in the report store database.
var storeTables = []string{cacheTable, reportArchivesTable, metricNamesTable, storeMigrationsTable}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the report archive, its key/value cache
// and the run tracking store. The run store is skipped when runBackend is empty, and the
// report archive is left unset for the none backend.
func InitStores(storeBackend schema.DatabaseBackend, storeConnStr string, runBackend schema.DatabaseBackend, runConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var cacheStore contract.CacheStore
		var reportStore contract.ReportStore
		if storeBackend != "" {
			cacheStore, err = NewCacheStore(cacheTable, storeBackend, storeConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize metric cache: %w", err)
				return
			}
			if storeBackend != schema.NoneBackend {
				reportStore, err = NewReportStore(storeBackend, storeConnStr)
				if err != nil {
					_ = cacheStore.Close()
					initErr = fmt.Errorf("failed to initialize report store: %w", err)
					return
				}
			}
		}

		var runStore contract.RunStore
		if runBackend != "" {
			runStore, err = NewRunStore(runBackend, runConnStr)
			if err != nil {
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				if reportStore != nil {
					_ = reportStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.cache = cacheStore
		Manager.reports = reportStore
		Manager.runs = runStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.reports != nil {
			_ = Manager.reports.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearStore removes the report archive, metric names and cache.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, storeTables)
}

// ClearRuns removes the run tracking data the same way ClearStore does.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, []string{runsTable, runMigrationsTable})
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables []string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		db, err := openDatabase(backend, connStr, "")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		for _, table := range tables {
			if err := dropTable(db, backend, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropTable drops the table if it exists.
func dropTable(db *sql.DB, backend schema.DatabaseBackend, tableName string) error {
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
