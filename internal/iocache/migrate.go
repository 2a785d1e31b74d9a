package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

//go:embed migrations/*/*/*.sql
var migrationsFS embed.FS

// MigrationSet selects which database a migration applies to.
type MigrationSet string

// All migration sets supported.
const (
	StoreMigrations MigrationSet = "store"
	RunMigrations   MigrationSet = "runs"
)

// migrationsTable returns the version table name for the set.
func (s MigrationSet) migrationsTable() string {
	if s == RunMigrations {
		return runMigrationsTable
	}
	return storeMigrationsTable
}

// defaultPath returns the SQLite file used when no connection string is given.
func (s MigrationSet) defaultPath() string {
	if s == RunMigrations {
		return contract.GetRunDBFilePath()
	}
	return contract.GetStoreDBFilePath()
}

// Migrate runs database migrations for the store or run database.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func Migrate(set MigrationSet, backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if set != StoreMigrations && set != RunMigrations {
		return fmt.Errorf("unknown migration set %q. must be store or runs", set)
	}
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for NoneBackend")
	}

	if backend == schema.MySQLBackend {
		dsn, err := mysqlDSN(connStr, true)
		if err != nil {
			return err
		}
		connStr = dsn
	}
	db, err := openDatabase(backend, connStr, set.defaultPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	driver, err := migrationDriver(db, backend, set.migrationsTable())
	if err != nil {
		return err
	}

	migrationFS, err := fs.Sub(migrationsFS, path.Join("migrations", string(set), string(backend)))
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "datacompare", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to latest version: %w", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migration needed. Database is already at the latest version.")
		} else {
			newVersion, _, _ := m.Version()
			fmt.Printf("Successfully migrated %s from version %d to version %d\n", set, currentVersion, newVersion)
		}
	case targetVersion == 0:
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back to version 0: %w", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migration needed. Database is already at version 0")
		} else {
			fmt.Printf("Successfully rolled back %s from version %d to version 0\n", set, currentVersion)
		}
	default:
		err = m.Migrate(uint(targetVersion))
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Printf("No migration needed. Database is already at version %d\n", targetVersion)
		} else {
			fmt.Printf("Successfully migrated %s from version %d to version %d\n", set, currentVersion, targetVersion)
		}
	}
	return nil
}

// migrationDriver wraps an open connection in the golang-migrate driver for the backend.
func migrationDriver(db *sql.DB, backend schema.DatabaseBackend, table string) (database.Driver, error) {
	switch backend {
	case schema.SQLiteBackend:
		driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: table})
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite migrate driver: %w", err)
		}
		return driver, nil
	case schema.MySQLBackend:
		driver, err := mysql.WithInstance(db, &mysql.Config{MigrationsTable: table})
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL migrate driver: %w", err)
		}
		return driver, nil
	case schema.PostgreSQLBackend:
		driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL migrate driver: %w", err)
		}
		return driver, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
