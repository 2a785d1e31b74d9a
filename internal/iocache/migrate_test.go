package iocache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_NoneBackend(t *testing.T) {
	err := Migrate(StoreMigrations, schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrate_UnknownSet(t *testing.T) {
	err := Migrate("archive", schema.SQLiteBackend, ":memory:", -1)
	assert.ErrorContains(t, err, "unknown migration set")
}

func TestMigrate_StoreSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")

	require.NoError(t, Migrate(StoreMigrations, schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	// Already at the latest version
	assert.NoError(t, Migrate(StoreMigrations, schema.SQLiteBackend, dbPath, -1))

	// Down to version 1, then all the way down, then back up
	assert.NoError(t, Migrate(StoreMigrations, schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, Migrate(StoreMigrations, schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, Migrate(StoreMigrations, schema.SQLiteBackend, dbPath, 2))

	// Stores open cleanly on a migrated database
	store, err := NewReportStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.SaveReport(context.Background(), schema.ReportKey{SiteID: 1, Method: pageUrls, Period: "day", Date: "2020-01-02"}, pageTable()))
}

func TestMigrate_RunsSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, Migrate(RunMigrations, schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, Migrate(RunMigrations, schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, Migrate(RunMigrations, schema.SQLiteBackend, dbPath, 1))
}

func TestMigrate_SQLiteInMemory(t *testing.T) {
	require.NoError(t, Migrate(RunMigrations, schema.SQLiteBackend, ":memory:", -1))
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, set := range []MigrationSet{StoreMigrations, RunMigrations} {
		for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
			entries, err := migrationsFS.ReadDir(filepath.ToSlash(filepath.Join("migrations", string(set), string(backend))))
			require.NoError(t, err, "%s/%s", set, backend)
			assert.NotEmpty(t, entries, "%s/%s", set, backend)
			assert.Zero(t, len(entries)%2, "every up migration needs a down migration in %s/%s", set, backend)
		}
	}
}
