package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearStore(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "store.db")
		require.NoError(t, os.WriteFile(dbPath, []byte("data"), 0o600))

		require.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))
		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "missing.db"), ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.ErrorContains(t, ClearStore(schema.SQLiteBackend, "", ""), "dbFilePath cannot be empty")
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.ErrorContains(t, ClearStore("redis", "", ""), "unsupported backend for clearing")
	})
}

func TestClearRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestInitStores(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store.db")
	runPath := filepath.Join(dir, "runs.db")

	require.NoError(t, InitStores(schema.SQLiteBackend, storePath, schema.SQLiteBackend, runPath))
	t.Cleanup(CloseStores)

	assert.NotNil(t, Manager.GetCacheStore())
	assert.NotNil(t, Manager.GetReportStore())
	assert.NotNil(t, Manager.GetRunStore())

	// Later calls keep the first configuration
	require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
	assert.NotNil(t, Manager.GetReportStore())

	status, err := Manager.GetReportStore().GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
}

func TestNewStoreManager(t *testing.T) {
	cache := new(MockCacheStore)
	runs := new(MockRunStore)
	manager := NewStoreManager(cache, nil, runs)

	assert.Same(t, cache, manager.GetCacheStore())
	assert.Nil(t, manager.GetReportStore())
	assert.Same(t, runs, manager.GetRunStore())
}
