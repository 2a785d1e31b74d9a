// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/datacompare/schema"
)

// ReportExecutor runs a named report for a parameter set and returns its table.
// It fails on an unknown method, an invalid site or a computation error.
type ReportExecutor interface {
	Execute(ctx context.Context, method string, params map[string]any) (*schema.Table, error)
}

// MetricRegistry resolves numeric metric ids to metric names.
type MetricRegistry interface {
	GetMapping(ctx context.Context) (map[string]string, error)
}

// MetricFormatter turns raw numeric values of a table into display strings in place.
// Implementations are not required to be idempotent.
type MetricFormatter interface {
	FormatMetrics(table *schema.Table)
}

// StoreManager defines the interface for managing the persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetCacheStore() CacheStore
	GetReportStore() ReportStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for key/value cache storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ReportStore archives report tables and serves them back as a ReportExecutor.
type ReportStore interface {
	ReportExecutor
	MetricRegistry

	// SaveReport upserts the archived table for a report key
	SaveReport(ctx context.Context, key schema.ReportKey, table *schema.Table) error

	// ListReports returns the archived report keys, optionally filtered by site (0 means all)
	ListReports(ctx context.Context, siteID int) ([]schema.ReportSummary, error)

	// SaveMetricNames upserts metric id to name mappings
	SaveMetricNames(ctx context.Context, names map[string]string) error

	// GetStatus returns status information about the archive
	GetStatus() (schema.ArchiveStatus, error)

	// Close closes the underlying connection
	Close() error
}

// RunStore defines the interface for tracking comparison runs.
type RunStore interface {
	// BeginRun creates a new comparison run and returns its unique ID
	BeginRun(startTime time.Time, runUUID string, req schema.CompareRequest) (int64, error)

	// EndRun updates the run with completion data; a non-nil runErr marks it failed
	EndRun(runID int64, endTime time.Time, variantCount, rowsCompared int, runErr error) error

	// GetAllRuns retrieves every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
