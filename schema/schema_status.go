package schema

import "time"

// CacheStatus represents the status of the key/value cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// ArchiveStatus represents the status of the report archive store.
type ArchiveStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	TotalReports  int       `json:"total_reports"`
	TotalSites    int       `json:"total_sites"`
	TotalMethods  int       `json:"total_methods"`
	MetricNames   int       `json:"metric_names"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// RunStoreStatus represents the status of the comparison run store.
type RunStoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	FailedRuns    int              `json:"failed_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the comparison_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	Method        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	VariantCount  int
	RowsCompared  int
	Status        RunStatus
	ErrorMessage  *string
	RequestParams *string
}
