package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage.
	DatabaseBackend string

	// RunStatus represents the outcome of a comparison run.
	RunStatus string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All run statuses supported.
const (
	RunPending   RunStatus = "pending"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// LiveMethod is the report family that never takes part in comparisons.
const LiveMethod = "Live"

// Table-level metadata keys.
const (
	MetaSite            = "site"
	MetaPeriod          = "period"
	MetaDate            = "date"
	MetaSegment         = "segment"
	MetaCompareSegments = "compareSegments"
	MetaCompareDates    = "compareDates"
	MetaComparePeriods  = "comparePeriods"
)

// Comparison entry row metadata keys.
const (
	MetaCompareSegment = "compareSegment"
	MetaComparePeriod  = "comparePeriod"
	MetaCompareDate    = "compareDate"
)

// Report request parameter names.
const (
	ParamMethod               = "method"
	ParamIDSite               = "idSite"
	ParamPeriod               = "period"
	ParamDate                 = "date"
	ParamSegment              = "segment"
	ParamFilterLimit          = "filter_limit"
	ParamFilterOffset         = "filter_offset"
	ParamFilterSortColumn     = "filter_sort_column"
	ParamFilterTruncate       = "filter_truncate"
	ParamCompare              = "compare"
	ParamTotals               = "totals"
	ParamDisableQueuedFilters = "disable_queued_filters"
	ParamFormatMetrics        = "format_metrics"
	ParamCompareSegments      = "compareSegments"
	ParamCompareDates         = "compareDates"
	ParamComparePeriods       = "comparePeriods"
)

// ChangeSuffix marks the evolution column derived from a metric column.
const ChangeSuffix = "_change"
