package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/registry"
	"github.com/huangsam/datacompare/schema"
	"github.com/jonboulle/clockwork"
)

// Errors returned by ReportStoreImpl.Execute.
var (
	ErrUnknownMethod = errors.New("unknown report method")
	ErrInvalidSite   = errors.New("invalid site id")
)

// ReportStoreImpl serves archived report tables keyed by site, method, period, date and segment.
type ReportStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	clock   clockwork.Clock
}

var _ contract.ReportStore = &ReportStoreImpl{} // Compile-time check

// NewReportStore opens the report archive for the backend and creates its tables.
func NewReportStore(backend schema.DatabaseBackend, connStr string) (*ReportStoreImpl, error) {
	return NewReportStoreWithClock(backend, connStr, clockwork.NewRealClock())
}

// NewReportStoreWithClock is NewReportStore with a custom clock for archive timestamps.
func NewReportStoreWithClock(backend schema.DatabaseBackend, connStr string, clock clockwork.Clock) (*ReportStoreImpl, error) {
	if backend == schema.NoneBackend {
		return nil, fmt.Errorf("report store requires a database backend (received %s)", backend)
	}
	db, err := openDatabase(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createReportTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create report tables: %w", err)
	}
	return &ReportStoreImpl{db: db, backend: backend, clock: clock}, nil
}

// createReportTables creates the archive and metric name tables.
func createReportTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{reportArchivesTable, createReportArchivesQuery(backend)},
		{metricNamesTable, createMetricNamesQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

func createReportArchivesQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(reportArchivesTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				site_id INT NOT NULL,
				method VARCHAR(191) NOT NULL,
				period VARCHAR(16) NOT NULL,
				date VARCHAR(32) NOT NULL,
				segment VARCHAR(255) NOT NULL DEFAULT '',
				payload LONGTEXT NOT NULL,
				row_count INT NOT NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (site_id, method, period, date, segment)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				site_id INTEGER NOT NULL,
				method TEXT NOT NULL,
				period TEXT NOT NULL,
				date TEXT NOT NULL,
				segment TEXT NOT NULL DEFAULT '',
				payload TEXT NOT NULL,
				row_count INTEGER NOT NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (site_id, method, period, date, segment)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				site_id INTEGER NOT NULL,
				method TEXT NOT NULL,
				period TEXT NOT NULL,
				date TEXT NOT NULL,
				segment TEXT NOT NULL DEFAULT '',
				payload TEXT NOT NULL,
				row_count INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				PRIMARY KEY (site_id, method, period, date, segment)
			);
		`, quoted)
	}
}

func createMetricNamesQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(metricNamesTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_id VARCHAR(32) PRIMARY KEY,
				metric_name VARCHAR(255) NOT NULL
			);
		`, quoted)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_id TEXT PRIMARY KEY,
				metric_name TEXT NOT NULL
			);
		`, quoted)
	}
}

// archiveLookup is the parsed form of report request parameters.
type archiveLookup struct {
	key      schema.ReportKey
	period   schema.Period
	sortBy   string
	offset   int
	limit    int
	hasLimit bool
}

// Execute returns the archived table for the request parameters.
// It fails for a method or site that has no archive at all and returns an empty
// table when only the specific period, date or segment is missing.
func (rs *ReportStoreImpl) Execute(ctx context.Context, method string, params map[string]any) (*schema.Table, error) {
	lookup, err := parseArchiveLookup(method, params)
	if err != nil {
		return nil, err
	}

	if err := rs.requireArchive(ctx, "method", lookup.key.Method, ErrUnknownMethod); err != nil {
		return nil, err
	}
	if err := rs.requireArchive(ctx, "site_id", lookup.key.SiteID, ErrInvalidSite); err != nil {
		return nil, err
	}

	table, err := rs.loadArchive(ctx, lookup.key)
	if err != nil {
		return nil, err
	}

	if lookup.sortBy != "" {
		table.SortByColumn(lookup.sortBy, true)
	}
	if lookup.offset > 0 || lookup.hasLimit {
		table.Slice(lookup.offset, lookup.limit)
	}
	table.SetMetadata(schema.MetaSite, lookup.key.SiteID)
	table.SetMetadata(schema.MetaPeriod, lookup.period)
	if lookup.key.Segment != "" {
		table.SetMetadata(schema.MetaSegment, lookup.key.Segment)
	}
	return table, nil
}

// parseArchiveLookup reads site, period, date, segment and the row filters from params.
func parseArchiveLookup(method string, params map[string]any) (archiveLookup, error) {
	var lookup archiveLookup
	if strings.TrimSpace(method) == "" {
		return lookup, fmt.Errorf("%w: method is empty", ErrUnknownMethod)
	}

	siteStr := paramString(params, schema.ParamIDSite)
	site, err := strconv.Atoi(siteStr)
	if err != nil || site <= 0 {
		return lookup, fmt.Errorf("%w: %q", ErrInvalidSite, siteStr)
	}

	period, err := schema.ParsePeriod(paramString(params, schema.ParamPeriod), paramString(params, schema.ParamDate))
	if err != nil {
		return lookup, err
	}
	period.Date, err = period.DateStart()
	if err != nil {
		return lookup, err
	}

	lookup.key = schema.ReportKey{
		SiteID:  site,
		Method:  method,
		Period:  string(period.Label),
		Date:    period.Date,
		Segment: paramString(params, schema.ParamSegment),
	}
	lookup.period = period
	lookup.sortBy = paramString(params, schema.ParamFilterSortColumn)
	lookup.offset = paramInt(params, schema.ParamFilterOffset)
	if limit := paramInt(params, schema.ParamFilterLimit); limit > 0 {
		lookup.limit = limit
		lookup.hasLimit = true
	}
	return lookup, nil
}

// requireArchive fails with notFound when no archive row has column = value.
func (rs *ReportStoreImpl) requireArchive(ctx context.Context, column string, value any, notFound error) error {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %s",
		quoteTableName(reportArchivesTable, rs.backend), column, placeholder(rs.backend, 1))
	count, err := retryRead(ctx, func() (int, error) {
		var n int
		err := rs.db.QueryRowContext(ctx, query, value).Scan(&n)
		return n, err
	})
	if err != nil {
		return fmt.Errorf("failed to look up archives by %s: %w", column, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %v", notFound, value)
	}
	return nil
}

// loadArchive decodes the archived table for key, or returns an empty table if there is none.
func (rs *ReportStoreImpl) loadArchive(ctx context.Context, key schema.ReportKey) (*schema.Table, error) {
	query := fmt.Sprintf("SELECT payload FROM %s WHERE site_id = %s AND method = %s AND period = %s AND date = %s AND segment = %s",
		quoteTableName(reportArchivesTable, rs.backend),
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5))

	payload, err := retryRead(ctx, func() (string, error) {
		var p string
		err := rs.db.QueryRowContext(ctx, query, key.SiteID, key.Method, key.Period, key.Date, key.Segment).Scan(&p)
		return p, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return schema.NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archive %s for site %d: %w", key.Method, key.SiteID, err)
	}

	table, err := schema.DecodeTable(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("corrupt archive %s for site %d: %w", key.Method, key.SiteID, err)
	}
	return table, nil
}

// SaveReport upserts the archived table for a report key.
// The date is stored as the start of its period so any date inside the period finds it.
func (rs *ReportStoreImpl) SaveReport(ctx context.Context, key schema.ReportKey, table *schema.Table) error {
	if key.SiteID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSite, key.SiteID)
	}
	if strings.TrimSpace(key.Method) == "" {
		return fmt.Errorf("report method cannot be empty")
	}
	if table == nil {
		return fmt.Errorf("report table cannot be nil")
	}
	period, err := schema.ParsePeriod(key.Period, key.Date)
	if err != nil {
		return err
	}
	key.Period = string(period.Label)
	if key.Date, err = period.DateStart(); err != nil {
		return err
	}

	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", key.Method, err)
	}

	args := []any{key.SiteID, key.Method, key.Period, key.Date, key.Segment, string(payload), table.RowCount(), rs.clock.Now().Unix()}
	if _, err := rs.db.ExecContext(ctx, rs.archiveUpsertQuery(), args...); err != nil {
		return fmt.Errorf("failed to save report %s: %w", key.Method, err)
	}
	return nil
}

func (rs *ReportStoreImpl) archiveUpsertQuery() string {
	quoted := quoteTableName(reportArchivesTable, rs.backend)
	columns := "site_id, method, period, date, segment, payload, row_count, updated_at"
	values := placeholders(rs.backend, 8)
	switch rs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload, row_count = new.row_count, updated_at = new.updated_at`, quoted, columns, values)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (site_id, method, period, date, segment) DO UPDATE SET payload = EXCLUDED.payload, row_count = EXCLUDED.row_count, updated_at = EXCLUDED.updated_at`, quoted, columns, values)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quoted, columns, values)
	}
}

// ListReports returns the archived report keys, optionally filtered by site (0 means all).
func (rs *ReportStoreImpl) ListReports(ctx context.Context, siteID int) ([]schema.ReportSummary, error) {
	query := fmt.Sprintf("SELECT site_id, method, period, date, segment, row_count, updated_at FROM %s",
		quoteTableName(reportArchivesTable, rs.backend))
	var args []any
	if siteID > 0 {
		query += " WHERE site_id = " + placeholder(rs.backend, 1)
		args = append(args, siteID)
	}
	query += " ORDER BY site_id, method, period, date, segment"

	rows, err := rs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report archives: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportSummary
	for rows.Next() {
		var s schema.ReportSummary
		if err := rows.Scan(&s.SiteID, &s.Method, &s.Period, &s.Date, &s.Segment, &s.Rows, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report archive: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report archives: %w", err)
	}
	return results, nil
}

// SaveMetricNames upserts metric id to name mappings in one transaction.
func (rs *ReportStoreImpl) SaveMetricNames(ctx context.Context, names map[string]string) error {
	for id, name := range names {
		if !schema.IsNumericName(id) {
			return fmt.Errorf("metric id %q must be numeric", id)
		}
		if name == "" || schema.IsNumericName(name) {
			return fmt.Errorf("metric name for id %s must be non-numeric (received %q)", id, name)
		}
	}

	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rs.metricNameUpsertQuery()
	for id, name := range names {
		if _, err := tx.ExecContext(ctx, query, id, name); err != nil {
			return fmt.Errorf("failed to save metric name %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (rs *ReportStoreImpl) metricNameUpsertQuery() string {
	quoted := quoteTableName(metricNamesTable, rs.backend)
	switch rs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (metric_id, metric_name) VALUES (?, ?) AS new
			ON DUPLICATE KEY UPDATE metric_name = new.metric_name`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (metric_id, metric_name) VALUES ($1, $2)
			ON CONFLICT (metric_id) DO UPDATE SET metric_name = EXCLUDED.metric_name`, quoted)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (metric_id, metric_name) VALUES (?, ?)`, quoted)
	}
}

// GetMapping returns the built-in metric names overlaid with the stored ones.
func (rs *ReportStoreImpl) GetMapping(ctx context.Context) (map[string]string, error) {
	mapping, err := registry.NewStatic(nil).GetMapping(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT metric_id, metric_name FROM %s", quoteTableName(metricNamesTable, rs.backend))
	stored, err := retryRead(ctx, func() (map[string]string, error) {
		rows, err := rs.db.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		names := make(map[string]string)
		for rows.Next() {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				return nil, err
			}
			names[id] = name
		}
		return names, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read metric names: %w", err)
	}
	maps.Copy(mapping, stored)
	return mapping, nil
}

// Close closes the underlying connection.
func (rs *ReportStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the archive.
func (rs *ReportStoreImpl) GetStatus() (schema.ArchiveStatus, error) {
	status := schema.ArchiveStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}
	if rs.db == nil {
		return status, nil
	}

	archives := quoteTableName(reportArchivesTable, rs.backend)
	var lastUpdated int64
	row := rs.db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*), COUNT(DISTINCT site_id), COUNT(DISTINCT method), COALESCE(MAX(updated_at), 0) FROM %s", archives))
	if err := row.Scan(&status.TotalReports, &status.TotalSites, &status.TotalMethods, &lastUpdated); err != nil {
		return status, fmt.Errorf("failed to get archive counts: %w", err)
	}
	if lastUpdated > 0 {
		status.LastUpdatedAt = time.Unix(lastUpdated, 0)
	}

	names := quoteTableName(metricNamesTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", names)).Scan(&status.MetricNames); err != nil {
		return status, fmt.Errorf("failed to get metric name count: %w", err)
	}
	return status, nil
}

// paramString renders a request parameter as a string.
func paramString(params map[string]any, name string) string {
	v, ok := params[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// paramInt reads an integer request parameter, returning 0 when absent or invalid.
func paramInt(params map[string]any, name string) int {
	f, ok := schema.ToFloat(params[name])
	if !ok {
		return 0
	}
	return int(f)
}
