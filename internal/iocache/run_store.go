package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// maxErrorMessageLength bounds the stored error text of a failed run.
const maxErrorMessageLength = 1024

// RunStoreImpl records comparison runs.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, contract.GetRunDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunsQuery returns the CREATE TABLE query for comparison_runs.
func createRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				method VARCHAR(191) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				variant_count INT NOT NULL DEFAULT 0,
				rows_compared INT NOT NULL DEFAULT 0,
				status VARCHAR(16) NOT NULL,
				error_message TEXT,
				request_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				method TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				variant_count INT NOT NULL DEFAULT 0,
				rows_compared INT NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				error_message TEXT,
				request_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				method TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				variant_count INTEGER NOT NULL DEFAULT 0,
				rows_compared INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				error_message TEXT,
				request_params TEXT
			);
		`, quoted)
	}
}

// BeginRun creates a new pending run and returns its ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, runUUID string, req schema.CompareRequest) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request params: %w", err)
	}

	quoted := quoteTableName(runsTable, rs.backend)
	args := []any{runUUID, req.Method, formatTime(startTime, rs.backend), string(schema.RunPending), string(reqJSON)}
	columns := "run_uuid, method, start_time, status, request_params"

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING run_id`, quoted, columns, placeholders(rs.backend, len(args)))
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quoted, columns, placeholders(rs.backend, len(args)))
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert comparison run: %w", err)
	}
	return runID, nil
}

// EndRun records completion data; a non-nil runErr marks the run failed.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, variantCount, rowsCompared int, runErr error) error {
	if rs.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholder(rs.backend, 1))
	start := newTimeScanner(rs.backend)
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	status := schema.RunSucceeded
	var errMsg *string
	if runErr != nil {
		status = schema.RunFailed
		msg := runErr.Error()
		if len(msg) > maxErrorMessageLength {
			msg = msg[:maxErrorMessageLength]
		}
		errMsg = &msg
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, variant_count = %s, rows_compared = %s, status = %s, error_message = %s WHERE run_id = %s`,
		quoted,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5), placeholder(rs.backend, 6),
		placeholder(rs.backend, 7))
	durationMs := endTime.Sub(*startTime).Milliseconds()
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, variantCount, rowsCompared, string(status), errMsg, runID); err != nil {
		return fmt.Errorf("failed to update comparison run: %w", err)
	}
	return nil
}

// GetAllRuns retrieves all runs ordered by ID.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, method, start_time, end_time, run_duration_ms,
		variant_count, rows_compared, status, error_message, request_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var status string
		start := newTimeScanner(rs.backend)
		end := newTimeScanner(rs.backend)
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Method, start.dest(), end.dest(),
			&record.RunDurationMs, &record.VariantCount, &record.RowsCompared, &status,
			&record.ErrorMessage, &record.RequestParams); err != nil {
			return nil, fmt.Errorf("failed to scan comparison run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		record.Status = schema.RunStatus(status)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison runs: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	failedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = %s", quoted, placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if err := rs.db.QueryRow(failedQuery, string(schema.RunFailed)).Scan(&status.FailedRuns); err != nil {
		return status, fmt.Errorf("failed to get failed runs: %w", err)
	}
	status.TableSizes[runsTable] = int64(status.TotalRuns)
	if status.TotalRuns == 0 {
		return status, nil
	}

	last := newTimeScanner(rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoted))
	if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	lastTime, err := last.value()
	if err != nil {
		return status, err
	}
	if lastTime != nil {
		status.LastRunTime = *lastTime
	}

	oldest := newTimeScanner(rs.backend)
	row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoted))
	if err := row.Scan(oldest.dest()); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	oldestTime, err := oldest.value()
	if err != nil {
		return status, err
	}
	if oldestTime != nil {
		status.OldestRunTime = *oldestTime
	}
	return status, nil
}
