package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/datacompare/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// sqliteBusyTimeout lets the cache and report stores share one SQLite file.
const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName checks that a table name is safe to interpolate into SQL.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholder returns the n-th (1-based) bind parameter for the backend.
func placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholders returns count comma-separated bind parameters starting at 1.
func placeholders(backend schema.DatabaseBackend, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = placeholder(backend, i+1)
	}
	return strings.Join(parts, ", ")
}

// driverName returns the database/sql driver registered for the backend.
func driverName(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// openDatabase opens and pings a connection for the backend.
// An empty SQLite connection string falls back to defaultPath.
func openDatabase(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = defaultPath
		}
		db, err = sql.Open(driverName(backend), sqliteDSN(dbPath))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		dsn, dsnErr := mysqlDSN(connStr, false)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, err = sql.Open(driverName(backend), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open(driverName(backend), connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}

// sqliteDSN appends the busy timeout pragma to a SQLite path.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=busy_timeout") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + sqliteBusyTimeout
	}
	return path + "?" + sqliteBusyTimeout
}

// mysqlDSN makes sure DATETIME columns scan into time.Time.
// Migrations additionally need multi-statement support.
func mysqlDSN(connStr string, multiStatements bool) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.ParseTime = true
	if multiStatements {
		cfg.MultiStatements = true
	}
	return cfg.FormatDSN(), nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// timeScanner scans a timestamp column that SQLite stores as text.
type timeScanner struct {
	backend schema.DatabaseBackend
	text    sql.NullString
	native  sql.NullTime
}

func newTimeScanner(backend schema.DatabaseBackend) *timeScanner {
	return &timeScanner{backend: backend}
}

// dest returns the scan destination for the backend.
func (ts *timeScanner) dest() any {
	if ts.backend == schema.SQLiteBackend {
		return &ts.text
	}
	return &ts.native
}

// value returns the scanned time, or nil when the column was NULL.
func (ts *timeScanner) value() (*time.Time, error) {
	if ts.backend != schema.SQLiteBackend {
		if !ts.native.Valid {
			return nil, nil
		}
		t := ts.native.Time
		return &t, nil
	}
	if !ts.text.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts.text.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse time %q: %w", ts.text.String, err)
	}
	return &t, nil
}
