package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/datacompare/schema"
)

// Default values for configuration.
const (
	DefaultPrecision       = 1
	MaxPrecision           = 4
	DefaultServerAddr      = "127.0.0.1:8080"
	DefaultMetricsCacheTTL = time.Hour
)

// ReportSelection identifies the base report a comparison decorates.
type ReportSelection struct {
	SiteID  int
	Method  string
	Period  schema.Period
	Segment string
}

// Key returns the archive key of the selected base report.
func (s ReportSelection) Key() schema.ReportKey {
	return schema.ReportKey{
		SiteID:  s.SiteID,
		Method:  s.Method,
		Period:  string(s.Period.Label),
		Date:    s.Period.Date,
		Segment: s.Segment,
	}
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Selection ReportSelection
	Compare   schema.CompareRequest

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	// MetricNames overrides or extends the built-in metric id to name mapping
	MetricNames     map[string]string
	MetricsCacheTTL time.Duration

	ServerAddr     string
	AllowedOrigins []string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`

	// --- Fields from compareCmd.Flags() ---
	Site            int      `mapstructure:"site"`
	Method          string   `mapstructure:"method"`
	Period          string   `mapstructure:"period"`
	Date            string   `mapstructure:"date"`
	Segment         string   `mapstructure:"segment"`
	CompareSegments []string `mapstructure:"compare-segments"`
	CompareDates    []string `mapstructure:"compare-dates"`
	ComparePeriods  []string `mapstructure:"compare-periods"`

	// --- Fields from serveCmd.Flags() ---
	Addr           string `mapstructure:"addr"`
	AllowedOrigins string `mapstructure:"allowed-origins"`

	// --- Metric registry settings from config file ---
	MetricsCacheTTL string            `mapstructure:"metrics-cache-ttl"`
	MetricNames     map[string]string `mapstructure:"metric-names"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Compare.Segments = slices.Clone(c.Compare.Segments)
	clone.Compare.Dates = slices.Clone(c.Compare.Dates)
	clone.Compare.Periods = slices.Clone(c.Compare.Periods)
	clone.AllowedOrigins = slices.Clone(c.AllowedOrigins)
	if c.MetricNames != nil {
		clone.MetricNames = maps.Clone(c.MetricNames)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processMetricSettings(cfg, input); err != nil {
		return err
	}
	if err := processServerSettings(cfg, input); err != nil {
		return err
	}
	return processReportSelection(cfg, input)
}

// RequireReportSelection checks that a base report was selected.
func RequireReportSelection(cfg *Config) error {
	if cfg.Selection.Method == "" {
		return fmt.Errorf("--method is required")
	}
	if cfg.Selection.SiteID <= 0 {
		return fmt.Errorf("--site must be greater than 0 (received %d)", cfg.Selection.SiteID)
	}
	if cfg.Selection.Period.Label == "" {
		return fmt.Errorf("--period and --date are required")
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the report archive and cache.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".datacompare.db"
	}
	return filepath.Join(homeDir, ".datacompare.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".datacompare_runs.db"
	}
	return filepath.Join(homeDir, ".datacompare_runs.db")
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// validateBackendConfigs validates archive and run tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if storePath == runPath && storePath != ":memory:" {
			return fmt.Errorf("store and run tracking must use different SQLite database files. Both resolve to %q", storePath)
		}
	}
	return nil
}

// processMetricSettings validates metric name overrides and the registry cache TTL.
func processMetricSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.MetricsCacheTTL = DefaultMetricsCacheTTL
	if input.MetricsCacheTTL != "" {
		ttl, err := time.ParseDuration(input.MetricsCacheTTL)
		if err != nil {
			return fmt.Errorf("invalid metrics-cache-ttl %q: %w", input.MetricsCacheTTL, err)
		}
		if ttl < 0 {
			return fmt.Errorf("metrics-cache-ttl cannot be negative (received %s)", ttl)
		}
		cfg.MetricsCacheTTL = ttl
	}

	cfg.MetricNames = make(map[string]string, len(input.MetricNames))
	for id, name := range input.MetricNames {
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if !schema.IsNumericName(id) {
			return fmt.Errorf("metric-names key %q must be a numeric metric id", id)
		}
		if name == "" || schema.IsNumericName(name) {
			return fmt.Errorf("metric-names value for id %s must be a non-numeric name (received %q)", id, name)
		}
		cfg.MetricNames[id] = name
	}
	return nil
}

// processServerSettings handles the HTTP server address and CORS origins.
func processServerSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.ServerAddr = strings.TrimSpace(input.Addr)
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = DefaultServerAddr
	}
	if !strings.Contains(cfg.ServerAddr, ":") {
		return fmt.Errorf("invalid --addr %q. expected host:port", input.Addr)
	}

	cfg.AllowedOrigins = nil
	for origin := range strings.SplitSeq(input.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}
	return nil
}

// processReportSelection parses the base report and comparison lists when a method is given.
func processReportSelection(cfg *Config, input *ConfigRawInput) error {
	cfg.Compare = schema.CompareRequest{
		Method:   strings.TrimSpace(input.Method),
		Segments: input.CompareSegments,
		Dates:    input.CompareDates,
		Periods:  input.ComparePeriods,
	}
	cfg.Selection = ReportSelection{
		SiteID:  input.Site,
		Method:  cfg.Compare.Method,
		Segment: strings.TrimSpace(input.Segment),
	}

	if input.Period == "" && input.Date == "" {
		return nil
	}
	period, err := schema.ParsePeriod(input.Period, input.Date)
	if err != nil {
		return err
	}
	cfg.Selection.Period = period
	return nil
}
