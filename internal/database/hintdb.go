package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hintscan/hintscan/internal/model"
)

// HintDB provides SQLite-based storage for analysis reports.
// It manages connection pooling and provides methods for saving and
// querying analysis history.
//
// Design decision: One database file holds every analysis rather than
// one file per trace. The compare command queries across analyses of
// the same trace, which is awkward with per-trace files.
type HintDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HintDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HintDB under dir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HintDB, error) {
	dbPath := filepath.Join(dbDir, "hintscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HintDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HintDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HintDB) createTables() error {
	schema := `
	-- Analyses store complete reports as JSON plus a severity summary
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trace_file TEXT NOT NULL,
		analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		record_count INTEGER DEFAULT 0,
		report_json TEXT NOT NULL,
		severity_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_trace ON analyses(trace_file);
	CREATE INDEX IF NOT EXISTS idx_analyses_time ON analyses(analyzed_at);

	-- Individual hints, queryable without deserializing reports
	CREATE TABLE IF NOT EXISTS hints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
		hint_id TEXT NOT NULL,
		rule TEXT NOT NULL,
		timestamp REAL NOT NULL,
		description TEXT NOT NULL,
		ref_record INTEGER DEFAULT -1,
		severity INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_hints_analysis ON hints(analysis_id);
	CREATE INDEX IF NOT EXISTS idx_hints_rule ON hints(rule);
	CREATE INDEX IF NOT EXISTS idx_hints_severity ON hints(severity);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport saves a complete analysis report and its hints.
// Returns the database ID of the stored analysis.
func (hdb *HintDB) SaveReport(ctx context.Context, report *model.AnalysisReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, _ := json.Marshal(report.SeveritySummary()) //nolint:errcheck,errchkjson // Simple map; Marshal won't fail

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO analyses (trace_file, analyzed_at, record_count, report_json, severity_summary)
	VALUES (?, ?, ?, ?, ?)
	`,
		report.TraceFile,
		report.AnalyzedAt.UTC().Format("2006-01-02 15:04:05"),
		report.RecordCount,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}

	analysisID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get analysis ID: %w", err)
	}

	for _, hint := range report.Hints {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO hints (analysis_id, hint_id, rule, timestamp, description, ref_record, severity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			analysisID,
			hint.ID,
			hint.Rule,
			hint.Timestamp,
			hint.Description,
			hint.RefRecord,
			int(hint.Severity),
		); err != nil {
			return 0, fmt.Errorf("failed to save hint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit analysis: %w", err)
	}
	return analysisID, nil
}

// AnalysisMetadata contains summary information about a stored analysis.
// Used for the history listing without loading full reports.
type AnalysisMetadata struct {
	// ID is the unique identifier of the analysis in the database.
	ID int64

	// TraceFile is the path of the analyzed trace.
	TraceFile string

	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time

	// RecordCount is the number of records dispatched.
	RecordCount int

	// SeveritySummary contains hint counts by severity name.
	SeveritySummary map[string]int
}

// ListAnalyses returns metadata for stored analyses, most recent first.
// When traceFile is non-empty, results are limited to that trace.
func (hdb *HintDB) ListAnalyses(ctx context.Context, traceFile string) ([]AnalysisMetadata, error) {
	query := `
	SELECT id, trace_file, analyzed_at, record_count, severity_summary
	FROM analyses
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if traceFile != "" {
		query += " AND trace_file = ?"
		args = append(args, traceFile)
	}
	query += " ORDER BY analyzed_at DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var results []AnalysisMetadata
	for rows.Next() {
		var meta AnalysisMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.TraceFile, &timestamp, &meta.RecordCount, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan analysis metadata: %w", err)
		}

		meta.AnalyzedAt = parseTimestamp(timestamp)
		meta.SeveritySummary = make(map[string]int)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.SeveritySummary); err != nil {
				meta.SeveritySummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReport retrieves a full analysis report by database ID.
// Returns nil without error when the ID is unknown.
func (hdb *HintDB) GetReport(ctx context.Context, id int64) (*model.AnalysisReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM analyses WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetLatestReport retrieves the most recent report for a trace file.
// Returns nil without error when the trace has no stored analyses.
func (hdb *HintDB) GetLatestReport(ctx context.Context, traceFile string) (*model.AnalysisReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `
	SELECT report_json FROM analyses
	WHERE trace_file = ?
	ORDER BY analyzed_at DESC, id DESC
	LIMIT 1
	`, traceFile).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest analysis: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListTraceFiles returns the distinct trace files with stored analyses.
func (hdb *HintDB) ListTraceFiles(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT DISTINCT trace_file FROM analyses
	ORDER BY trace_file
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trace files: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan trace file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountHintsByRule returns the number of stored hints per rule for an
// analysis. Used by the compare command.
func (hdb *HintDB) CountHintsByRule(ctx context.Context, analysisID int64) (map[string]int, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT rule, COUNT(*) FROM hints
	WHERE analysis_id = ?
	GROUP BY rule
	`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to count hints: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	counts := make(map[string]int)
	for rows.Next() {
		var rule string
		var n int
		if err := rows.Scan(&rule, &n); err != nil {
			return nil, fmt.Errorf("failed to scan hint count: %w", err)
		}
		counts[rule] = n
	}
	return counts, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. Returns zero time when nothing matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
