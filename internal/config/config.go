package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single trace analysis. Traces are local
	// files, so analysis is CPU-bound; a minute covers even very large
	// captures, and hitting the limit marks the report as timed out
	// rather than hanging the batch.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize is the number of traces analyzed concurrently
	// when a directory or list of traces is given. Analysis is
	// CPU-bound, so a small fixed degree is enough to keep cores busy
	// without thrashing memory on traces with captured bodies.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "hintscan"

	// DefaultListenAddress is where the serve command binds.
	// Loopback only: the history API has no authentication.
	DefaultListenAddress = "127.0.0.1:8321"
)

// Config holds all configuration options for hintscan.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested
// structs (AnalyzeConfig, ServeConfig, ...). The number of options is
// manageable, and nesting would add complexity without benefit.
type Config struct {
	// Traces is the list of trace files to analyze.
	// Must contain at least one path for the analyze command.
	Traces []string

	// BrowserTypes makes ingest treat record type codes as raw browser
	// timeline numbering and translate them to engine types.
	BrowserTypes bool

	// ValidateRecords enables schema validation of every trace record
	// during ingest. Malformed records fail the analysis instead of
	// being silently misread.
	ValidateRecords bool

	// SymbolMapPath is the path to a JSON symbol map used to
	// resymbolize stack frames in hints. Empty disables resymbolization.
	SymbolMapPath string

	// RulePackPath is the path to a YAML rule pack that disables rules
	// or overrides their thresholds. Empty means all defaults.
	RulePackPath string

	// Timeout bounds each trace analysis. When exceeded the report is
	// marked timed out and the batch continues.
	Timeout time.Duration

	// BatchSize is the number of traces analyzed concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// EmitEnvelopes additionally streams raw envelopes as NDJSON to
	// stdout, for piping into other tools.
	EmitEnvelopes bool

	// DBDir is the directory path for storing the SQLite database.
	// When set, analysis results are saved for historical comparison.
	// Defaults to the XDG data directory when SaveToDB is requested.
	DBDir string

	// SaveToDB indicates whether to save analysis results to the
	// database. Automatically true when DBDir is set explicitly.
	SaveToDB bool

	// ListenAddress is the host:port the serve command binds to.
	ListenAddress string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		BatchSize:     DefaultBatchSize,
		ListenAddress: DefaultListenAddress,
	}
}

// XDGDataDir returns the XDG data directory for hintscan.
// On Linux: ~/.local/share/hintscan
// On macOS: ~/Library/Application Support/hintscan
// On Windows: %LOCALAPPDATA%\hintscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for hintscan.
// On Linux: ~/.config/hintscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid for an analysis run.
// It returns the first error found rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Traces) == 0 {
		return ErrNoTrace
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateServe checks the configuration for the serve command, which
// needs a listen address and a database but no traces.
func (c *Config) ValidateServe() error {
	if c.ListenAddress == "" {
		return ErrInvalidListenAddress
	}
	return nil
}
