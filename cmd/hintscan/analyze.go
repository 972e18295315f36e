package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hintscan/hintscan/internal/config"
	"github.com/hintscan/hintscan/internal/database"
	"github.com/hintscan/hintscan/internal/engine"
	"github.com/hintscan/hintscan/internal/ingest"
	"github.com/hintscan/hintscan/internal/log"
	"github.com/hintscan/hintscan/internal/pipeline"
	"github.com/hintscan/hintscan/internal/report"
	"github.com/hintscan/hintscan/internal/rules"
	"github.com/hintscan/hintscan/internal/symbol"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [trace-file...]",
		Short: "Analyze browser trace files for performance problems",
		Long: `Analyze reads one or more browser trace files and runs the built-in
performance rules over every record.

It inspects network and page events for:
- Missing or counterproductive caching headers
- Uncompressed compressible resources
- Cookies sent for static content
- Excessive total download size
- Long-running events and layout bursts
- Resources spread over too many hostnames

Examples:
  # Analyze a single trace
  hintscan analyze trace.json

  # Analyze several traces concurrently
  hintscan analyze trace1.json trace2.json trace3.json

  # Output a JSON report to a file
  hintscan analyze --json -o report.json trace.json

  # Stream raw hint envelopes as NDJSON for another tool
  hintscan analyze --emit trace.json | jq .

  # Tune rules with a rule pack and resymbolize stack frames
  hintscan analyze --rules .hintscan.yaml --symbol-map symbols.json trace.json

  # Ingest a trace captured with raw browser timeline type codes
  hintscan analyze --browser-types timeline.ndjson`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Ingest flags
	cmd.Flags().BoolP("browser-types", "B", false,
		"Treat record type codes as raw browser timeline numbering")
	cmd.Flags().Bool("validate", false,
		"Validate every record against the trace schema during ingest")

	// Rule flags
	cmd.Flags().StringP("rules", "r", "",
		"Rule pack file that disables rules or overrides thresholds")
	cmd.Flags().StringP("symbol-map", "S", "",
		"Symbol map file used to resymbolize stack frames in hints")

	// Analysis behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for analyzing each trace")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent trace analyses")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("emit", "e", false,
		"Stream raw hint envelopes to stdout as NDJSON")

	// Persistence flags
	cmd.Flags().Bool("no-save", false,
		"Do not save analysis results to the history database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BrowserTypes, err = cmd.Flags().GetBool("browser-types")
	if err != nil {
		return nil, err
	}

	cfg.ValidateRecords, err = cmd.Flags().GetBool("validate")
	if err != nil {
		return nil, err
	}

	cfg.RulePackPath, err = cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}

	cfg.SymbolMapPath, err = cmd.Flags().GetString("symbol-map")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.EmitEnvelopes, err = cmd.Flags().GetBool("emit")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the trace files
	cfg.Traces = args

	return cfg, nil
}

// loadSettings loads the rule pack referenced by the config.
// An explicitly configured pack must exist; no pack means defaults.
func loadSettings(cfg *config.Config) (rules.Settings, error) {
	if cfg.RulePackPath == "" {
		return rules.DefaultSettings(), nil
	}

	settings, err := rules.LoadSettings(cfg.RulePackPath)
	if err != nil {
		if errors.Is(err, rules.ErrRulePackNotFound) {
			return rules.Settings{}, fmt.Errorf("rule pack not found: %s", cfg.RulePackPath)
		}
		return rules.Settings{}, err
	}
	return settings, nil
}

// loadSymbolMap loads the symbol map referenced by the config.
// Returns nil when no map is configured; rules treat a nil map as
// "resolve nothing".
func loadSymbolMap(cfg *config.Config) (*symbol.Map, error) {
	if cfg.SymbolMapPath == "" {
		return nil, nil
	}

	symbols, err := symbol.Load(cfg.SymbolMapPath)
	if err != nil {
		if errors.Is(err, symbol.ErrNoSymbolMap) {
			return nil, fmt.Errorf("symbol map not found: %s", cfg.SymbolMapPath)
		}
		return nil, err
	}
	return symbols, nil
}

// runAnalyze executes the analysis.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"traces", cfg.Traces,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	settings, err := loadSettings(cfg)
	if err != nil {
		return err
	}

	symbols, err := loadSymbolMap(cfg)
	if err != nil {
		return err
	}

	// Open database connection if saving is enabled
	var db *database.HintDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	if err := truncateReportFile(cfg); err != nil {
		return err
	}

	factory := pipelineFactory(cfg, settings, symbols, db, logger)

	// Use batch processor for parallel analysis if multiple traces
	if len(cfg.Traces) > 1 && cfg.BatchSize > 1 {
		return runBatchAnalyze(ctx, cfg, factory, logger)
	}

	return runSequentialAnalyze(ctx, cfg, factory, logger)
}

// pipelineFactory returns a factory building a fresh pipeline per
// trace. Rules carry per-page state, so every pipeline gets its own
// rule instances.
func pipelineFactory(cfg *config.Config, settings rules.Settings, symbols *symbol.Map, db *database.HintDB, logger *slog.Logger) func() *pipeline.Pipeline {
	readerOpts := []ingest.Option{ingest.WithLogger(logger)}
	if cfg.BrowserTypes {
		readerOpts = append(readerOpts, ingest.WithBrowserTypes())
	}
	if cfg.ValidateRecords {
		readerOpts = append(readerOpts, ingest.WithValidation())
	}

	return func() *pipeline.Pipeline {
		analyzeOpts := []pipeline.AnalyzeOption{
			pipeline.WithAnalyzeTimeout(cfg.Timeout),
			pipeline.WithAnalyzeLogger(logger),
		}
		if cfg.EmitEnvelopes {
			analyzeOpts = append(analyzeOpts,
				pipeline.WithExtraSinks(engine.NewWriterSink(os.Stdout)))
		}

		p := pipeline.New(
			pipeline.WithLogger(logger),
			pipeline.WithContinueOnError(true),
		)
		p.AddStep(pipeline.NewIngestStep(ingest.NewReader(readerOpts...)))
		p.AddStep(pipeline.NewAnalyzeStep(rules.DefaultRules(settings, symbols), analyzeOpts...))
		if db != nil {
			p.AddStep(pipeline.NewSaveStep(db, logger))
		}
		return p
	}
}

// runSequentialAnalyze analyzes traces one at a time.
func runSequentialAnalyze(ctx context.Context, cfg *config.Config, factory func() *pipeline.Pipeline, logger *slog.Logger) error {
	for _, trace := range cfg.Traces {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job := pipeline.NewJob(trace)

		fmt.Fprintf(os.Stderr, "Analyzing %s...\n", trace)
		startTime := time.Now()

		if err := factory().Execute(ctx, job); err != nil {
			logger.Error("analysis failed", "trace", trace, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", trace, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Fprintf(os.Stderr, "Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, job); err != nil {
			logger.Error("report failed", "trace", trace, "error", err)
		}
	}

	return nil
}

// runBatchAnalyze analyzes multiple traces concurrently using BatchProcessor.
func runBatchAnalyze(ctx context.Context, cfg *config.Config, factory func() *pipeline.Pipeline, logger *slog.Logger) error {
	fmt.Fprintf(os.Stderr, "Starting batch analysis of %d traces (concurrency: %d)...\n\n",
		len(cfg.Traces), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Traces, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(os.Stderr, "[%d/%d] Analysis completed: %s\n", index+1, len(cfg.Traces), job.TracePath)

		if err := outputReport(cfg, job); err != nil {
			logger.Error("report failed", "trace", job.TracePath, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nBatch analysis completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// outputReport outputs the analysis report in the requested format.
func outputReport(cfg *config.Config, job *pipeline.Job) error {
	output, closeOutput, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer, err := reportWriter(cfg, output)
	if err != nil {
		return err
	}

	_, err = writer.Write(job.Report)
	return err
}

// truncateReportFile prepares the report output file for a run.
// Reports append afterwards, so a multi-trace run collects every
// report in one file instead of keeping only the last.
func truncateReportFile(cfg *config.Config) error {
	if cfg.ReportFile == "" {
		return nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// 0600: reports can contain captured headers and URLs
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return f.Close()
}

// reportDestination opens the report output file, or returns stdout.
func reportDestination(cfg *config.Config) (*os.File, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// reportWriter selects the report format for the run.
func reportWriter(cfg *config.Config, output *os.File) (report.Writer, error) {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()), nil
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output), nil
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose)), nil
	}
}
