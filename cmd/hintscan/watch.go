package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hintscan/hintscan/internal/config"
	"github.com/hintscan/hintscan/internal/database"
	"github.com/hintscan/hintscan/internal/log"
	"github.com/hintscan/hintscan/internal/pipeline"
)

// defaultDebounce is how long the watcher waits after the last write
// event before re-analyzing a trace. Capture tools write traces
// incrementally; analyzing on the first write would read a truncated
// file.
const defaultDebounce = 500 * time.Millisecond

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory and re-analyze traces as they change",
		Long: `Watch monitors a directory for new or modified trace files and runs
the analysis on each change.

This keeps a terminal with live hint output next to a capture workflow:
export a trace into the watched directory and the report appears.

Only files with .json, .ndjson, or .trace extensions are analyzed.
Rapid successive writes are debounced so partially written traces are
not analyzed.

Examples:
  # Watch the current directory
  hintscan watch

  # Watch a capture directory with a rule pack
  hintscan watch --rules .hintscan.yaml ./captures

  # Watch without saving results to the history database
  hintscan watch --no-save ./captures`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatchCmd,
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
	cmd.Flags().Duration("debounce", defaultDebounce,
		"Delay after the last write before re-analyzing a trace")

	// Persistence flags
	cmd.Flags().Bool("no-save", false,
		"Do not save analysis results to the history database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildWatchConfig(cmd)
	if err != nil {
		return err
	}

	watchDir := "."
	if len(args) > 0 {
		watchDir = args[0]
	}
	info, err := os.Stat(watchDir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", watchDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target must be a directory: %s", watchDir)
	}

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping watcher...")
		cancel()
	}()

	return runWatch(ctx, cfg, watchDir, debounce, logger)
}

// buildWatchConfig creates a Config from the watch command's flags.
func buildWatchConfig(cmd *cobra.Command) (*config.Config, error) {
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

	return cfg, nil
}

// runWatch monitors the directory and analyzes traces on change.
func runWatch(ctx context.Context, cfg *config.Config, watchDir string, debounce time.Duration, logger *slog.Logger) error {
	settings, err := loadSettings(cfg)
	if err != nil {
		return err
	}

	symbols, err := loadSymbolMap(cfg)
	if err != nil {
		return err
	}

	var db *database.HintDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	factory := pipelineFactory(cfg, settings, symbols, db, logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}

	fmt.Fprintf(os.Stderr, "Watching %s for trace files (Ctrl-C to stop)...\n\n", watchDir)
	logger.Info("watcher started", "dir", watchDir, "debounce", debounce)

	// Per-path debounce timers. A new write event resets the timer, so
	// analysis starts only after the file has been quiet for the
	// debounce interval.
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	analyze := func(path string) {
		mu.Lock()
		delete(timers, path)
		mu.Unlock()

		fmt.Fprintf(os.Stderr, "Analyzing %s...\n", path)

		job := pipeline.NewJob(path)
		if err := factory().Execute(ctx, job); err != nil {
			logger.Error("analysis failed", "trace", path, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", path, err)
			return
		}

		if err := outputReport(cfg, job); err != nil {
			logger.Error("report failed", "trace", path, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isTraceFile(event.Name) {
				continue
			}

			logger.Debug("trace file changed", "path", event.Name, "op", event.Op)

			mu.Lock()
			if t, exists := timers[event.Name]; exists {
				t.Reset(debounce)
			} else {
				path := event.Name
				timers[path] = time.AfterFunc(debounce, func() { analyze(path) })
			}
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// isTraceFile reports whether a path looks like a trace file.
func isTraceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".ndjson", ".trace":
		return true
	default:
		return false
	}
}
