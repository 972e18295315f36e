package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hintscan/hintscan/internal/config"
	"github.com/hintscan/hintscan/internal/model"
	"github.com/hintscan/hintscan/internal/pipeline"
	"github.com/hintscan/hintscan/internal/report"
)

// TestNewAnalyzeCmd tests the analyze command creation.
func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "analyze [trace-file...]" {
			t.Errorf("expected use 'analyze [trace-file...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
		}{
			{"browser-types", "B"},
			{"validate", ""},
			{"rules", "r"},
			{"symbol-map", "S"},
			{"timeout", "t"},
			{"batch", "b"},
			{"json", "j"},
			{"markdown", "m"},
			{"output", "o"},
			{"emit", "e"},
			{"no-save", ""},
			{"db-dir", ""},
		}

		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		analyzeCmd, _, err := root.Find([]string{"analyze"})
		if err != nil {
			t.Fatalf("failed to find analyze command: %v", err)
		}

		if !getVerboseFlag(analyzeCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		cfg, err := buildConfig(cmd, []string{"trace.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Traces) != 1 || cfg.Traces[0] != "trace.json" {
			t.Errorf("expected traces [trace.json], got %v", cfg.Traces)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected default batch size, got %d", cfg.BatchSize)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
		if cfg.DBDir != config.XDGDataDir() {
			t.Errorf("expected XDG data dir, got %q", cfg.DBDir)
		}
	})

	t.Run("builds config with multiple traces", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		cfg, err := buildConfig(cmd, []string{"a.json", "b.json", "c.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Traces) != 3 {
			t.Errorf("expected 3 traces, got %d", len(cfg.Traces))
		}
	})

	t.Run("builds config with custom timeout", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("timeout", "5s")
		cfg, err := buildConfig(cmd, []string{"trace.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", cfg.Timeout)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"trace.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("no-save disables database persistence", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, []string{"trace.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("explicit db-dir overrides XDG default", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("db-dir", "/tmp/hintscan-test-db")
		cfg, err := buildConfig(cmd, []string{"trace.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.DBDir != "/tmp/hintscan-test-db" {
			t.Errorf("expected custom db dir, got %q", cfg.DBDir)
		}
	})

	t.Run("builds config with ingest flags", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		_ = cmd.Flags().Set("browser-types", "true")
		_ = cmd.Flags().Set("validate", "true")
		cfg, err := buildConfig(cmd, []string{"trace.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.BrowserTypes {
			t.Error("expected BrowserTypes to be true")
		}
		if !cfg.ValidateRecords {
			t.Error("expected ValidateRecords to be true")
		}
	})
}

// TestLoadSettings tests rule pack loading for the CLI.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	t.Run("no pack means defaults", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		settings, err := loadSettings(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(settings.Disabled) != 0 {
			t.Error("default settings should disable nothing")
		}
	})

	t.Run("explicit missing pack is an error", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.RulePackPath = filepath.Join(t.TempDir(), "missing.yaml")
		if _, err := loadSettings(cfg); err == nil {
			t.Error("expected error for missing rule pack")
		}
	})

	t.Run("loads an existing pack", func(t *testing.T) {
		t.Parallel()

		packPath := filepath.Join(t.TempDir(), "pack.yaml")
		content := []byte("disabled:\n  - image_metadata\n")
		if err := os.WriteFile(packPath, content, 0600); err != nil {
			t.Fatalf("failed to write pack: %v", err)
		}

		cfg := config.NewConfig()
		cfg.RulePackPath = packPath
		settings, err := loadSettings(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !settings.IsDisabled("image_metadata") {
			t.Error("expected image_metadata to be disabled")
		}
	})
}

// TestLoadSymbolMap tests symbol map loading for the CLI.
func TestLoadSymbolMap(t *testing.T) {
	t.Parallel()

	t.Run("no map means nil", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		symbols, err := loadSymbolMap(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if symbols != nil {
			t.Error("expected nil map when none is configured")
		}
	})

	t.Run("explicit missing map is an error", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.SymbolMapPath = filepath.Join(t.TempDir(), "missing.json")
		if _, err := loadSymbolMap(cfg); err == nil {
			t.Error("expected error for missing symbol map")
		}
	})

	t.Run("loads an existing map", func(t *testing.T) {
		t.Parallel()

		mapPath := filepath.Join(t.TempDir(), "symbols.json")
		content := []byte(`{"symbols":{"xK":{"name":"renderDashboard"}}}`)
		if err := os.WriteFile(mapPath, content, 0600); err != nil {
			t.Fatalf("failed to write map: %v", err)
		}

		cfg := config.NewConfig()
		cfg.SymbolMapPath = mapPath
		symbols, err := loadSymbolMap(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if symbols == nil || symbols.Len() != 1 {
			t.Error("expected a map with one symbol")
		}
	})
}

// TestOutputReport tests report output selection and file handling.
func TestOutputReport(t *testing.T) {
	newJob := func() *pipeline.Job {
		job := pipeline.NewJob("trace.json")
		job.Report.AddHint(model.NewHint("cache_control", 10, "resource a.css has no caching headers", 3, model.SeverityWarning))
		return job
	}

	t.Run("writes simple report to file", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "report.txt")

		cfg := config.NewConfig()
		cfg.ReportFile = outputPath
		if err := truncateReportFile(cfg); err != nil {
			t.Fatalf("truncate: %v", err)
		}

		if err := outputReport(cfg, newJob()); err != nil {
			t.Fatalf("outputReport() error = %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), "HINTSCAN REPORT") {
			t.Error("expected human-readable report banner")
		}
	})

	t.Run("writes JSON report with version wrapper", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "report.json")

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = outputPath
		if err := truncateReportFile(cfg); err != nil {
			t.Fatalf("truncate: %v", err)
		}

		if err := outputReport(cfg, newJob()); err != nil {
			t.Fatalf("outputReport() error = %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var wrapped report.JSONReport
		if err := json.Unmarshal(content, &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Report == nil || wrapped.Report.TotalHints() != 1 {
			t.Error("expected wrapped report with one hint")
		}
	})

	t.Run("writes Markdown report", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "report.md")

		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		cfg.ReportFile = outputPath
		if err := truncateReportFile(cfg); err != nil {
			t.Fatalf("truncate: %v", err)
		}

		if err := outputReport(cfg, newJob()); err != nil {
			t.Fatalf("outputReport() error = %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), "# Hintscan Report") {
			t.Error("expected Markdown heading")
		}
	})

	t.Run("appends reports across multiple jobs", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "report.txt")

		cfg := config.NewConfig()
		cfg.ReportFile = outputPath
		if err := truncateReportFile(cfg); err != nil {
			t.Fatalf("truncate: %v", err)
		}

		if err := outputReport(cfg, newJob()); err != nil {
			t.Fatalf("first report: %v", err)
		}
		if err := outputReport(cfg, newJob()); err != nil {
			t.Fatalf("second report: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if strings.Count(string(content), "HINTSCAN REPORT") != 2 {
			t.Error("expected both reports in the output file")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "subdir", "nested", "report.txt")

		cfg := config.NewConfig()
		cfg.ReportFile = outputPath
		if err := truncateReportFile(cfg); err != nil {
			t.Fatalf("truncate: %v", err)
		}

		if err := outputReport(cfg, newJob()); err != nil {
			t.Fatalf("outputReport() error = %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file in nested directory")
		}
	})
}

// writeTestTrace writes a small trace with one cacheable CSS response
// that is missing caching headers.
func writeTestTrace(t *testing.T) string {
	t.Helper()

	trace := `[
  {"type": 16, "time": 0, "data": {"url": "http://example.com/"}},
  {"type": 11, "time": 5, "data": {"url": "http://example.com/styles/app.css", "status": 200, "responseHeaders": {"Content-Type": "text/css"}}}
]`

	path := filepath.Join(t.TempDir(), "trace.json")
	if err := os.WriteFile(path, []byte(trace), 0600); err != nil {
		t.Fatalf("failed to write trace: %v", err)
	}
	return path
}

// TestRunAnalyzeCmdEndToEnd runs the analyze command against a real
// trace file and checks the written report.
func TestRunAnalyzeCmdEndToEnd(t *testing.T) {
	tracePath := writeTestTrace(t)
	outputPath := filepath.Join(t.TempDir(), "report.txt")

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"analyze", "--no-save", "-o", outputPath, tracePath})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	out := string(content)
	if !strings.Contains(out, "HINTSCAN REPORT") {
		t.Error("expected report banner")
	}
	if !strings.Contains(out, "Cache Control") {
		t.Errorf("expected cache control hint in report, got:\n%s", out)
	}
}

// TestRunAnalyzeCmdSavesToDatabase checks that analyses land in the
// history database.
func TestRunAnalyzeCmdSavesToDatabase(t *testing.T) {
	tracePath := writeTestTrace(t)
	dbDir := t.TempDir()
	outputPath := filepath.Join(t.TempDir(), "report.txt")

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"analyze", "--db-dir", dbDir, "-o", outputPath, tracePath})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dbDir, "hintscan.db")); os.IsNotExist(err) {
		t.Error("expected database file to be created")
	}
}

// TestRunAnalyzeCmdNoArgs tests analyze with no arguments.
func TestRunAnalyzeCmdNoArgs(t *testing.T) {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"analyze"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for no arguments")
	}
	if !strings.Contains(err.Error(), "no trace") {
		t.Errorf("expected 'no trace' error, got: %v", err)
	}
}

// TestRunAnalyzeCmdConflictingFormats tests analyze with both --json
// and --markdown.
func TestRunAnalyzeCmdConflictingFormats(t *testing.T) {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"analyze", "--json", "--markdown", "trace.json"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for conflicting report formats")
	}
	if !strings.Contains(err.Error(), "report format") {
		t.Errorf("expected report format error, got: %v", err)
	}
}
