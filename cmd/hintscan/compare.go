package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hintscan/hintscan/internal/config"
	"github.com/hintscan/hintscan/internal/database"
	"github.com/hintscan/hintscan/internal/model"
)

// Constants for trend direction and summary messages.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
	noHintsMessage = "No hints"
)

// NewCompareCmd creates the compare command.
// This command compares analysis results with historical data stored in
// the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [trace-file]",
		Short: "Compare analysis results with historical data",
		Long: `Compare displays differences between the current and previous analysis
of the same trace file.

This command retrieves historical analysis data from the database and shows:
- New hints that appeared since the last analysis
- Resolved hints that are no longer emitted
- Per-rule and per-severity count changes

The comparison requires at least two analyses of the trace in the
database. Use 'hintscan analyze' to analyze traces and save results.

Examples:
  # Compare latest two analyses for a trace
  hintscan compare trace.json

  # List all analysis history for a trace
  hintscan compare --list trace.json

  # Compare with a specific historical analysis by ID
  hintscan compare --with-id 5 trace.json

  # Output comparison in JSON format
  hintscan compare --json trace.json

  # List all analyzed traces in the database
  hintscan compare --list-traces`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List analysis history for the specified trace file")
	cmd.Flags().BoolP("list-traces", "L", false,
		"List all analyzed trace files in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific analysis by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	// Database location
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listTraces, err := cmd.Flags().GetBool("list-traces")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database (unless --list-traces)
	var traceFile string
	if !listTraces {
		if len(args) == 0 {
			return errors.New("trace file is required (use --list-traces to see analyzed traces)")
		}
		traceFile = args[0]
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listTraces {
		return listAnalyzedTraces(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAnalysisHistory(ctx, db, traceFile)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, traceFile, withID, jsonOutput)
}

// listAnalyzedTraces lists all trace files with analyses in the database.
func listAnalyzedTraces(ctx context.Context, db *database.HintDB) error {
	traces, err := db.ListTraceFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list traces: %w", err)
	}

	if len(traces) == 0 {
		fmt.Println("No analyzed traces found in the database.")
		fmt.Println("\nUse 'hintscan analyze <trace-file>' to analyze a trace.")
		return nil
	}

	fmt.Printf("Analyzed traces (%d):\n\n", len(traces))
	for _, trace := range traces {
		fmt.Printf("  • %s\n", trace)
	}
	fmt.Println("\nUse 'hintscan compare --list <trace-file>' to see analysis history for a trace.")

	return nil
}

// listAnalysisHistory lists all analyses for a specific trace file.
func listAnalysisHistory(ctx context.Context, db *database.HintDB, traceFile string) error {
	analyses, err := db.ListAnalyses(ctx, traceFile)
	if err != nil {
		return fmt.Errorf("failed to get analysis history: %w", err)
	}

	if len(analyses) == 0 {
		fmt.Printf("No analysis history found for %s\n", traceFile)
		fmt.Println("\nUse 'hintscan analyze' to analyze this trace.")
		return nil
	}

	fmt.Printf("Analysis history for %s (%d analyses):\n\n", traceFile, len(analyses))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Records", "Hint Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range analyses {
		fmt.Printf("  %-6d  %-20s  %-8d  %s\n",
			meta.ID,
			meta.AnalyzedAt.Format("2006-01-02 15:04:05"),
			meta.RecordCount,
			formatHintSummary(meta.SeveritySummary),
		)
	}

	fmt.Println("\nUse 'hintscan compare <trace-file>' to compare the latest two analyses.")
	fmt.Println("Use 'hintscan compare --with-id <id> <trace-file>' to compare with a specific analysis.")

	return nil
}

// formatHintSummary formats the severity summary map into a short string.
func formatHintSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary[model.SeverityCritical.String()]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary[model.SeverityWarning.String()]; v > 0 {
		parts = append(parts, fmt.Sprintf("W:%d", v))
	}
	if v := summary[model.SeverityInfo.String()]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noHintsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between analyses.
func runComparison(ctx context.Context, db *database.HintDB, traceFile string, withID int64, jsonOutput bool) error {
	analyses, err := db.ListAnalyses(ctx, traceFile)
	if err != nil {
		return fmt.Errorf("failed to get analysis history: %w", err)
	}

	if len(analyses) == 0 {
		return fmt.Errorf("no analysis history found for %s", traceFile)
	}

	if len(analyses) < 2 && withID == 0 {
		return fmt.Errorf("at least 2 analyses are required for comparison (found %d)", len(analyses))
	}

	// Latest analysis is always the current one
	current, err := db.GetReport(ctx, analyses[0].ID)
	if err != nil {
		return fmt.Errorf("failed to load latest analysis: %w", err)
	}

	var previous *model.AnalysisReport
	if withID > 0 {
		previous, err = db.GetReport(ctx, withID)
		if err != nil {
			return fmt.Errorf("failed to get analysis with ID %d: %w", withID, err)
		}
		if previous == nil {
			return fmt.Errorf("analysis with ID %d not found", withID)
		}
		// Validate that the analysis belongs to the same trace
		if previous.TraceFile != traceFile {
			return fmt.Errorf("analysis ID %d belongs to %s, not %s", withID, previous.TraceFile, traceFile)
		}
	} else {
		previous, err = db.GetReport(ctx, analyses[1].ID)
		if err != nil {
			return fmt.Errorf("failed to load previous analysis: %w", err)
		}
	}

	comparison := compareReports(previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two analyses.
type ComparisonResult struct {
	// TraceFile is the analyzed trace file.
	TraceFile string `json:"trace_file"`

	// PreviousAnalysis contains metadata about the previous analysis.
	PreviousAnalysis AnalysisSummary `json:"previous_analysis"`

	// CurrentAnalysis contains metadata about the current analysis.
	CurrentAnalysis AnalysisSummary `json:"current_analysis"`

	// NewHints contains hints that are new in the current analysis.
	NewHints []model.Hint `json:"new_hints,omitempty"`

	// ResolvedHints contains hints emitted previously but not anymore.
	ResolvedHints []model.Hint `json:"resolved_hints,omitempty"`

	// UnchangedCount is the number of hints present in both analyses.
	UnchangedCount int `json:"unchanged_count"`

	// Trend describes the overall change in hint load.
	Trend Trend `json:"trend"`
}

// AnalysisSummary contains metadata about one analysis for display.
type AnalysisSummary struct {
	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// TotalHints is the total number of hints in this analysis.
	TotalHints int `json:"total_hints"`

	// CriticalCount is the number of critical hints.
	CriticalCount int `json:"critical_count"`

	// WarningCount is the number of warning hints.
	WarningCount int `json:"warning_count"`

	// InfoCount is the number of informational hints.
	InfoCount int `json:"info_count"`
}

// Trend describes the change in hint load between analyses.
type Trend struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical hint count.
	CriticalDelta int `json:"critical_delta"`

	// WarningDelta is the change in warning hint count.
	WarningDelta int `json:"warning_delta"`

	// InfoDelta is the change in informational hint count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two analysis reports.
func compareReports(previous, current *model.AnalysisReport) *ComparisonResult {
	result := &ComparisonResult{
		TraceFile:        current.TraceFile,
		PreviousAnalysis: summarizeReport(previous),
		CurrentAnalysis:  summarizeReport(current),
	}

	// Hints carry unique IDs per emission, so matching is by content:
	// the same rule complaining about the same thing at the same record.
	previousHints := make(map[string]model.Hint)
	currentHints := make(map[string]model.Hint)

	for _, h := range previous.Hints {
		previousHints[hintKey(h)] = h
	}
	for _, h := range current.Hints {
		currentHints[hintKey(h)] = h
	}

	for key, hint := range currentHints {
		if _, exists := previousHints[key]; !exists {
			result.NewHints = append(result.NewHints, hint)
		}
	}

	for key, hint := range previousHints {
		if _, exists := currentHints[key]; !exists {
			result.ResolvedHints = append(result.ResolvedHints, hint)
		} else {
			result.UnchangedCount++
		}
	}

	result.Trend = calculateTrend(result.PreviousAnalysis, result.CurrentAnalysis)

	return result
}

// summarizeReport extracts comparison metadata from a report.
func summarizeReport(report *model.AnalysisReport) AnalysisSummary {
	return AnalysisSummary{
		AnalyzedAt:    report.AnalyzedAt,
		TotalHints:    report.TotalHints(),
		CriticalCount: report.CriticalCount,
		WarningCount:  report.WarningCount,
		InfoCount:     report.InfoCount,
	}
}

// hintKey generates a content key for a hint for comparison purposes.
func hintKey(h model.Hint) string {
	return h.Rule + "|" + h.Description + "|" + strconv.Itoa(h.RefRecord)
}

// calculateTrend calculates the change in hint load between analyses.
func calculateTrend(previous, current AnalysisSummary) Trend {
	trend := Trend{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		WarningDelta:  current.WarningCount - previous.WarningCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Critical hints dominate the weighted score; info hints barely move it
	previousScore := previous.CriticalCount*100 + previous.WarningCount*10 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.WarningCount*10 + current.InfoCount

	switch {
	case currentScore < previousScore:
		trend.Direction = trendImproved
	case currentScore > previousScore:
		trend.Direction = trendWorsened
	default:
		trend.Direction = trendUnchanged
	}

	return trend
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable form.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Analysis Comparison: %s\n", result.TraceFile)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nTrend: %s\n", formatTrendDirection(result.Trend.Direction))

	fmt.Printf("\nPrevious analysis: %s\n", result.PreviousAnalysis.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current analysis:  %s\n", result.CurrentAnalysis.AnalyzedAt.Format("2006-01-02 15:04:05"))

	fmt.Println("\nHint Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousAnalysis.CriticalCount, result.CurrentAnalysis.CriticalCount,
		formatDelta(result.Trend.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Warning",
		result.PreviousAnalysis.WarningCount, result.CurrentAnalysis.WarningCount,
		formatDelta(result.Trend.WarningDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousAnalysis.InfoCount, result.CurrentAnalysis.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousAnalysis.TotalHints, result.CurrentAnalysis.TotalHints,
		formatDelta(result.CurrentAnalysis.TotalHints-result.PreviousAnalysis.TotalHints))

	if len(result.NewHints) > 0 {
		fmt.Printf("\nNew Hints (%d):\n", len(result.NewHints))
		for _, h := range result.NewHints {
			fmt.Printf("  [+] [%s] %s: %s\n", h.SeverityText, h.Rule, h.Description)
		}
	}

	if len(result.ResolvedHints) > 0 {
		fmt.Printf("\nResolved Hints (%d):\n", len(result.ResolvedHints))
		for _, h := range result.ResolvedHints {
			fmt.Printf("  [-] [%s] %s: %s\n", h.SeverityText, h.Rule, h.Description)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d hints\n", result.UnchangedCount)
	}

	return nil
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (hint load decreased)"
	case trendWorsened:
		return "WORSENED (hint load increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
