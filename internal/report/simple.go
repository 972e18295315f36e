package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/hintscan/hintscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with severity
// indicators and clear section formatting.
//
// Design decision: Plain text with ASCII formatting rather than ANSI
// colors, so the output works in all terminals and pipes cleanly to
// files and other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no hints are shown.
	showEmpty bool

	// verbose enables impact and recommendation text per rule.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with rule impact and
// recommendation text.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeHints(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with analysis information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         HINTSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Trace File:    %s\n", report.TraceFile))
	sb.WriteString(fmt.Sprintf("Analyzed At:   %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Records:       %d\n", report.RecordCount))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:        TIMED OUT (partial results)\n")
	case report.Error != "":
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n", report.Error))
	default:
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", report.CriticalCount))
	sb.WriteString(fmt.Sprintf("  WARNING:  %d\n", report.WarningCount))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", report.InfoCount))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:    %d hints\n", report.TotalHints()))
	sb.WriteString("\n")
}

// writeHints writes all hints grouped by severity, critical first.
func (w *SimpleWriter) writeHints(sb *strings.Builder, report *model.AnalysisReport) {
	if !report.HasHints() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("HINTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityWarning,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		hints := report.HintsBySeverity(severity)
		if len(hints) == 0 && !w.showEmpty {
			continue
		}

		w.writeHintsForSeverity(sb, severity, hints)
	}
}

// writeHintsForSeverity writes hints of a specific severity level.
func (w *SimpleWriter) writeHintsForSeverity(sb *strings.Builder, severity model.Severity, hints []model.Hint) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(hints) == 0 {
		sb.WriteString("  No hints\n\n")
		return
	}

	for _, hint := range hints {
		sb.WriteString(fmt.Sprintf("  * [%s] %s\n", humanizeRule(hint.Rule), hint.Description))
		sb.WriteString(fmt.Sprintf("    At: %.0fms", hint.Timestamp))
		if hint.RefRecord >= 0 {
			sb.WriteString(fmt.Sprintf("  Record: #%d", hint.RefRecord))
		}
		sb.WriteString("\n")

		if w.verbose {
			info := model.GetRuleInfo(hint.Rule)
			sb.WriteString(fmt.Sprintf("    Impact: %s\n", info.Impact))
			sb.WriteString(fmt.Sprintf("    Fix: %s\n", info.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by hintscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
