package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/hintscan/hintscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation: type-safe tables, lists, code blocks, and
// GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeHints(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with analysis information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H1("Hintscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Trace File", "`" + report.TraceFile + "`"},
			{"Analyzed At", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
			{"Records", strconv.Itoa(report.RecordCount)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AnalysisReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟡 Warning", strconv.Itoa(report.WarningCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalHints()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasHints() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.AnalysisReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Hint Severity Distribution"),
		piechart.WithShowData(true),
	)

	if report.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(report.CriticalCount))
	}
	if report.WarningCount > 0 {
		chart.LabelAndIntValue("Warning", uint64(report.WarningCount))
	}
	if report.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(report.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AnalysisReport) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"Critical performance problems detected! %d critical hint(s) dominate page load time.",
			report.CriticalCount,
		)
	case report.WarningCount > 0:
		md.Warningf(
			"Performance problems detected. %d warning hint(s) likely cost real load time.",
			report.WarningCount,
		)
	case report.TotalHints() > 0:
		md.Note("Only informational hints detected.")
	default:
		md.Tip("No performance problems detected.")
	}
	md.PlainText("")
}

// writeHints writes all hints grouped by rule.
// Grouping by rule rather than severity reads better in Markdown: the
// shared impact and recommendation text appears once per rule.
func (w *MarkdownWriter) writeHints(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Hints")
	md.PlainText("")

	if !report.HasHints() {
		md.PlainText("No hints emitted.")
		md.PlainText("")
		return
	}

	byRule := report.HintsByRule()
	for _, rule := range report.RuleNames {
		hints, ok := byRule[rule]
		if !ok {
			continue
		}
		delete(byRule, rule)
		w.writeRuleSection(md, rule, hints)
	}

	// Hints from rules outside the registered list (externally
	// registered rules) still render.
	for rule, hints := range byRule {
		w.writeRuleSection(md, rule, hints)
	}
}

// writeRuleSection writes one rule's hints with its shared advice.
func (w *MarkdownWriter) writeRuleSection(md *markdown.Markdown, rule string, hints []model.Hint) {
	md.H3(humanizeRule(rule))
	md.PlainText("")

	info := model.GetRuleInfo(rule)
	md.PlainTextf("**Impact:** %s", info.Impact)
	md.PlainText("")
	md.PlainTextf("**Recommendation:** %s", info.Recommendation)
	md.PlainText("")

	rows := make([][]string, len(hints))
	for i, h := range hints {
		record := "-"
		if h.RefRecord >= 0 {
			record = "#" + strconv.Itoa(h.RefRecord)
		}
		rows[i] = []string{
			h.SeverityText,
			fmt.Sprintf("%.0fms", h.Timestamp),
			record,
			truncateString(h.Description, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Time", "Record", "Description"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by hintscan*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
