package model

import "time"

// AnalysisReport is the result of running the rule engine over a trace.
// It aggregates the hints and log messages collected from the envelope
// stream, plus enough metadata for history comparison.
//
// Design decision: The report stores the hints it received rather than
// re-deriving them from records, because hints are the product of the
// analysis; the raw trace is not persisted.
type AnalysisReport struct {
	// TraceFile is the path of the analyzed trace.
	TraceFile string `json:"trace_file"`

	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// RecordCount is the number of records dispatched to rules.
	RecordCount int `json:"record_count"`

	// RuleNames lists the rules that ran, in registration order.
	// Duplicate names appear as often as they were registered.
	RuleNames []string `json:"rule_names,omitempty"`

	// === Severity Summary ===

	// CriticalCount is the number of critical hints.
	CriticalCount int `json:"critical_count"`

	// WarningCount is the number of warning hints.
	WarningCount int `json:"warning_count"`

	// InfoCount is the number of informational hints.
	InfoCount int `json:"info_count"`

	// === Collected Output ===

	// Hints contains every hint emitted, in emission order.
	Hints []Hint `json:"hints,omitempty"`

	// Logs contains the log messages emitted by rules, in order.
	Logs []string `json:"logs,omitempty"`

	// === Analysis State ===

	// TimedOut is true when analysis was cancelled before the trace
	// was fully dispatched.
	TimedOut bool `json:"timed_out"`

	// Error is the message of a fatal analysis error, if any.
	Error string `json:"error,omitempty"`
}

// NewAnalysisReport creates an empty report for the given trace file.
func NewAnalysisReport(traceFile string) *AnalysisReport {
	return &AnalysisReport{
		TraceFile:  traceFile,
		AnalyzedAt: time.Now(),
	}
}

// AddHint appends a hint and updates the severity counters.
// Hints are not deduplicated: every emission is an advisory in its own
// right and emission order is preserved.
func (r *AnalysisReport) AddHint(hint Hint) {
	r.Hints = append(r.Hints, hint)

	switch hint.Severity {
	case SeverityCritical:
		r.CriticalCount++
	case SeverityWarning:
		r.WarningCount++
	case SeverityInfo:
		r.InfoCount++
	}
}

// AddLog appends a rule log message.
func (r *AnalysisReport) AddLog(message string) {
	r.Logs = append(r.Logs, message)
}

// TotalHints returns the total number of hints.
func (r *AnalysisReport) TotalHints() int {
	return len(r.Hints)
}

// HasHints returns true if any hints were emitted.
func (r *AnalysisReport) HasHints() bool {
	return len(r.Hints) > 0
}

// HintsBySeverity returns the hints matching the given severity,
// preserving emission order.
func (r *AnalysisReport) HintsBySeverity(severity Severity) []Hint {
	var result []Hint
	for _, h := range r.Hints {
		if h.Severity == severity {
			result = append(result, h)
		}
	}
	return result
}

// HintsByRule groups hints by emitting rule name.
func (r *AnalysisReport) HintsByRule() map[string][]Hint {
	grouped := make(map[string][]Hint)
	for _, h := range r.Hints {
		grouped[h.Rule] = append(grouped[h.Rule], h)
	}
	return grouped
}

// SeveritySummary returns the severity counters keyed by severity text.
// Used by the database layer for the history listing.
func (r *AnalysisReport) SeveritySummary() map[string]int {
	return map[string]int{
		SeverityCritical.String(): r.CriticalCount,
		SeverityWarning.String():  r.WarningCount,
		SeverityInfo.String():     r.InfoCount,
	}
}
