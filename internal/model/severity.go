package model

// Severity represents the advisory weight of a hint.
// Rules grade each hint so that reports and downstream consumers can
// prioritize what to fix first.
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons and sorting. The String()
// method provides human-readable output when needed. The zero value
// is SeverityInfo, which is also the documented default when a rule
// emits a hint without specifying a severity.
type Severity int

const (
	// SeverityInfo indicates informational hints with no measurable
	// performance cost. Examples: metadata present in images, cookies
	// attached to a single static resource.
	SeverityInfo Severity = iota

	// SeverityWarning indicates hints that likely cost real load time.
	// Examples: uncompressed text resources, missing caching headers,
	// layout bursts inside a single event loop turn.
	SeverityWarning

	// SeverityCritical indicates hints that almost certainly dominate
	// page performance. Examples: multi-second blocking events,
	// page weight far beyond budget.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// RuleInfo contains metadata about a rule including the impact of the
// problems it reports and the usual remediation.
type RuleInfo struct {
	Impact         string
	Recommendation string
}

// ruleInfoMapping maps rule names to their metadata.
// This centralized mapping ensures consistent advice across report
// formats without embedding prose in every rule implementation.
var ruleInfoMapping = map[string]RuleInfo{
	"cache_control": {
		Impact:         "Static resources without caching headers are re-downloaded on every visit, wasting bandwidth and delaying repeat views.",
		Recommendation: "Add Cache-Control with a long max-age (and an Expires header for older clients) to images, scripts, and stylesheets.",
	},
	"uncompressed": {
		Impact:         "Text resources served without compression transfer several times more bytes than necessary.",
		Recommendation: "Enable gzip (or a comparable Content-Encoding) for HTML, CSS, JavaScript, and JSON responses.",
	},
	"static_no_cookie": {
		Impact:         "Cookies attached to static resource requests inflate every request and defeat shared caches.",
		Recommendation: "Serve static assets from a cookieless domain or path.",
	},
	"total_bytes": {
		Impact:         "Heavy pages take longer to load on every connection and disproportionately hurt slow links.",
		Recommendation: "Reduce total page weight: compress, lazy-load, and remove unused resources.",
	},
	"long_duration": {
		Impact:         "Long-running events block the main thread and freeze the page for the user.",
		Recommendation: "Split long operations into smaller chunks or move work off the critical path.",
	},
	"frequent_layout": {
		Impact:         "Repeated synchronous layouts in one event loop turn indicate layout thrashing.",
		Recommendation: "Batch DOM reads and writes so the browser lays out the page once per frame.",
	},
	"domain_spread": {
		Impact:         "Every additional host referenced by a page costs a DNS lookup and a new connection.",
		Recommendation: "Consolidate resources onto fewer hostnames.",
	},
	"image_metadata": {
		Impact:         "Embedded EXIF metadata adds bytes that browsers never use for display.",
		Recommendation: "Strip metadata from images as part of the build or upload step.",
	},
}

// GetRuleInfo returns the metadata for a rule name.
// Returns a generic RuleInfo if the rule is not in the mapping, so
// externally registered rules still render sensibly in reports.
func GetRuleInfo(rule string) RuleInfo {
	if info, ok := ruleInfoMapping[rule]; ok {
		return info
	}
	return RuleInfo{
		Impact:         "See the hint description for details.",
		Recommendation: "Review the reported records and assess the cost.",
	}
}
