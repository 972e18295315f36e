package rules

import (
	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/symbol"
)

// DefaultRules constructs the built-in rule set, honoring the rule
// pack's disabled list and threshold overrides. The symbol map may be
// nil; only the long_duration rule uses it.
//
// Threshold keys per rule:
//
//	uncompressed:    min_bytes
//	total_bytes:     warn_bytes, critical_bytes
//	long_duration:   warn_ms, critical_ms
//	frequent_layout: window_ms, count
//	domain_spread:   max_hosts
func DefaultRules(settings Settings, symbols *symbol.Map) []hintlet.Rule {
	all := []hintlet.Rule{
		NewCacheControlRule(),
		NewUncompressedRule(
			WithMinCompressSize(int64(settings.Threshold("uncompressed", "min_bytes", DefaultMinCompressSize))),
		),
		NewStaticNoCookieRule(),
		NewTotalBytesRule(
			WithTotalBytesThresholds(
				int64(settings.Threshold("total_bytes", "warn_bytes", float64(DefaultTotalBytesWarn))),
				int64(settings.Threshold("total_bytes", "critical_bytes", float64(DefaultTotalBytesCritical))),
			),
		),
		NewLongDurationRule(
			WithDurationThresholds(
				settings.Threshold("long_duration", "warn_ms", DefaultLongDurationWarnMs),
				settings.Threshold("long_duration", "critical_ms", DefaultLongDurationCriticalMs),
			),
			WithSymbolMap(symbols),
		),
		NewFrequentLayoutRule(
			WithLayoutBurst(
				settings.Threshold("frequent_layout", "window_ms", DefaultLayoutWindowMs),
				int(settings.Threshold("frequent_layout", "count", DefaultLayoutBurstCount)),
			),
		),
		NewDomainSpreadRule(
			WithMaxResourceHosts(int(settings.Threshold("domain_spread", "max_hosts", DefaultMaxResourceHosts))),
		),
		NewImageMetadataRule(),
	}

	enabled := make([]hintlet.Rule, 0, len(all))
	for _, r := range all {
		if settings.IsDisabled(r.Name()) {
			continue
		}
		enabled = append(enabled, r)
	}
	return enabled
}
