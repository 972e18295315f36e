package rules

import (
	"context"
	"fmt"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
	"github.com/hintscan/hintscan/internal/symbol"
)

// Default event duration thresholds in milliseconds.
const (
	// DefaultLongDurationWarnMs flags events that block the main
	// thread long enough to drop frames.
	DefaultLongDurationWarnMs = 100

	// DefaultLongDurationCriticalMs flags events long enough that the
	// page feels hung.
	DefaultLongDurationCriticalMs = 2000
)

// LongDurationRule flags events whose duration crosses a threshold.
// Network records are skipped: their duration is dominated by the wire,
// not the main thread.
//
// When the rule has a symbol map and the record carries a stack trace,
// the hint names the resymbolized top frame.
type LongDurationRule struct {
	warnMs     float64
	criticalMs float64
	symbols    *symbol.Map
}

// LongDurationOption configures a LongDurationRule.
type LongDurationOption func(*LongDurationRule)

// WithDurationThresholds overrides the warning and critical duration
// thresholds in milliseconds. Non-positive values keep the defaults.
func WithDurationThresholds(warnMs, criticalMs float64) LongDurationOption {
	return func(r *LongDurationRule) {
		if warnMs > 0 {
			r.warnMs = warnMs
		}
		if criticalMs > 0 {
			r.criticalMs = criticalMs
		}
	}
}

// WithSymbolMap attaches a symbol map for frame resymbolization.
// A nil map is allowed and resolves nothing.
func WithSymbolMap(m *symbol.Map) LongDurationOption {
	return func(r *LongDurationRule) {
		r.symbols = m
	}
}

// NewLongDurationRule creates the long_duration rule.
func NewLongDurationRule(opts ...LongDurationOption) *LongDurationRule {
	r := &LongDurationRule{
		warnMs:     DefaultLongDurationWarnMs,
		criticalMs: DefaultLongDurationCriticalMs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *LongDurationRule) Name() string {
	return "long_duration"
}

// Concerns returns nil: the rule inspects every record type.
func (r *LongDurationRule) Concerns() []model.EventType {
	return nil
}

// OnRecord flags the record when its duration crosses a threshold.
func (r *LongDurationRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	if record.IsNetworkRecord() {
		return nil
	}

	duration := record.Duration
	if duration < r.warnMs {
		return nil
	}

	severity := model.SeverityWarning
	if duration >= r.criticalMs {
		severity = model.SeverityCritical
	}

	// Durations under a second read better in milliseconds.
	var rendered string
	if duration < 1000 {
		rendered = hintlet.FormatMilliseconds(duration, 0)
	} else {
		rendered = hintlet.FormatSeconds(duration, 2)
	}

	description := fmt.Sprintf("Event %s lasted %s", record.Type, rendered)
	if frame, ok := record.TopFrame(); ok {
		description += " in " + r.symbols.FormatFrame(frame)
	}

	return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, severity)
}
