package rules

import (
	"context"
	"fmt"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// Default layout burst parameters.
const (
	// DefaultLayoutWindowMs is the sliding window width in milliseconds.
	DefaultLayoutWindowMs = 1000

	// DefaultLayoutBurstCount is the number of layout passes within the
	// window that counts as a burst.
	DefaultLayoutBurstCount = 10
)

// FrequentLayoutRule flags bursts of synchronous layout passes, the
// usual symptom of layout thrash (interleaved style reads and writes).
//
// The rule keeps a sliding window of layout timestamps. It fires once
// when the window fills past the burst count and arms again only after
// the window drains, so one sustained thrash produces one hint rather
// than one per layout. The window resets on page transitions.
type FrequentLayoutRule struct {
	windowMs   float64
	burstCount int

	times []float64
	fired bool
}

// FrequentLayoutOption configures a FrequentLayoutRule.
type FrequentLayoutOption func(*FrequentLayoutRule)

// WithLayoutBurst overrides the window width in milliseconds and the
// burst count. Non-positive values keep the defaults.
func WithLayoutBurst(windowMs float64, count int) FrequentLayoutOption {
	return func(r *FrequentLayoutRule) {
		if windowMs > 0 {
			r.windowMs = windowMs
		}
		if count > 0 {
			r.burstCount = count
		}
	}
}

// NewFrequentLayoutRule creates the frequent_layout rule.
func NewFrequentLayoutRule(opts ...FrequentLayoutOption) *FrequentLayoutRule {
	r := &FrequentLayoutRule{
		windowMs:   DefaultLayoutWindowMs,
		burstCount: DefaultLayoutBurstCount,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *FrequentLayoutRule) Name() string {
	return "frequent_layout"
}

// Concerns returns the record types the rule inspects.
func (r *FrequentLayoutRule) Concerns() []model.EventType {
	return []model.EventType{
		model.EventLayout,
		model.EventPageTransition,
	}
}

// OnRecord maintains the layout window and flags bursts.
func (r *FrequentLayoutRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	if record.Type == model.EventPageTransition {
		r.times = r.times[:0]
		r.fired = false
		return nil
	}

	r.times = append(r.times, record.Time)

	// Drop timestamps that fell out of the window.
	cutoff := record.Time - r.windowMs
	start := 0
	for start < len(r.times) && r.times[start] < cutoff {
		start++
	}
	r.times = r.times[start:]

	if len(r.times) < r.burstCount {
		r.fired = false
		return nil
	}
	if r.fired {
		return nil
	}
	r.fired = true

	description := fmt.Sprintf(
		"%d layout passes within %s suggest layout thrash; batch style reads and writes",
		len(r.times), hintlet.FormatMilliseconds(r.windowMs, 0))
	return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityWarning)
}
