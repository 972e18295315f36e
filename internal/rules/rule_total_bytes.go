package rules

import (
	"context"
	"fmt"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// Default page weight thresholds in bytes.
const (
	// DefaultTotalBytesWarn is the page weight that earns a warning.
	DefaultTotalBytesWarn int64 = 500 * 1024

	// DefaultTotalBytesCritical is the page weight that earns a
	// critical hint.
	DefaultTotalBytesCritical int64 = 1024 * 1024
)

// TotalBytesRule flags pages whose cumulative downloaded bytes cross a
// weight threshold. Each threshold fires at most once per page; the
// counter resets on page transitions.
type TotalBytesRule struct {
	warnBytes     int64
	criticalBytes int64

	total        int64
	warnFired    bool
	criticalDone bool
}

// TotalBytesOption configures a TotalBytesRule.
type TotalBytesOption func(*TotalBytesRule)

// WithTotalBytesThresholds overrides the warning and critical byte
// thresholds. Non-positive values keep the defaults.
func WithTotalBytesThresholds(warn, critical int64) TotalBytesOption {
	return func(r *TotalBytesRule) {
		if warn > 0 {
			r.warnBytes = warn
		}
		if critical > 0 {
			r.criticalBytes = critical
		}
	}
}

// NewTotalBytesRule creates the total_bytes rule.
func NewTotalBytesRule(opts ...TotalBytesOption) *TotalBytesRule {
	r := &TotalBytesRule{
		warnBytes:     DefaultTotalBytesWarn,
		criticalBytes: DefaultTotalBytesCritical,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *TotalBytesRule) Name() string {
	return "total_bytes"
}

// Concerns returns the record types the rule inspects.
func (r *TotalBytesRule) Concerns() []model.EventType {
	return []model.EventType{
		model.EventNetworkResourceFinish,
		model.EventPageTransition,
	}
}

// OnRecord accumulates resource sizes and emits when a threshold is
// first crossed.
func (r *TotalBytesRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	if record.Type == model.EventPageTransition {
		r.total = 0
		r.warnFired = false
		r.criticalDone = false
		return nil
	}

	if record.Data.ContentLength > 0 {
		r.total += record.Data.ContentLength
	}

	if !r.criticalDone && r.total >= r.criticalBytes {
		r.criticalDone = true
		r.warnFired = true // the warning threshold is implied
		description := fmt.Sprintf(
			"Page has downloaded %d KB so far, past the %d KB critical threshold",
			r.total/1024, r.criticalBytes/1024)
		return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityCritical)
	}

	if !r.warnFired && r.total >= r.warnBytes {
		r.warnFired = true
		description := fmt.Sprintf(
			"Page has downloaded %d KB so far, past the %d KB threshold",
			r.total/1024, r.warnBytes/1024)
		return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityWarning)
	}

	return nil
}
