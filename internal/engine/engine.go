package engine

import (
	"context"
	"log/slog"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// Engine runs registered rules over a stream of trace records.
//
// Design decision: Dispatch is strictly sequential. The rule API grew
// out of a single-threaded worker model, and several built-in rules
// carry per-page accumulated state that assumes records arrive in
// trace order. Parallelism across traces belongs to the batch
// processor, which gives every trace its own engine.
type Engine struct {
	// rules is the registry snapshot taken at construction. The
	// registry is append-only, so rules registered after New join the
	// next engine, not this one; indexing concerns by position stays
	// valid for the engine's lifetime.
	rules []hintlet.Rule

	// emitter is shared by all rules of this engine.
	emitter *hintlet.Emitter

	// logger is used for structured logging during dispatch.
	logger *slog.Logger

	// concerns caches, per rule index, the set of record types the
	// rule wants. nil entry = all records.
	concerns []map[model.EventType]bool
}

// Option is a function that configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine dispatching to the registry's rules and
// emitting through the given sink.
func New(registry *hintlet.Registry, sink hintlet.Sink, opts ...Option) *Engine {
	e := &Engine{
		rules:   registry.Rules(),
		emitter: hintlet.NewEmitter(sink),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	// Precompute concern sets once; Concerns() is fixed per rule.
	e.concerns = make([]map[model.EventType]bool, len(e.rules))
	for i, rule := range e.rules {
		types := rule.Concerns()
		if len(types) == 0 {
			continue
		}
		set := make(map[model.EventType]bool, len(types))
		for _, t := range types {
			set[t] = true
		}
		e.concerns[i] = set
	}

	return e
}

// Dispatch feeds one record to every rule whose concerns match.
//
// Rule errors are logged and dispatch continues with the next rule:
// one misbehaving rule must not silence the others. Context
// cancellation, by contrast, stops dispatch immediately.
func (e *Engine) Dispatch(ctx context.Context, record *model.Record) error {
	for i, rule := range e.rules {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if set := e.concerns[i]; set != nil && !set[record.Type] {
			continue
		}

		if err := rule.OnRecord(ctx, record, e.emitter); err != nil {
			e.logger.Warn("rule failed on record",
				"rule", rule.Name(),
				"record", record.Sequence,
				"type", record.Type.String(),
				"error", err,
			)
		}
	}
	return nil
}

// Analyze dispatches a full slice of records in order.
// Returns the context error when cancelled mid-trace; the caller marks
// the report as timed out in that case.
func (e *Engine) Analyze(ctx context.Context, records []*model.Record) error {
	e.logger.Debug("starting analysis",
		"records", len(records),
		"rules", len(e.rules),
	)

	for _, record := range records {
		if err := e.Dispatch(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Run consumes records from a channel until it closes or the context
// is cancelled. This is the worker-loop entry point for hosts that
// stream records instead of handing over a parsed trace.
func (e *Engine) Run(ctx context.Context, records <-chan *model.Record) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record, ok := <-records:
			if !ok {
				return nil
			}
			if err := e.Dispatch(ctx, record); err != nil {
				return err
			}
		}
	}
}
