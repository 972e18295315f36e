package engine

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// CollectorSink accumulates envelopes into an analysis report.
// It is the sink used for local analysis where the report is rendered
// after the run instead of streamed to a host.
type CollectorSink struct {
	// report receives hints and log messages as they arrive.
	report *model.AnalysisReport

	// mu guards the report. The engine itself is sequential, but the
	// same collector may back several engines during batch runs of a
	// shared registry, so the sink stays safe on its own.
	mu sync.Mutex
}

// NewCollectorSink creates a sink that fills the given report.
func NewCollectorSink(report *model.AnalysisReport) *CollectorSink {
	return &CollectorSink{report: report}
}

// Send routes the envelope payload into the report.
func (s *CollectorSink) Send(_ context.Context, envelope model.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch envelope.Type {
	case model.EnvelopeLog:
		if msg, ok := envelope.Payload.(string); ok {
			s.report.AddLog(msg)
		}
	case model.EnvelopeHint:
		if hint, ok := envelope.Payload.(model.Hint); ok {
			s.report.AddHint(hint)
		}
	}
	return nil
}

// WriterSink streams envelopes as newline-delimited JSON.
// This is the postMessage analog for host processes: one envelope per
// line, fire-and-forget, no acknowledgment read back.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterSink creates a sink writing NDJSON envelopes to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

// Send encodes one envelope followed by a newline.
func (s *WriterSink) Send(_ context.Context, envelope model.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope)
}

// ChannelSink delivers envelopes to a Go channel.
// Useful for hosts embedding the engine in a larger program.
type ChannelSink struct {
	ch chan<- model.Envelope
}

// NewChannelSink creates a sink sending to ch.
// The caller owns the channel and its lifetime; the sink never closes it.
func NewChannelSink(ch chan<- model.Envelope) *ChannelSink {
	return &ChannelSink{ch: ch}
}

// Send delivers the envelope, honoring context cancellation so a
// stalled consumer cannot wedge the engine forever.
func (s *ChannelSink) Send(ctx context.Context, envelope model.Envelope) error {
	select {
	case s.ch <- envelope:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MultiSink fans each envelope out to several sinks.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because sinks carry envelopes, not raw bytes.
type MultiSink struct {
	sinks []hintlet.Sink
}

// NewMultiSink creates a sink that forwards to all given sinks.
// Forwarding stops at the first error.
func NewMultiSink(sinks ...hintlet.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Send forwards the envelope to every sink in order.
func (s *MultiSink) Send(ctx context.Context, envelope model.Envelope) error {
	for _, sink := range s.sinks {
		if err := sink.Send(ctx, envelope); err != nil {
			return err
		}
	}
	return nil
}
