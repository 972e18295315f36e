package hintlet

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hintscan/hintscan/internal/model"
)

// recordingSink captures sent envelopes for assertions.
type recordingSink struct {
	envelopes []model.Envelope
	err       error
}

func (s *recordingSink) Send(_ context.Context, envelope model.Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.envelopes = append(s.envelopes, envelope)
	return nil
}

// TestEmitterAddHint tests hint emission through the sink.
func TestEmitterAddHint(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	emitter := NewEmitter(sink)

	err := emitter.AddHint(context.Background(), "cache_control", 1500, "missing header", 7, model.SeverityWarning)
	if err != nil {
		t.Fatalf("AddHint: %v", err)
	}

	if len(sink.envelopes) != 1 {
		t.Fatalf("got %d envelopes, expected 1", len(sink.envelopes))
	}
	env := sink.envelopes[0]
	if env.Type != model.EnvelopeHint {
		t.Errorf("envelope type = %d, expected %d", env.Type, model.EnvelopeHint)
	}
	hint, ok := env.Payload.(model.Hint)
	if !ok {
		t.Fatalf("payload = %#v, expected model.Hint", env.Payload)
	}
	if hint.Rule != "cache_control" || hint.Timestamp != 1500 || hint.RefRecord != 7 {
		t.Errorf("unexpected hint: %+v", hint)
	}
}

// TestEmitterMissingTimestamp tests that an unplaceable timestamp
// fails before anything is sent.
func TestEmitterMissingTimestamp(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name      string
		timestamp float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := &recordingSink{}
			emitter := NewEmitter(sink)

			err := emitter.AddHint(context.Background(), "rule", tt.timestamp, "desc", 1, model.SeverityInfo)
			if !errors.Is(err, ErrMissingTimestamp) {
				t.Fatalf("err = %v, expected ErrMissingTimestamp", err)
			}
			if len(sink.envelopes) != 0 {
				t.Errorf("sink received %d envelopes, expected 0 (error must precede send)", len(sink.envelopes))
			}
		})
	}
}

// TestEmitterTraceStartTimestamp tests that a hint at trace time 0 ms
// emits normally.
func TestEmitterTraceStartTimestamp(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	emitter := NewEmitter(sink)

	if err := emitter.AddHint(context.Background(), "rule", 0, "desc", 0, model.SeverityWarning); err != nil {
		t.Fatalf("AddHint at time 0: %v", err)
	}
	if len(sink.envelopes) != 1 {
		t.Fatalf("sink received %d envelopes, expected 1", len(sink.envelopes))
	}
}

// TestEmitterDefaultSeverity tests that AddHintDefault emits INFO.
func TestEmitterDefaultSeverity(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	emitter := NewEmitter(sink)

	if err := emitter.AddHintDefault(context.Background(), "rule", 10, "desc", 0); err != nil {
		t.Fatalf("AddHintDefault: %v", err)
	}

	hint := sink.envelopes[0].Payload.(model.Hint)
	if hint.Severity != model.SeverityInfo {
		t.Errorf("Severity = %v, expected SeverityInfo", hint.Severity)
	}
}

// TestEmitterLog tests type-1 log envelope emission.
func TestEmitterLog(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	emitter := NewEmitter(sink)

	if err := emitter.Log(context.Background(), "rule loaded"); err != nil {
		t.Fatalf("Log: %v", err)
	}

	env := sink.envelopes[0]
	if env.Type != model.EnvelopeLog {
		t.Errorf("envelope type = %d, expected %d", env.Type, model.EnvelopeLog)
	}
	if msg, _ := env.Payload.(string); msg != "rule loaded" {
		t.Errorf("payload = %#v, expected %q", env.Payload, "rule loaded")
	}
}

// TestEmitterSinkError tests that sink errors are surfaced without retry.
func TestEmitterSinkError(t *testing.T) {
	t.Parallel()

	sinkErr := errors.New("channel closed")
	emitter := NewEmitter(&recordingSink{err: sinkErr})

	if err := emitter.Log(context.Background(), "x"); !errors.Is(err, sinkErr) {
		t.Errorf("err = %v, expected sink error", err)
	}
}
