package hintlet

import (
	"context"
	"errors"
	"math"

	"github.com/hintscan/hintscan/internal/model"
)

// ErrMissingTimestamp is returned by AddHint when the hint timestamp
// is NaN or negative and so cannot be placed on the trace timeline.
// The check runs before anything is sent, so a sink never sees such a
// hint. Zero is a valid timestamp: the first record of a trace sits
// at 0 ms.
var ErrMissingTimestamp = errors.New("hint timestamp cannot be placed on the timeline")

// Sink is the message-send primitive the emitter writes envelopes to.
// Sends are one-way: implementations must not block indefinitely, and
// no acknowledgment or retry happens at this layer. Delivery guarantees
// belong to the host that supplied the sink.
type Sink interface {
	// Send delivers one envelope. Errors are reported to the caller
	// but the emitter does not retry.
	Send(ctx context.Context, envelope model.Envelope) error
}

// RefNone marks a hint that aggregates over many records rather than
// pointing at one.
const RefNone = -1

// Emitter is the API surface rules use to produce output.
// One emitter is shared by all rules of an engine run; it is not safe
// for concurrent use, matching the engine's sequential dispatch.
type Emitter struct {
	sink Sink
}

// NewEmitter creates an emitter that writes to the given sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

// AddHint constructs a hint and sends it as a type-2 envelope.
//
// An unplaceable timestamp (NaN or negative) is an error raised
// synchronously before any send: hints describe a moment in the
// trace. All other fields have silent fallbacks (severity defaults to
// INFO via its zero value).
func (e *Emitter) AddHint(ctx context.Context, rule string, timestamp float64, description string, refRecord int, severity model.Severity) error {
	if math.IsNaN(timestamp) || timestamp < 0 {
		return ErrMissingTimestamp
	}

	hint := model.NewHint(rule, timestamp, description, refRecord, severity)
	return e.sink.Send(ctx, model.NewHintEnvelope(hint))
}

// AddHintDefault emits a hint with the default INFO severity.
func (e *Emitter) AddHintDefault(ctx context.Context, rule string, timestamp float64, description string, refRecord int) error {
	return e.AddHint(ctx, rule, timestamp, description, refRecord, model.SeverityInfo)
}

// Log sends a free-form message as a type-1 envelope.
// Fire-and-forget: the returned error reports a sink failure, nothing
// more.
func (e *Emitter) Log(ctx context.Context, message string) error {
	return e.sink.Send(ctx, model.NewLogEnvelope(message))
}
