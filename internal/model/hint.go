package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Hint is a single advisory message emitted by a rule.
// Hints are constructed per emission, serialized into an envelope,
// and not retained by the emitter; any storage happens downstream.
type Hint struct {
	// ID uniquely identifies this hint emission.
	ID string `json:"id"`

	// Rule is the name of the rule that emitted the hint.
	Rule string `json:"rule"`

	// Timestamp is the trace time in milliseconds the hint refers to.
	// Required: emission fails fast when it is missing.
	Timestamp float64 `json:"timestamp"`

	// Description is the human-readable advisory text.
	Description string `json:"description"`

	// RefRecord is the sequence number of the record that triggered
	// the hint. -1 when the hint aggregates over many records.
	RefRecord int `json:"refRecord"`

	// Severity grades the hint. Defaults to SeverityInfo.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity, kept alongside the
	// numeric code so serialized hints are self-describing.
	SeverityText string `json:"severityText"`
}

// NewHint constructs a hint with a fresh ID.
// It does not validate the timestamp; that is the emitter's job so the
// error surfaces before anything is sent.
func NewHint(rule string, timestamp float64, description string, refRecord int, severity Severity) Hint {
	return Hint{
		ID:           uuid.NewString(),
		Rule:         rule,
		Timestamp:    timestamp,
		Description:  description,
		RefRecord:    refRecord,
		Severity:     severity,
		SeverityText: severity.String(),
	}
}

// EnvelopeType tags the payload kind of a message envelope.
// The numeric values are part of the wire format shared with hosts.
type EnvelopeType int

const (
	// EnvelopeLog is a log message envelope; the payload is a string.
	EnvelopeLog EnvelopeType = 1

	// EnvelopeHint is a hint envelope; the payload is a Hint.
	EnvelopeHint EnvelopeType = 2
)

// Envelope is the one-way message passed from the analysis engine to
// its host. Envelopes are fire-and-forget: no acknowledgment, no retry.
// Delivery guarantees belong to the transport, not to this code.
type Envelope struct {
	// Type is 1 for log messages, 2 for hints.
	Type EnvelopeType `json:"type"`

	// Payload is a string for log envelopes and a Hint for hint
	// envelopes.
	Payload any `json:"payload"`
}

// NewLogEnvelope wraps a log message in an envelope.
func NewLogEnvelope(message string) Envelope {
	return Envelope{Type: EnvelopeLog, Payload: message}
}

// NewHintEnvelope wraps a hint in an envelope.
func NewHintEnvelope(hint Hint) Envelope {
	return Envelope{Type: EnvelopeHint, Payload: hint}
}

// UnmarshalJSON decodes an envelope, restoring the concrete payload
// type from the type tag. Needed by consumers that read envelope
// streams back (the serve API and tests).
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    EnvelopeType    `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Type = raw.Type
	switch raw.Type {
	case EnvelopeLog:
		var msg string
		if err := json.Unmarshal(raw.Payload, &msg); err != nil {
			return fmt.Errorf("log envelope payload: %w", err)
		}
		e.Payload = msg
	case EnvelopeHint:
		var hint Hint
		if err := json.Unmarshal(raw.Payload, &hint); err != nil {
			return fmt.Errorf("hint envelope payload: %w", err)
		}
		e.Payload = hint
	default:
		return fmt.Errorf("unknown envelope type %d", raw.Type)
	}
	return nil
}
