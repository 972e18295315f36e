package rules

import (
	"context"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// captureSink collects emitted hints for assertions.
type captureSink struct {
	hints []model.Hint
}

func (s *captureSink) Send(_ context.Context, env model.Envelope) error {
	if env.Type == model.EnvelopeHint {
		if h, ok := env.Payload.(model.Hint); ok {
			s.hints = append(s.hints, h)
		}
	}
	return nil
}

// newCapture returns an emitter wired to a fresh capture sink.
func newCapture() (*hintlet.Emitter, *captureSink) {
	sink := &captureSink{}
	return hintlet.NewEmitter(sink), sink
}

// responseRecord builds a network response record for rule tests.
func responseRecord(seq int, url string, status int, headers map[string]string) *model.Record {
	return &model.Record{
		Sequence: seq,
		Type:     model.EventNetworkResourceResponse,
		Time:     float64(seq + 1),
		Data: model.RecordData{
			URL:             url,
			Status:          status,
			ResponseHeaders: headers,
		},
	}
}

// startRecord builds a network start record for rule tests.
func startRecord(seq int, url string, headers map[string]string) *model.Record {
	return &model.Record{
		Sequence: seq,
		Type:     model.EventNetworkResourceStart,
		Time:     float64(seq + 1),
		Data: model.RecordData{
			URL:     url,
			Headers: headers,
		},
	}
}

// transitionRecord builds a page transition record.
func transitionRecord(seq int) *model.Record {
	return &model.Record{
		Sequence: seq,
		Type:     model.EventPageTransition,
		Time:     float64(seq + 1),
	}
}

// dispatch feeds records to a single rule through a fresh emitter and
// returns the captured hints. Rules with concerns are filtered the way
// the engine would filter them.
func dispatch(rule hintlet.Rule, records ...*model.Record) ([]model.Hint, error) {
	emitter, sink := newCapture()
	concerns := rule.Concerns()
	for _, record := range records {
		if len(concerns) > 0 && !concernsInclude(concerns, record.Type) {
			continue
		}
		if err := rule.OnRecord(context.Background(), record, emitter); err != nil {
			return sink.hints, err
		}
	}
	return sink.hints, nil
}

func concernsInclude(concerns []model.EventType, t model.EventType) bool {
	for _, c := range concerns {
		if c == t {
			return true
		}
	}
	return false
}
