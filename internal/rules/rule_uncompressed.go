package rules

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// DefaultMinCompressSize is the smallest body, in bytes, worth
// flagging as uncompressed. Below this the compression dictionary
// overhead can exceed the savings.
const DefaultMinCompressSize = 150

// UncompressedRule flags compressible text resources served without a
// known Content-Encoding.
type UncompressedRule struct {
	// minSize is the body size threshold in bytes.
	minSize int64
}

// UncompressedOption configures an UncompressedRule.
type UncompressedOption func(*UncompressedRule)

// WithMinCompressSize overrides the minimum body size threshold.
func WithMinCompressSize(bytes int64) UncompressedOption {
	return func(r *UncompressedRule) {
		if bytes > 0 {
			r.minSize = bytes
		}
	}
}

// NewUncompressedRule creates the uncompressed rule.
func NewUncompressedRule(opts ...UncompressedOption) *UncompressedRule {
	r := &UncompressedRule{minSize: DefaultMinCompressSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *UncompressedRule) Name() string {
	return "uncompressed"
}

// Concerns returns the record types the rule inspects.
func (r *UncompressedRule) Concerns() []model.EventType {
	return []model.EventType{model.EventNetworkResourceResponse}
}

// OnRecord checks transfer compression on a text resource response.
func (r *UncompressedRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	if !model.ClassifyResourceType(record).IsCompressible() {
		return nil
	}
	size := responseSize(record)
	if size < r.minSize {
		return nil
	}
	if hintlet.IsCompressed(record.Data.ResponseHeaders) {
		return nil
	}

	description := fmt.Sprintf(
		"Resource %s (%d bytes) was served without compression; enabling gzip would cut most of the transfer",
		record.Data.URL, size)
	return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityWarning)
}

// responseSize returns the best available body size for a response
// record: the ingested content length when present, otherwise the
// Content-Length header.
func responseSize(record *model.Record) int64 {
	if record.Data.ContentLength > 0 {
		return record.Data.ContentLength
	}
	if v, ok := hintlet.LookupHeader(record.Data.ResponseHeaders, "Content-Length"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
