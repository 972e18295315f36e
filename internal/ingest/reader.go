package ingest

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hintscan/hintscan/internal/model"
)

// ErrEmptyTrace is returned when the input contains no records.
var ErrEmptyTrace = errors.New("trace contains no records")

// maxLineBytes bounds a single NDJSON line. Traces with captured
// bodies can carry whole documents in one record.
const maxLineBytes = 16 * 1024 * 1024

// defaultMaxBodyBytes caps a decoded captured body. Body-scanning
// rules only ever look at the leading part of a resource, so a
// pathological capture must not balloon the record tree.
const defaultMaxBodyBytes = 4 * 1024 * 1024

// Reader parses trace logs into records.
type Reader struct {
	browserTypes bool
	validate     bool
	maxBodyBytes int
	logger       *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithBrowserTypes makes the reader treat type codes as raw browser
// timeline numbering and translate them to engine types. Records whose
// code has no engine counterpart are skipped, not errors.
func WithBrowserTypes() Option {
	return func(r *Reader) { r.browserTypes = true }
}

// WithValidation makes the reader check every record against the trace
// schema before decoding it. Malformed records fail the whole read.
func WithValidation() Option {
	return func(r *Reader) { r.validate = true }
}

// WithMaxBodySize overrides the cap applied to decoded captured
// bodies. Bodies over the cap are truncated, not rejected. A size of
// zero or less disables the cap.
func WithMaxBodySize(n int) Option {
	return func(r *Reader) { r.maxBodyBytes = n }
}

// WithLogger sets the logger used for skipped-record notices.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader creates a trace reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile reads a trace log from disk.
func (r *Reader) ReadFile(path string) ([]*model.Record, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided trace path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	records, err := r.ReadTrace(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadTrace reads a trace from a stream. The format is sniffed from
// the first byte: a JSON array, or newline-delimited JSON otherwise.
func (r *Reader) ReadTrace(src io.Reader) ([]*model.Record, error) {
	br := bufio.NewReaderSize(src, 64*1024)

	first, err := peekFirstByte(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTrace
		}
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	var raws []json.RawMessage
	if first == '[' {
		raws, err = readArray(br)
	} else {
		raws, err = readLines(br)
	}
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrEmptyTrace
	}

	records := make([]*model.Record, 0, len(raws))
	for i, raw := range raws {
		record, err := r.decodeRecord(raw, i)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if record == nil {
			continue
		}
		record.Sequence = len(records)
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTrace
	}
	return records, nil
}

// peekFirstByte returns the first non-whitespace byte without
// consuming it.
func peekFirstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			if err := br.UnreadByte(); err != nil {
				return 0, err
			}
			return b, nil
		}
	}
}

// readArray streams the elements of a JSON array.
func readArray(br *bufio.Reader) ([]json.RawMessage, error) {
	dec := json.NewDecoder(br)
	if _, err := dec.Token(); err != nil { // consume '['
		return nil, fmt.Errorf("failed to parse trace array: %w", err)
	}

	var raws []json.RawMessage
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse trace array element %d: %w", len(raws), err)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// readLines reads newline-delimited JSON, skipping blank lines.
func readLines(br *bufio.Reader) ([]json.RawMessage, error) {
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var raws []json.RawMessage
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raws = append(raws, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace lines: %w", err)
	}
	return raws, nil
}

// decodeRecord turns one raw record into a model.Record.
// Returns (nil, nil) for browser records with no engine counterpart.
func (r *Reader) decodeRecord(raw json.RawMessage, index int) (*model.Record, error) {
	if r.validate {
		s, err := traceSchema()
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if err := s.Validate(v); err != nil {
			return nil, fmt.Errorf("schema violation: %w", err)
		}
	}

	var record model.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	if r.browserTypes {
		translated, ok := model.TranslateBrowserType(int(record.Type))
		if !ok {
			r.logger.Debug("skipping browser record with no engine counterpart",
				"index", index, "browser_type", int(record.Type))
			return nil, nil
		}
		record.Type = translated
		if err := r.translateChildren(record.Children); err != nil {
			return nil, err
		}
	}

	if err := r.decodeBodies(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// translateChildren rewrites browser type codes in nested records.
// Untranslatable children are left in place with their code unchanged;
// rules never declare concerns for codes outside the engine range, so
// they are inert.
func (r *Reader) translateChildren(children []*model.Record) error {
	for _, c := range children {
		if translated, ok := model.TranslateBrowserType(int(c.Type)); ok {
			c.Type = translated
		}
		if err := r.translateChildren(c.Children); err != nil {
			return err
		}
	}
	return nil
}

// decodeBodies decodes base64 captured bodies through the record tree,
// truncating any body over the configured cap.
func (r *Reader) decodeBodies(record *model.Record) error {
	if record.Data.EncodedBody != "" {
		body, err := base64.StdEncoding.DecodeString(record.Data.EncodedBody)
		if err != nil {
			return fmt.Errorf("failed to decode captured body: %w", err)
		}
		if r.maxBodyBytes > 0 && len(body) > r.maxBodyBytes {
			r.logger.Debug("truncating oversized captured body",
				"url", record.Data.URL, "size", len(body), "cap", r.maxBodyBytes)
			body = body[:r.maxBodyBytes]
		}
		record.Data.Body = body
	}
	for _, c := range record.Children {
		if err := r.decodeBodies(c); err != nil {
			return err
		}
	}
	return nil
}
