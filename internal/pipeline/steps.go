package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hintscan/hintscan/internal/database"
	"github.com/hintscan/hintscan/internal/engine"
	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/ingest"
)

// IngestStep reads the trace file into records.
type IngestStep struct {
	// reader parses the trace format.
	reader *ingest.Reader
}

// NewIngestStep creates an ingest step using the given reader.
func NewIngestStep(reader *ingest.Reader) *IngestStep {
	return &IngestStep{reader: reader}
}

// Name returns the step name.
func (s *IngestStep) Name() string {
	return "ingest"
}

// Do reads the job's trace file and fills in the records.
func (s *IngestStep) Do(_ context.Context, job *Job) error {
	records, err := s.reader.ReadFile(job.TracePath)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	job.Records = records
	job.Report.RecordCount = len(records)
	return nil
}

// AnalyzeStep dispatches the ingested records to the rule engine.
type AnalyzeStep struct {
	// rules is the rule set registered for each job.
	rules []hintlet.Rule

	// timeout bounds the analysis. Zero means no limit.
	timeout time.Duration

	// extraSinks receive envelopes in addition to the job's report.
	extraSinks []hintlet.Sink

	// logger is used for engine dispatch logging.
	logger *slog.Logger
}

// AnalyzeOption configures an AnalyzeStep.
type AnalyzeOption func(*AnalyzeStep)

// WithAnalyzeTimeout bounds each analysis. When the limit is hit the
// report is marked timed out; the pipeline continues so partial results
// are still reported and saved.
func WithAnalyzeTimeout(d time.Duration) AnalyzeOption {
	return func(s *AnalyzeStep) {
		s.timeout = d
	}
}

// WithExtraSinks adds envelope sinks alongside the report collector,
// e.g. an NDJSON stream for --emit.
func WithExtraSinks(sinks ...hintlet.Sink) AnalyzeOption {
	return func(s *AnalyzeStep) {
		s.extraSinks = append(s.extraSinks, sinks...)
	}
}

// WithAnalyzeLogger sets the logger passed to the engine.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeOption {
	return func(s *AnalyzeStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnalyzeStep creates an analysis step running the given rules.
func NewAnalyzeStep(rules []hintlet.Rule, opts ...AnalyzeOption) *AnalyzeStep {
	s := &AnalyzeStep{
		rules:  rules,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do runs the rule engine over the job's records.
// Rules carry per-page state, so each job gets a fresh registry; rule
// values are constructed per pipeline by the factory that built this
// step.
func (s *AnalyzeStep) Do(ctx context.Context, job *Job) error {
	registry := hintlet.NewRegistry()
	for _, rule := range s.rules {
		registry.Register(rule)
	}
	job.Report.RuleNames = registry.Names()

	var sink hintlet.Sink = engine.NewCollectorSink(job.Report)
	if len(s.extraSinks) > 0 {
		all := append([]hintlet.Sink{sink}, s.extraSinks...)
		sink = engine.NewMultiSink(all...)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	eng := engine.New(registry, sink, engine.WithLogger(s.logger))
	if err := eng.Analyze(ctx, job.Records); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Partial results are still worth reporting.
			job.Report.TimedOut = true
			s.logger.Warn("analysis timed out", "trace", job.TracePath, "timeout", s.timeout)
			return nil
		}
		return fmt.Errorf("analysis failed: %w", err)
	}
	return nil
}

// SaveStep persists the finished report to the hint database.
type SaveStep struct {
	// db is the open hint database.
	db *database.HintDB

	// logger reports the stored analysis ID.
	logger *slog.Logger
}

// NewSaveStep creates a persistence step writing to the given database.
func NewSaveStep(db *database.HintDB, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do saves the job's report.
func (s *SaveStep) Do(ctx context.Context, job *Job) error {
	id, err := s.db.SaveReport(ctx, job.Report)
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	s.logger.Info("analysis saved",
		"trace", job.TracePath,
		"analysis_id", id,
		"hints", job.Report.TotalHints(),
	)
	return nil
}
