package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent analysis of multiple trace files.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: A separate BatchProcessor rather than batch
// functionality on Pipeline keeps the Pipeline focused on single-trace
// execution and leaves room for different batch strategies.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each trace.
	// A factory is required because rules carry per-page state; a
	// shared pipeline would leak state between traces.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed jobs in input order.
	results []*Job
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory function is called once per trace so every
// analysis runs on a fresh pipeline and fresh rule instances.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple trace files concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: errgroup.SetLimit rather than a hand-rolled worker
// pool; each trace gets its own goroutine but only 'concurrency' run
// simultaneously.
//
// Returns all jobs in input order, including those whose analysis
// failed; per-trace errors are recorded in the job reports. The error
// return indicates batch-level cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, traces []string) ([]*Job, error) {
	bp.logger.Info("starting batch analysis",
		"total_traces", len(traces),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]*Job, len(traces))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, trace := range traces {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("analyzing trace",
				"trace", trace,
				"index", i+1,
				"total", len(traces),
			)

			job := NewJob(trace)
			p := bp.pipelineFactory()
			err := p.Execute(ctx, job)

			bp.mu.Lock()
			bp.results[i] = job
			bp.mu.Unlock()

			if err != nil {
				// Per-trace failures are recorded in the report; the
				// rest of the batch keeps going.
				bp.logger.Warn("analysis failed",
					"trace", trace,
					"error", err,
				)
				return nil
			}

			bp.logger.Info("analysis completed",
				"trace", trace,
				"hints", job.Report.TotalHints(),
			)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_traces", len(traces),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes traces and calls a callback for
// each completed job, useful for streaming results. The callback runs
// on the goroutine that finished the analysis and must be safe for
// concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	traces []string,
	callback func(job *Job, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, trace := range traces {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(trace)
			p := bp.pipelineFactory()
			_ = p.Execute(ctx, job) //nolint:errcheck // Error is stored in the report

			callback(job, i)
			return nil
		})
	}

	return g.Wait()
}
