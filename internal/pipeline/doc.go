// Package pipeline orchestrates trace analysis as a sequence of steps.
//
// A pipeline runs one trace through ingest, rule analysis, and
// persistence. The BatchProcessor runs many traces through fresh
// pipelines concurrently with a bounded degree of parallelism.
package pipeline
