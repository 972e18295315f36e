// Package engine dispatches trace records through the registered
// hintlet rules.
//
// Dispatch is sequential and single-threaded per trace, mirroring the
// event-loop execution model the rules were designed for: a rule sees
// records in trace order, and no two rules run concurrently over the
// same stream. Concurrency across traces lives in the pipeline's batch
// processor, not here.
//
// The package also provides the Sink implementations that carry the
// engine's output envelopes: an in-memory collector that builds an
// analysis report, an NDJSON writer for host processes consuming the
// envelope stream, and a channel sink.
package engine
