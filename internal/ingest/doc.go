// Package ingest reads trace logs into records.
//
// Traces arrive as a JSON array or as newline-delimited JSON, either
// in the engine's own record numbering or in raw browser timeline
// numbering. The reader normalizes both into model.Record values:
// sequence numbers are assigned, browser type codes are translated,
// and captured bodies are decoded from base64. Optional schema
// validation rejects malformed records before any rule sees them.
package ingest
