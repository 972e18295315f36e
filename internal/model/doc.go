// Package model defines the core data structures for hintscan.
// It contains trace records, resource classification, hints, severity
// levels, message envelopes, stack frames, and analysis reports.
//
// This package has no dependencies on other internal packages,
// making it safe to import from anywhere in the codebase.
package model
