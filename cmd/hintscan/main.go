// Package main provides the entry point for the hintscan CLI.
//
// Hintscan analyzes browser performance traces and emits advisory
// hints about caching, compression, payload size, and rendering
// behavior.
//
// Usage:
//
//	hintscan analyze <trace-file>
//	hintscan analyze trace1.json trace2.json
//
// See --help for all available options.
package main

// main is the entry point for hintscan.
func main() {
	Execute()
}
