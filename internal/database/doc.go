// Package database provides SQLite-based storage for analysis reports.
//
// Reports are stored as JSON blobs alongside a severity summary and
// per-hint rows, so the history listing and the compare command can
// query without deserializing whole reports.
package database
