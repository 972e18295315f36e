// Package hintlet provides the rule API for hintscan.
//
// A hintlet is a pluggable analysis rule that inspects browser trace
// records and emits advisory hints. This package defines the Rule
// interface, the append-only Registry, the Emitter that rules use to
// send hints and log messages through a one-way envelope sink, and the
// record inspection helpers (header lookup, compression detection,
// time formatting) shared by rule implementations.
package hintlet
