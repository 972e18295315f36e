// Package symbol resolves obfuscated JavaScript symbol names back to
// their source-level names using a symbol map file.
//
// Minified production scripts leave stack traces full of one- and
// two-letter function names. A symbol map, produced at build time by
// the minifier, maps those names back to the original function name,
// source file, and position. Resolution is display-only: the trace
// records themselves are never modified.
package symbol
