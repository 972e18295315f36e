// Package rules contains the built-in hintlet rules.
//
// Each rule inspects one class of performance problem: caching
// headers, transfer compression, cookies on static assets, page
// weight, long-running events, layout bursts, hostname spread, and
// image metadata. Rules are constructed by DefaultRules and registered
// with a hintlet.Registry; thresholds and the enabled set come from a
// rule pack file (see Settings).
package rules
