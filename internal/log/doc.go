// Package log provides logging helpers for hintscan.
//
// Trace logs carry whatever the browser saw, including Cookie and
// Authorization headers and credentialed URLs. The redacting handler
// keeps that material out of hintscan's own log output.
package log
