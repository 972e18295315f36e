// Package report renders analysis reports in multiple output formats.
//
// Three writers are provided: a human-readable text format for the
// terminal, JSON for tool integration, and GitHub-flavored Markdown
// for sharing. All implement the Writer interface and can be combined
// with MultiWriter.
package report
