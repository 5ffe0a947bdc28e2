// Package logging builds the slog loggers used across seedcat.
//
// Two output formats are supported: a compact console format for interactive
// use and line-delimited JSON for captured output. The ScanSampler throttles
// per-record progress logging during streaming passes so multi-million-record
// scans stay readable.
package logging
