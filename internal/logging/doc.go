// Package logging assembles structured slog loggers used across the Lithic
// pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the asset and operation being processed. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
