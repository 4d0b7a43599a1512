// Package logging builds the slog loggers used across the ingester and
// provides the standardized field names and context helpers that keep log
// lines correlated per object, stage, and execution.
package logging
