// Package logging builds the slog loggers used across the engine.
//
// It provides console and JSON handlers, attribute helper aliases so call
// sites avoid importing log/slog directly, and context helpers that stamp
// run identifiers and executor phases onto log records.
package logging
