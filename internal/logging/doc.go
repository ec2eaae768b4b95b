// Package logging assembles the structured slog loggers used across reel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so components emit log lines with the
// same shape everywhere. A no-op logger is available for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
