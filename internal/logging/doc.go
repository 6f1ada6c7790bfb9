// Package logging builds the slog loggers used across Stockpile, with a
// compact console handler for interactive runs and JSON for ingestion.
package logging
