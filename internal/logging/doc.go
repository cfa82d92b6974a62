// Package logging provides structured logging utilities for teamdates.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from level/format settings
//   - Name anonymization so participant names stay out of operational logs
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for packages that take a minimal logger
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "availability.save")
//	logger.Info("availability saved",
//	    logging.UserHash(user),
//	    logging.Count(len(dates)))
package logging
