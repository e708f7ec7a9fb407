// Package log provides a structured logging interface for scitree operations.
//
// The interface is slog-compatible and implementation-agnostic. The default
// implementation is backed by zerolog (see logger.go); tests use TestLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("tree.regressor").With(
//	    log.ModelNameKey, "DecisionTreeRegressor",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 5,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. Error accepts an error
// value as its first field; implementations attach the stack trace recorded by
// cockroachdb/errors when one is available.
type Logger interface {
	// Debug logs detailed diagnostic information, usually disabled in production.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs a potentially problematic situation.
	Warn(msg string, fields ...any)

	// Error logs an error condition. If the first field is an error it is
	// recorded under the "error" key.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip building expensive fields:
	//
	//	if logger.Enabled(ctx, LevelDebug) {
	//	    logger.Debug("tree built", "text", tree.ExportText(reg.Tree(), nil))
	//	}
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
