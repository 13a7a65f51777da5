// Package logging provides a logging abstraction layer that decouples the
// reconciliation engine from a specific logging framework. Components accept
// a Logger so tests can capture output and the CLI can inject a configured
// instance.
package logging

// Logger defines the interface for structured logging throughout the application.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger

	// Fatal logs a fatal-level message and exits the program
	Fatal(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Standardized field names for structured logging. Using these constants
// keeps log output consistent and filterable across packages.
const (
	FieldFile     = "file_path"
	FieldSource   = "source"
	FieldMode     = "mode"
	FieldJobKey   = "job_key"
	FieldCategory = "category"
	FieldColumn   = "column"
	FieldCount    = "count"
	FieldRow      = "row"
	FieldReason   = "reason"
	FieldError    = "error"
)
