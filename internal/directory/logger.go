package directory

import "time"

// Logger is the capability the directory and backend packages use for
// structured, leveled logging. It is generalized from the teacher's
// tflog-backed Logger interface: the shape is identical, but the concrete
// implementation wired in by cmd/scim-ldap-gateway wraps zerolog rather
// than a Terraform provider's diagnostics sink, since this binary is a
// standalone server and has no Terraform diagnostics sink to write to
// (see DESIGN.md).
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// NopLogger discards everything. Useful as a default when a caller does
// not care about LDAP-layer logging (e.g. most unit tests).
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]any) {}
func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}

// LogOperation wraps a unit of work with start/duration/error logging,
// generalized from the teacher's LogOperation helper to take the Logger as
// a parameter instead of reaching a fixed subsystem name through tflog.
func LogOperation(logger Logger, operation string, fields map[string]any, fn func() error) error {
	if logger == nil {
		logger = NopLogger{}
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	fields["operation"] = operation

	start := time.Now()
	logger.Debug("starting operation", fields)

	err := fn()

	fields["duration_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		fields["error"] = err.Error()
		logger.Error("operation failed", fields)
	} else {
		logger.Debug("operation completed", fields)
	}
	return err
}
