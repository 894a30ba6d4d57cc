// Package logging provides the zerolog-backed implementation of the
// directory.Logger capability (A1), plus per-request correlation via a
// generated operation ID carried on context.Context.
package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gandhrekunal/scim/internal/directory"
)

// ZeroLogger wraps a zerolog.Logger to satisfy directory.Logger, the way
// the teacher's TFLogger wraps tflog to satisfy the same-shaped interface.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New builds a ZeroLogger around the given zerolog.Logger.
func New(logger zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{logger: logger}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]any) { l.event(l.logger.Debug(), msg, fields) }
func (l *ZeroLogger) Info(msg string, fields map[string]any)  { l.event(l.logger.Info(), msg, fields) }
func (l *ZeroLogger) Warn(msg string, fields map[string]any)  { l.event(l.logger.Warn(), msg, fields) }
func (l *ZeroLogger) Error(msg string, fields map[string]any) { l.event(l.logger.Error(), msg, fields) }

func (l *ZeroLogger) event(e *zerolog.Event, msg string, fields map[string]any) {
	e.Fields(fields).Msg(msg)
}

type operationIDKey struct{}

// WithOperationID returns a context carrying a freshly generated operation
// ID, and the ID itself, for correlating every log line and LDAP call one
// HTTP request makes (§3's "Operation Context").
func WithOperationID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, operationIDKey{}, id), id
}

// OperationID extracts the operation ID stashed by WithOperationID, or ""
// if none is present.
func OperationID(ctx context.Context) string {
	id, _ := ctx.Value(operationIDKey{}).(string)
	return id
}

// ForOperation returns a directory.Logger bound to the context's operation
// ID, so every field it logs is correlated to one inbound request.
func ForOperation(ctx context.Context, base zerolog.Logger) directory.Logger {
	id := OperationID(ctx)
	if id == "" {
		return New(base)
	}
	return New(base.With().Str("operation_id", id).Logger())
}
