package log

import "context"

// Logger defines a standard interface for logging.
// The SDK never logs through a global logger; components receive a Logger
// at construction time and default to a no-op implementation.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...map[string]interface{})        {}
func (nopLogger) Info(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Warn(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Error(context.Context, string, error, ...map[string]interface{}) {}
func (n nopLogger) With(map[string]interface{}) Logger                            { return n }
