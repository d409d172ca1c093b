package log

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// zerologAdapter wraps a zerolog.Logger to implement the Logger interface.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new Logger implemented with zerolog.
func NewZerologAdapter(level zerolog.Level, pretty bool) Logger {
	var zlog zerolog.Logger
	if pretty {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Logger()
	} else {
		zlog = zerolog.New(os.Stderr).
			Level(level).
			With().
			Timestamp().
			Logger()
	}
	return &zerologAdapter{logger: zlog}
}

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(logger zerolog.Logger) Logger {
	return &zerologAdapter{logger: logger}
}

// addTraceInfo checks for a valid span in context and adds trace_id and span_id to the log event.
func addTraceInfo(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event = event.Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}
	return event
}

func (z *zerologAdapter) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	event := addTraceInfo(ctx, z.logger.Debug())
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

func (z *zerologAdapter) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	event := addTraceInfo(ctx, z.logger.Info())
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

func (z *zerologAdapter) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	event := addTraceInfo(ctx, z.logger.Warn())
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

func (z *zerologAdapter) Error(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	event := addTraceInfo(ctx, z.logger.Error().Err(err))
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

// With returns a new logger with the provided fields added to its context.
// Trace information is added per call, not to the With context, so it stays current.
func (z *zerologAdapter) With(fields map[string]interface{}) Logger {
	newLogger := z.logger.With().Fields(fields).Logger()
	return &zerologAdapter{logger: newLogger}
}
