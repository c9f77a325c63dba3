package telem

import (
	"context"

	kitlog "github.com/go-kit/kit/log"
	"go.opencensus.io/trace"
)

type contextKey string

const loggerKey contextKey = "telem.logger"

// WithLogger stores logger in ctx, for LoggerFrom and StartSpan to find.
func WithLogger(ctx context.Context, logger kitlog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFrom returns the logger stored in ctx, decorated with keyvals. Contexts without a
// logger get one that discards everything.
func LoggerFrom(ctx context.Context, keyvals ...interface{}) kitlog.Logger {
	logger, ok := ctx.Value(loggerKey).(kitlog.Logger)
	if !ok {
		logger = kitlog.NewNopLogger()
	}

	if len(keyvals) > 0 {
		logger = kitlog.With(logger, keyvals...)
	}

	return logger
}

// StartSpan starts a span and returns the context logger alongside it:
//
//	ctx, span, logger := telem.StartSpan(ctx, "cmd/jobdb.migrate")
//	defer span.End()
//
// The first sampled span in a trace tags the logger with its trace_id and stores it back
// in the context, so everything beneath it logs the same trace_id once.
func StartSpan(ctx context.Context, name string, attributes ...trace.Attribute) (context.Context, *trace.Span, kitlog.Logger) {
	parent := trace.FromContext(ctx)

	ctx, span := trace.StartSpan(ctx, name)
	if len(attributes) > 0 {
		span.AddAttributes(attributes...)
	}

	logger := LoggerFrom(ctx)
	if parent == nil && span.SpanContext().IsSampled() {
		logger = kitlog.With(logger, "trace_id", span.SpanContext().TraceID.String())
		ctx = WithLogger(ctx, logger)
	}

	return ctx, span, logger
}
