package dupgraph

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/cc"
)

// Logger wraps slog.Logger with dupgraph-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// LogScan logs the scan of one hashtable.
func (l *Logger) LogScan(ctx context.Context, st bucket.TableStats) {
	l.DebugContext(ctx, "hashtable scanned",
		"hashtable", st.Hashtable,
		"rows", st.Rows,
		"buckets", st.Buckets,
	)
}

// LogStats logs the bucket statistics and any warnings they raise.
func (l *Logger) LogStats(ctx context.Context, st cc.Stats) {
	l.InfoContext(ctx, "bucket statistics",
		"hashtables", st.Hashtables,
		"buckets", st.Buckets,
		"elements", st.Elements,
		"mean_elements_per_bucket", st.MeanElementsPerBucket,
		"min_buckets_per_element", st.MinBucketsPerElement,
		"max_buckets_per_element", st.MaxBucketsPerElement,
	)
	for _, w := range st.Warnings() {
		l.WarnContext(ctx, "suspicious bucket statistics", "detail", w)
	}
}

// LogComponents logs the result of the connected components analysis.
func (l *Logger) LogComponents(ctx context.Context, components, elements int, duration time.Duration) {
	l.InfoContext(ctx, "connected components found",
		"components", components,
		"elements", elements,
		"duration", duration,
	)
}

// LogDetection logs the outcome of the community detection stage.
func (l *Logger) LogDetection(ctx context.Context, r *Report, err error) {
	attrs := []any{
		"algorithm", r.Algorithm,
		"mode", r.Mode,
		"singletons", r.Singletons,
		"pairs", r.Pairs,
		"detected", r.Detected,
		"failed", len(r.Failed),
		"communities", r.Communities.Communities,
		"mean_size", r.Communities.MeanSize,
		"max_size", r.Communities.MaxSize,
		"duration", r.Duration,
	}
	switch {
	case err != nil:
		l.ErrorContext(ctx, "community detection failed", append(attrs, "error", err)...)
	case len(r.Failed) > 0:
		l.WarnContext(ctx, "community detection completed with failures", attrs...)
	default:
		l.InfoContext(ctx, "community detection completed", attrs...)
	}
}

// LogComponentFailure logs one failed component.
func (l *Logger) LogComponentFailure(ctx context.Context, err *ComponentError) {
	l.WarnContext(ctx, "component detection failed",
		"component", err.Component,
		"size", err.Size,
		"error", err.cause,
	)
}

// LogArtifact logs an artifact save or load.
func (l *Logger) LogArtifact(ctx context.Context, op, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "artifact "+op+" failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "artifact "+op,
			"key", key,
		)
	}
}
