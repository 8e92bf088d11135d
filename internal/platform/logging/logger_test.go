package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestLogger_KeyValueFields(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(LevelDebug)
	logger.With("component", "finalize").Info("mix finalized", "mix_id", "m1", "players", 4, "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "finalize" || fields["mix_id"] != "m1" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields["players"] != int64(4) {
		t.Fatalf("unexpected players field: %#v", fields["players"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(LevelWarn)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")

	if got := logs.Len(); got != 2 {
		t.Fatalf("expected 2 entries at warn and above, got %d", got)
	}
	if logs.All()[1].Level != zapcore.ErrorLevel {
		t.Fatalf("unexpected level: %v", logs.All()[1].Level)
	}
}

func TestLogger_ContextAddsTraceFields(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(LevelInfo)
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	entries := logs.All()
	if entries[0].ContextMap()["trace_id"] != spanCtx.TraceID().String() {
		t.Fatalf("expected trace id, got %+v", entries[0].ContextMap())
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Fatalf("unexpected trace id without span")
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	logger, logs := newObserved(LevelInfo)
	previous := Default()
	SetDefault(logger)
	t.Cleanup(func() { SetDefault(previous) })

	var nilLogger *Logger
	nilLogger.Info("routed to default")

	if logs.Len() != 1 {
		t.Fatalf("expected default logger to receive the entry")
	}
}

func TestLogger_NamedSetsLoggerName(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(LevelInfo)
	logger.Named("postgrest").Warn("circuit opened")

	if got := logs.All()[0].LoggerName; got != "postgrest" {
		t.Fatalf("unexpected logger name: %q", got)
	}
}
