package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func newJSONLogger(buf *bytes.Buffer) *zap.Logger {
	cfg := ProductionConfig()
	return zap.New(zapcore.NewCore(createEncoder(cfg), zapcore.AddSync(buf), zapcore.DebugLevel))
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))

	wrong := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrong))
}

func TestWithIDs(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := context.Background()

	ctx, l := WithRequestID(ctx, zap.New(core), "req-1")
	ctx, l = WithTenantID(ctx, l, "tenant-1")
	ctx, l = WithEventID(ctx, l, "event-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	assert.Equal(t, "event-1", GetEventID(ctx))
	assert.Same(t, l, FromContext(ctx))

	l.Info("posted")
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
	assert.Equal(t, "event-1", fields["event_id"])
}

func TestGetIDs_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetEventID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceIDs(t *testing.T) {
	ctx := spanContext(t)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
	assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithTraceContext(context.Background(), base))

	var buf bytes.Buffer
	WithTraceContext(spanContext(t), newJSONLogger(&buf)).Info("x")
	assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, buf.String(), `"span_id":"00f067aa0ba902b7"`)
}

func TestContextLogger_Enriches(t *testing.T) {
	var buf bytes.Buffer
	ctx := spanContext(t)
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-9")
	ctx = context.WithValue(ctx, EventIDKey, "event-9")

	WithLogger(ctx, newJSONLogger(&buf)).Info("journal posted", zap.String("entry_number", "JE-000001"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"journal posted"`)
	assert.Contains(t, out, `"entry_number":"JE-000001"`)
	assert.Contains(t, out, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, out, `"tenant_id":"tenant-9"`)
	assert.Contains(t, out, `"event_id":"event-9"`)
	assert.NotContains(t, out, `"request_id"`)
}

func TestL_DoesNotRepeatStoredIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx, _ := WithTenantID(spanContext(t), newJSONLogger(&buf), "tenant-3")

	L(ctx).Info("stock adjusted")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, `"tenant_id"`))
	assert.Contains(t, out, `"trace_id"`)
}

func TestContextLogger_WithAndLevels(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	cl := WithLogger(context.Background(), zap.New(core)).With(zap.String("component", "stock"))

	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")

	logs := recorded.All()
	require.Len(t, logs, 4)
	for _, entry := range logs {
		assert.Equal(t, "stock", entry.ContextMap()["component"])
	}
	assert.NotNil(t, cl.Zap())
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("dropped")
		cl.With(zap.Int("n", 1)).Warn("dropped")
	})
}
