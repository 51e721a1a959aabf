package trace

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledByDefault(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "")
	require.NoError(t, Init())
	assert.False(t, Enabled())

	ctx, span := StartSpan(context.Background(), "pipeline.Run")
	defer span.End()
	_, _, ok := GetTraceFields(ctx)
	assert.False(t, ok)
}

func TestEnabledSpansExposeIDs(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "true")
	require.NoError(t, Init())
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		os.Setenv("LOG_TRACING_ENABLED", "false")
		_ = Init()
	})
	require.True(t, Enabled())

	ctx, span := StartSpan(context.Background(), "report.WriteReport")
	defer span.End()

	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), spanID)

	_, _, ok = GetTraceFields(context.Background())
	assert.False(t, ok)
}
