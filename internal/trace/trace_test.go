package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerFromEnv(t *testing.T) {
	t.Setenv("TRACE_SAMPLE_RATIO", "")
	s, err := samplerFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "AlwaysOnSampler", s.Description())

	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	s, err = samplerFromEnv()
	require.NoError(t, err)
	assert.Contains(t, s.Description(), "TraceIDRatioBased{0.25}")

	for _, bad := range []string{"often", "-0.1", "1.5"} {
		t.Setenv("TRACE_SAMPLE_RATIO", bad)
		_, err = samplerFromEnv()
		assert.Error(t, err, bad)
	}
}

func TestDisabledTracing(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	require.NoError(t, Init())
	assert.False(t, Enabled())

	ctx := context.Background()
	got, span := StartSpan(ctx, "noop")
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())

	Annotate(ctx, AttrTicker.String("AAPL"))
	_, _, ok := GetTraceFields(ctx)
	assert.False(t, ok)
	assert.NoError(t, Shutdown(ctx))
}
