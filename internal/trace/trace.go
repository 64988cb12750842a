// Package trace installs the OpenTelemetry tracer that follows a report
// through collection, generation and the session cache.
package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "deepsent"
	serviceVersion = "0.3.0"
)

// Span attributes set by the report pipeline.
const (
	AttrTicker   = attribute.Key("deepsent.ticker")
	AttrCacheKey = attribute.Key("deepsent.cache_key")
	AttrPosts    = attribute.Key("deepsent.posts")
	AttrProvider = attribute.Key("deepsent.llm.provider")
)

var (
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	sink     io.Closer
	enabled  bool
)

// Init installs the global tracer provider when LOG_TRACING_ENABLED=true.
// Spans are pretty-printed to stdout or appended to the TRACE_OUTPUT file.
// TRACE_SAMPLE_RATIO in [0,1] sets parent-based sampling (default 1).
func Init() error {
	enabled = strings.EqualFold(os.Getenv("LOG_TRACING_ENABLED"), "true")
	if !enabled {
		return nil
	}

	sampler, err := samplerFromEnv()
	if err != nil {
		enabled = false
		return err
	}

	var out io.Writer = os.Stdout
	if path := os.Getenv("TRACE_OUTPUT"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			enabled = false
			return fmt.Errorf("open trace output: %w", err)
		}
		out, sink = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		enabled = false
		return fmt.Errorf("create span exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		enabled = false
		return fmt.Errorf("build trace resource: %w", err)
	}

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(serviceName)
	return nil
}

func samplerFromEnv() (sdktrace.Sampler, error) {
	raw := os.Getenv("TRACE_SAMPLE_RATIO")
	if raw == "" {
		return sdktrace.AlwaysSample(), nil
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("TRACE_SAMPLE_RATIO must be a number in [0,1], got %q", raw)
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
}

// Shutdown flushes pending spans and closes the trace output file.
func Shutdown(ctx context.Context) error {
	var err error
	if provider != nil {
		err = provider.Shutdown(ctx)
	}
	if sink != nil {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
		sink = nil
	}
	return err
}

// StartSpan starts a span, or returns the current one when tracing is off.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

// Annotate sets attributes on the span carried by ctx.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	if !enabled {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

func Enabled() bool {
	return enabled
}

// GetTraceFields returns the IDs of the span in ctx for log correlation.
func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
