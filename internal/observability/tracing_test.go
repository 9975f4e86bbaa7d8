package observability

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/remails/console/internal/config"
)

func TestInitTracing_disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "remails-console", "test")
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown should not be nil when tracing is disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned error: %v", err)
	}
}

func TestInitTracing_unsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:  true,
		Exporter: "jaeger-thrift",
	}, "remails-console", "test")
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}

func TestInitTracing_stdoutExporter(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:      true,
		Exporter:     "stdout",
		SamplingRate: 1.0,
	}, "remails-console", "test")
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}
	defer shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "test-op", AttrRoute.String("projects"))
	if !span.SpanContext().IsValid() {
		t.Error("span context should be valid with sampling rate 1.0")
	}
	if TraceIDFromContext(ctx) == "" {
		t.Error("trace ID should be present in context")
	}
	if SpanIDFromContext(ctx) == "" {
		t.Error("span ID should be present in context")
	}
	span.End()
}

func TestNewSampler_clamping(t *testing.T) {
	tests := []struct {
		name string
		rate float64
	}{
		{"zero defaults", 0},
		{"negative defaults", -1},
		{"above one clamps", 2.5},
		{"valid ratio", 0.5},
		{"exactly one", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSampler(config.TracingConfig{SamplingRate: tt.rate})
			if s == nil {
				t.Fatal("sampler should not be nil")
			}
			// All configurations must produce a parent-based sampler.
			if s.Description() == "" {
				t.Error("sampler description should not be empty")
			}
		})
	}
}

func TestEndSpanWithError(t *testing.T) {
	exporter := newRecordingExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer(tracerName).Start(context.Background(), "failing-op")
	EndSpanWithError(span, errors.New("backend unreachable"))

	spans := exporter.Spans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code.String() != "Error" {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestEndSpanWithError_nilError(t *testing.T) {
	exporter := newRecordingExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer(tracerName).Start(context.Background(), "ok-op")
	EndSpanWithError(span, nil)

	spans := exporter.Spans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code.String() == "Error" {
		t.Error("span status should not be Error for nil error")
	}
}

func TestTraceIDFromContext_noSpan(t *testing.T) {
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("TraceIDFromContext() = %q, want empty", got)
	}
}

// recordingExporter collects finished spans in memory for assertions.
type recordingExporter struct {
	spans []sdktrace.ReadOnlySpan
}

func newRecordingExporter() *recordingExporter {
	return &recordingExporter{}
}

func (e *recordingExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.spans = append(e.spans, spans...)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error { return nil }

func (e *recordingExporter) Spans() []sdktrace.ReadOnlySpan { return e.spans }
