package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("yeet")

	if cfg.ServiceName != "yeet" {
		t.Errorf("expected ServiceName 'yeet', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("yeet")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func TestStartSpanAttributes(t *testing.T) {
	sr := withRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanOperation)
	SetSpanAttribute(ctx, AttrOperation, "getUser")
	SetSpanAttribute(ctx, AttrSteps, 3)
	SetSpanAttribute(ctx, AttrStopped, true)
	SetSpanAttribute(ctx, "custom", struct{ A int }{1})
	span.End()

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != SpanOperation {
		t.Errorf("expected span name %q, got %q", SpanOperation, ended[0].Name())
	}

	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[AttrOperation] != "getUser" {
		t.Errorf("expected operation attribute, got %v", attrs)
	}
	if attrs[AttrSteps] != "3" || attrs[AttrStopped] != "true" {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if attrs["custom"] != "{1}" {
		t.Errorf("expected fallback formatting, got %q", attrs["custom"])
	}
}

func TestSetSpanError(t *testing.T) {
	sr := withRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanRun)
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	if len(s.Events()) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestSetSpanAttributeWithoutSpan(t *testing.T) {
	// No span in context: must be a no-op.
	SetSpanAttribute(context.Background(), "key", "value")
	SetSpanError(context.Background(), errors.New("ignored"))
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperation(ctx, "getUser", false, 10*time.Millisecond)
	metrics.RecordRun(ctx, "default", "success", 2)
	metrics.RecordViolation(ctx, "default", "NIL_RESULT")
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperation(ctx, "getUser", false, time.Millisecond)
	metrics.RecordOperation(ctx, "getAddress", true, time.Millisecond)
	metrics.RecordRun(ctx, "default", "stopped", 2)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	if totals["yeet.operation.total"] != 2 {
		t.Errorf("expected 2 operations, got %d", totals["yeet.operation.total"])
	}
	if totals["yeet.run.total"] != 1 {
		t.Errorf("expected 1 run, got %d", totals["yeet.run.total"])
	}
}

func TestMetricsContext(t *testing.T) {
	if MetricsFromContext(context.Background()) != nil {
		t.Error("expected nil metrics in empty context")
	}

	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := ContextWithMetrics(context.Background(), metrics)
	if MetricsFromContext(ctx) != metrics {
		t.Error("expected metrics from context")
	}
}
