package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/yeet/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by yeet stacks and runners.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	runTotal          metric.Int64Counter
	runSteps          metric.Int64Histogram
	violationTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	operationTotal, err := meter.Int64Counter("yeet.operation.total",
		metric.WithDescription("Operations invoked, by name and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating yeet.operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("yeet.operation.duration",
		metric.WithDescription("Duration of operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating yeet.operation.duration histogram: %w", err)
	}

	runTotal, err := meter.Int64Counter("yeet.run.total",
		metric.WithDescription("Runs finished, by runner and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating yeet.run.total counter: %w", err)
	}

	runSteps, err := meter.Int64Histogram("yeet.run.steps",
		metric.WithDescription("Suspension points reached per run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating yeet.run.steps histogram: %w", err)
	}

	violationTotal, err := meter.Int64Counter("yeet.violation.total",
		metric.WithDescription("Runs aborted by a protocol violation, by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating yeet.violation.total counter: %w", err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		runTotal:          runTotal,
		runSteps:          runSteps,
		violationTotal:    violationTotal,
	}, nil
}

// RecordOperation records one operation invocation.
func (m *Metrics) RecordOperation(ctx context.Context, operation string, stopped bool, duration time.Duration) {
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("stopped", stopped),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(ctx context.Context, runner, status string, steps int) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("runner", runner),
		attribute.String("status", status),
	))
	m.runSteps.Record(ctx, int64(steps), metric.WithAttributes(
		attribute.String("runner", runner),
	))
}

// RecordViolation records a run aborted by a protocol violation.
func (m *Metrics) RecordViolation(ctx context.Context, runner, code string) {
	m.violationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("runner", runner),
		attribute.String("code", code),
	))
}
