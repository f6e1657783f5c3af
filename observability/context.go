package observability

import "context"

// metricsContextKey is the context key for *Metrics.
type metricsContextKey struct{}

// ContextWithMetrics stores metrics in the context so stacks created inside
// a run record into the runner's instruments.
func ContextWithMetrics(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, metricsContextKey{}, m)
}

// MetricsFromContext retrieves metrics from context, or nil.
func MetricsFromContext(ctx context.Context) *Metrics {
	if m, ok := ctx.Value(metricsContextKey{}).(*Metrics); ok {
		return m
	}
	return nil
}
