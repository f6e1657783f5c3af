package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/yeet/errors"
	"github.com/kbukum/yeet/logger"
	"github.com/kbukum/yeet/observability"
	"github.com/kbukum/yeet/result"
	"github.com/kbukum/yeet/yeet"
)

type user struct {
	ID   int
	Name string
}

type address struct {
	Street string
	User   user
}

func getUser(args ...any) result.Result {
	id, _ := args[0].(int)
	if id == 0 {
		return result.Stop("no id")
	}
	return result.Success(user{ID: id, Name: "Jim"})
}

func getAddress(args ...any) result.Result {
	u, ok := args[0].(user)
	if !ok {
		return result.Stop("no user")
	}
	return result.Success(address{Street: "1 Main St", User: u})
}

func failAddress(...any) result.Result {
	return result.Stop("address lookup failed")
}

func profile(ops yeet.Operations, opts ...yeet.Option) Sequence {
	return func(ctx context.Context, yield Yield, args ...any) any {
		s := yeet.MustNew(ctx, ops, opts...)
		if !yield(s.Bind("user").Call("getUser", args...)) {
			return nil
		}
		if !yield(s.Bind("address").Call("getAddress", "user")) {
			return nil
		}
		return s.Yoink()
	}
}

func defaultOps() yeet.Operations {
	return yeet.Operations{"getUser": getUser, "getAddress": getAddress}
}

func newRunner(t *testing.T, cfg Config, opts ...Option) *Runner {
	t.Helper()
	r, err := New(cfg, append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestRunSuccess(t *testing.T) {
	r := newRunner(t, Config{})

	out, err := r.Run(context.Background(), profile(defaultOps()), 7)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	jim := user{ID: 7, Name: "Jim"}
	home := address{Street: "1 Main St", User: jim}
	if out.Status != StatusSuccess || out.Stopped() {
		t.Errorf("expected success, got %s", out.Status)
	}
	if diff := cmp.Diff(map[string]any{"user": jim, "address": home}, out.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{jim, home}, out.Yields); diff != "" {
		t.Errorf("yields mismatch (-want +got):\n%s", diff)
	}
	if out.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", out.Steps)
	}
	if out.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestRunStopOnFirstOperation(t *testing.T) {
	r := newRunner(t, Config{})

	out, err := r.Run(context.Background(), profile(defaultOps()), 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Status != StatusStopped {
		t.Fatalf("expected stopped, got %s", out.Status)
	}
	if out.Data != "no id" {
		t.Errorf("expected reason 'no id', got %v", out.Data)
	}
	if out.Yields == nil || len(out.Yields) != 0 {
		t.Errorf("expected empty non-nil yields, got %#v", out.Yields)
	}
}

func TestRunStopKeepsEarlierYields(t *testing.T) {
	r := newRunner(t, Config{})
	ops := yeet.Operations{"getUser": getUser, "getAddress": failAddress}

	out, err := r.Run(context.Background(), profile(ops), 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Stopped() || out.Data != "address lookup failed" {
		t.Errorf("expected stop on address, got %s %v", out.Status, out.Data)
	}
	if diff := cmp.Diff([]any{user{ID: 3, Name: "Jim"}}, out.Yields); diff != "" {
		t.Errorf("yields mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStopRunsSequenceCleanup(t *testing.T) {
	r := newRunner(t, Config{})
	cleaned := false
	resumed := false

	seq := func(ctx context.Context, yield Yield, args ...any) any {
		defer func() { cleaned = true }()
		yield(result.Stop("halt"))
		resumed = true
		return nil
	}

	out, err := r.Run(context.Background(), seq)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Stopped() {
		t.Fatalf("expected stopped, got %s", out.Status)
	}
	if !cleaned {
		t.Error("deferred cleanup must run before Run returns")
	}
	if !resumed {
		t.Error("sequence should observe yield returning false and continue to return")
	}
}

func TestRunYieldReturnsFalseAfterStop(t *testing.T) {
	r := newRunner(t, Config{})
	second := true

	seq := func(ctx context.Context, yield Yield, args ...any) any {
		yield(result.Stop("halt"))
		second = yield(result.Success("ignored"))
		return nil
	}

	out, err := r.Run(context.Background(), seq)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if second {
		t.Error("yield after stop must return false")
	}
	if len(out.Yields) != 0 {
		t.Errorf("nothing after the stop may be recorded, got %v", out.Yields)
	}
}

func TestRunWithoutYields(t *testing.T) {
	r := newRunner(t, Config{})

	out, err := r.Run(context.Background(), func(ctx context.Context, yield Yield, args ...any) any {
		return len(args)
	}, "a", "b")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Status != StatusSuccess || out.Data != 2 || out.Steps != 0 {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestRunViolations(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		seq  Sequence
		code errors.ErrorCode
	}{
		{
			name: "nil result",
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				yield(nil)
				return nil
			},
			code: errors.ErrCodeNilResult,
		},
		{
			name: "panic",
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				panic("boom")
			},
			code: errors.ErrCodePanic,
		},
		{
			name: "panic after yield",
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				yield(result.Success(1))
				panic(stderrors.New("boom"))
			},
			code: errors.ErrCodePanic,
		},
		{
			name: "pending binding rejected",
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				s := yeet.MustNew(ctx, defaultOps())
				s.Bind("first")
				s.Bind("second")
				return nil
			},
			code: errors.ErrCodePendingOpen,
		},
		{
			name: "step limit",
			cfg:  Config{MaxSteps: 2},
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				for i := 0; yield(result.Success(i)); i++ {
				}
				return nil
			},
			code: errors.ErrCodeStepLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t, tt.cfg)
			out, err := r.Run(context.Background(), tt.seq)
			if out != nil {
				t.Errorf("expected no outcome, got %+v", out)
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestRunPanicKeepsCause(t *testing.T) {
	r := newRunner(t, Config{})
	cause := stderrors.New("boom")

	_, err := r.Run(context.Background(), func(ctx context.Context, yield Yield, args ...any) any {
		panic(cause)
	})
	if !stderrors.Is(err, cause) {
		t.Errorf("expected the panic value as cause, got %v", err)
	}
}

func TestRunStepLimitAllowsStopAtBoundary(t *testing.T) {
	r := newRunner(t, Config{MaxSteps: 1})

	out, err := r.Run(context.Background(), func(ctx context.Context, yield Yield, args ...any) any {
		yield(result.Success(1))
		yield(result.Stop("done"))
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Stopped() || out.Data != "done" {
		t.Errorf("expected stop 'done', got %+v", out)
	}
}

func TestRunCancelled(t *testing.T) {
	r := newRunner(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cleaned := false

	seq := func(ctx context.Context, yield Yield, args ...any) any {
		defer func() { cleaned = true }()
		cancel()
		if !yield(result.Success(1)) {
			return nil
		}
		yield(result.Success(2))
		return nil
	}

	out, err := r.Run(ctx, seq)
	if out != nil {
		t.Errorf("expected no outcome, got %+v", out)
	}
	if !errors.HasCode(err, errors.ErrCodeCancelled) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled cause, got %v", err)
	}
	if !cleaned {
		t.Error("sequence cleanup must run on cancellation")
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	r := newRunner(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	started := false

	_, err := r.Run(ctx, func(ctx context.Context, yield Yield, args ...any) any {
		started = true
		return nil
	})
	if !errors.HasCode(err, errors.ErrCodeCancelled) {
		t.Errorf("expected CANCELLED, got %v", err)
	}
	if started {
		t.Error("sequence must not start on a cancelled context")
	}
}

func TestRunLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	r := newRunner(t, Config{Name: "profile"},
		WithLogger(log),
		WithIDGenerator(func() string { return "run-1" }),
	)

	out, err := r.Run(context.Background(), profile(defaultOps(), yeet.WithLogger(log)), 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.RunID != "run-1" {
		t.Errorf("expected run id 'run-1', got %q", out.RunID)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var sawBinding, sawStop bool
	for _, line := range lines {
		if !strings.Contains(line, `"run_id":"run-1"`) {
			t.Errorf("log line without run id: %s", line)
		}
		if strings.Contains(line, "binding opened") {
			sawBinding = true
		}
		if strings.Contains(line, "run stopped") {
			sawStop = true
			if !strings.Contains(line, `"reason":"no id"`) || !strings.Contains(line, `"runner":"profile"`) {
				t.Errorf("stop line missing fields: %s", line)
			}
		}
	}
	if !sawBinding || !sawStop {
		t.Errorf("expected stack and runner log lines, got:\n%s", buf.String())
	}
}

func TestRunFailureLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		ctx   func() context.Context
		seq   Sequence
		level string
		msg   string
	}{
		{
			name: "cancelled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			seq:   func(ctx context.Context, yield Yield, args ...any) any { return nil },
			level: `"level":"info"`,
			msg:   "run ended early",
		},
		{
			name: "nil result",
			ctx:  context.Background,
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				yield(nil)
				return nil
			},
			level: `"level":"error"`,
			msg:   "run aborted",
		},
		{
			name: "name conflict",
			ctx:  context.Background,
			seq: func(ctx context.Context, yield Yield, args ...any) any {
				s := yeet.MustNew(ctx, defaultOps())
				s.Bind("getUser")
				return nil
			},
			level: `"level":"error"`,
			msg:   "run aborted",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := newRunner(t, Config{}, WithLogger(logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)))

			if _, err := r.Run(tc.ctx(), tc.seq); err == nil {
				t.Fatal("expected an error")
			}

			var found bool
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				if strings.Contains(line, tc.msg) {
					found = true
					if !strings.Contains(line, tc.level) {
						t.Errorf("expected %s, got: %s", tc.level, line)
					}
				}
			}
			if !found {
				t.Errorf("expected %q line, got:\n%s", tc.msg, buf.String())
			}
		})
	}
}

func TestRunSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := newRunner(t, Config{Name: "profile"}, WithIDGenerator(func() string { return "run-2" }))
	if _, err := r.Run(context.Background(), profile(defaultOps()), 4); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var run sdktrace.ReadOnlySpan
	var ops []sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		switch s.Name() {
		case observability.SpanRun:
			run = s
		case observability.SpanOperation:
			ops = append(ops, s)
		}
	}
	if run == nil {
		t.Fatal("expected a run span")
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operation spans, got %d", len(ops))
	}
	for _, op := range ops {
		if op.Parent().SpanID() != run.SpanContext().SpanID() {
			t.Errorf("operation span %v is not a child of the run span", op.Attributes())
		}
	}

	attrs := map[string]string{}
	for _, kv := range run.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	want := map[string]string{
		observability.AttrRunID:  "run-2",
		observability.AttrRunner: "profile",
		observability.AttrStatus: "success",
		observability.AttrSteps:  "2",
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("run span attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	r := newRunner(t, Config{Name: "profile", MaxSteps: 1}, WithMetrics(metrics))
	ctx := context.Background()
	_, _ = r.Run(ctx, profile(defaultOps()), 0)
	_, _ = r.Run(ctx, profile(defaultOps()), 5)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				key := m.Name
				if v, ok := dp.Attributes.Value(attribute.Key("status")); ok {
					key += "/" + v.AsString()
				}
				if v, ok := dp.Attributes.Value(attribute.Key("code")); ok {
					key += "/" + v.AsString()
				}
				counts[key] += dp.Value
			}
		}
	}

	want := map[string]int64{
		"yeet.run.total/stopped":          1,
		"yeet.violation.total/STEP_LIMIT": 1,
		"yeet.operation.total":            3,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("metric counts mismatch (-want +got):\n%s", diff)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{MaxSteps: -1})
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}

	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Name != "default" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
}

func TestPackageRun(t *testing.T) {
	out, err := Run(context.Background(), func(ctx context.Context, yield Yield, args ...any) any {
		if !yield(result.Success(args[0])) {
			return nil
		}
		return "done"
	}, 42)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Data != "done" || !cmp.Equal([]any{42}, out.Yields) {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestPackageRunUsesCurrentGlobalLogger(t *testing.T) {
	prev := logger.GetGlobalLogger()
	t.Cleanup(func() { logger.SetGlobalLogger(prev) })

	// Run once before swapping so a cached logger would show up.
	if _, err := Run(context.Background(), func(ctx context.Context, yield Yield, args ...any) any { return nil }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf bytes.Buffer
	logger.SetGlobalLogger(logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf))

	out, err := Run(context.Background(), func(ctx context.Context, yield Yield, args ...any) any {
		yield(result.Stop("halt"))
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Stopped() {
		t.Fatalf("expected a stopped run, got %+v", out)
	}
	if !strings.Contains(buf.String(), "run stopped") {
		t.Errorf("expected stop logged through the new global logger, got:\n%s", buf.String())
	}
}
