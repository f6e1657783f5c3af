package runner

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/yeet/errors"
	"github.com/kbukum/yeet/logger"
	"github.com/kbukum/yeet/observability"
	"github.com/kbukum/yeet/result"
)

// Yield hands a Result to the runner. It returns false once the run is
// over; the sequence must then return without yielding again.
type Yield func(result.Result) bool

// Sequence is the caller's chaining logic. Its return value becomes
// Outcome.Data when it finishes without a stop.
type Sequence func(ctx context.Context, yield Yield, args ...any) any

// Runner drives sequences. A Runner holds no per-run state and may be used
// by concurrent runs.
type Runner struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
	newID   func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the Runner logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics records run and operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithIDGenerator replaces the UUID run identifier source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// New creates a Runner from cfg after applying defaults and validation.
func New(cfg Config, opts ...Option) (*Runner, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg, newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("runner")
	}
	r.log = r.log.WithFields(logger.Fields(logger.FieldRunner, cfg.Name))
	return r, nil
}

// Run drives seq with a default-configured runner. The runner is built per
// call, so it logs through whatever global logger is current.
func Run(ctx context.Context, seq Sequence, args ...any) (*Outcome, error) {
	r, err := New(Config{})
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, seq, args...)
}

// Run starts seq with args and resumes it after every successful Result.
//
// The first stop cancels the sequence and is reported as StatusStopped with
// the stop reason as Data. When the sequence returns on its own the run is
// StatusSuccess with the returned value as Data.
//
// Run returns an error only when the sequence breaks the protocol (a nil
// Result, a panic, more than MaxSteps suspensions) or ctx is cancelled
// between steps. The sequence has always finished by the time Run returns.
func (r *Runner) Run(ctx context.Context, seq Sequence, args ...any) (out *Outcome, err error) {
	start := time.Now()
	runID := r.newID()
	log := r.log.WithRunID(runID)

	ctx = logger.ContextWithRunID(ctx, runID)
	if r.metrics != nil {
		ctx = observability.ContextWithMetrics(ctx, r.metrics)
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)
	observability.SetSpanAttribute(ctx, observability.AttrRunner, r.cfg.Name)

	var final any
	next, stop := iter.Pull(func(yield func(result.Result) bool) {
		final = seq(ctx, yield, args...)
	})

	outcome := &Outcome{RunID: runID, Yields: []any{}}

	defer func() {
		if rec := recover(); rec != nil {
			err = violation(rec)
		}
		if err != nil {
			out = nil
			r.fail(ctx, log, outcome.Steps, err)
			return
		}
		outcome.Duration = time.Since(start)
		r.finish(ctx, log, outcome)
	}()
	defer stop()

	log.Debug("run started")
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Cancelled(ctxErr)
		}

		res, ok := next()
		if !ok {
			break
		}
		outcome.Steps++

		if res == nil {
			return nil, errors.NilResult("sequence").WithDetail(logger.FieldStep, outcome.Steps)
		}
		if res.IsStop() {
			stop()
			outcome.Status = StatusStopped
			outcome.Data = res.Extract()
			return outcome, nil
		}
		if r.cfg.MaxSteps > 0 && outcome.Steps > r.cfg.MaxSteps {
			return nil, errors.StepLimit(r.cfg.MaxSteps)
		}
		outcome.Yields = append(outcome.Yields, res.Extract())
	}

	outcome.Status = StatusSuccess
	outcome.Data = final
	return outcome, nil
}

func (r *Runner) finish(ctx context.Context, log *logger.Logger, out *Outcome) {
	observability.SetSpanAttribute(ctx, observability.AttrStatus, string(out.Status))
	observability.SetSpanAttribute(ctx, observability.AttrSteps, out.Steps)
	if r.metrics != nil {
		r.metrics.RecordRun(ctx, r.cfg.Name, string(out.Status), out.Steps)
	}

	fields := logger.Fields(
		logger.FieldStatus, out.Status,
		logger.FieldStep, out.Steps,
		logger.FieldDuration, out.Duration.Milliseconds(),
	)
	if out.Stopped() {
		fields[logger.FieldReason] = reason(out.Data)
		log.Info("run stopped", fields)
		return
	}
	log.Debug("run succeeded", fields)
}

func (r *Runner) fail(ctx context.Context, log *logger.Logger, steps int, err error) {
	observability.SetSpanError(ctx, err)
	code := "unknown"
	if e, ok := errors.As(err); ok {
		code = string(e.Code)
	}
	if r.metrics != nil {
		r.metrics.RecordViolation(ctx, r.cfg.Name, code)
	}

	fields := logger.Fields(logger.FieldStep, steps, "code", code)
	if !errors.IsProtocolCode(errors.ErrorCode(code)) {
		log.WithError(err).Info("run ended early", fields)
		return
	}
	log.WithError(err).Error("run aborted", fields)
}

func reason(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

// violation converts a recovered panic into an error. Panics raised with an
// *errors.Error, such as a rejected pending binding, keep their code.
func violation(rec any) error {
	if e, ok := rec.(*errors.Error); ok {
		return e
	}
	return errors.Panic(rec)
}
