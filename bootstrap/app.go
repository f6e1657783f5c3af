package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/yeet/logger"
	"github.com/kbukum/yeet/observability"
)

const meterName = "github.com/kbukum/yeet"

// App represents a yeet binary with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config interface.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	// Metrics records yeet instruments on the global meter provider. It is
	// set once startup has installed telemetry.
	Metrics *observability.Metrics

	telemetry       *TelemetryConfig
	gracefulTimeout time.Duration

	onStart []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.telemetry != nil {
		tc := *o.telemetry
		tc.ApplyDefaults()
		if err := tc.Validate(); err != nil {
			return nil, fmt.Errorf("telemetry validation: %w", err)
		}
		app.telemetry = &tc
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	return app, nil
}

// RunTask executes a finite task with the full bootstrap lifecycle. The task
// context is cancelled on SIGINT/SIGTERM or when ctx is done. Stop hooks
// run whether or not the task succeeds; the task error takes precedence.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, cancelling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup installs telemetry and runs start hooks.
func (a *App[C]) startup(ctx context.Context) error {
	a.Logger.Debug("starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if a.telemetry != nil && a.telemetry.Enabled() {
		if err := a.initTelemetry(ctx); err != nil {
			return fmt.Errorf("telemetry initialization failed: %w", err)
		}
	}

	metrics, err := observability.NewMetrics(observability.Meter(meterName))
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}
	a.Metrics = metrics

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	return nil
}

// initTelemetry installs OTLP tracer and meter providers and registers their
// shutdown as stop hooks.
func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()

	tc := observability.DefaultTracerConfig(a.Name)
	tc.ServiceVersion = a.Version
	tc.Environment = base.Environment
	tc.Endpoint = a.telemetry.Endpoint
	tc.Insecure = a.telemetry.Insecure
	tc.SampleRate = *a.telemetry.SampleRate

	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		return err
	}
	a.OnStop(tp.Shutdown)

	mc := observability.DefaultMeterConfig(a.Name)
	mc.ServiceVersion = a.Version
	mc.Environment = base.Environment
	mc.Endpoint = a.telemetry.Endpoint
	mc.Insecure = a.telemetry.Insecure
	mc.Interval = a.telemetry.Interval

	mp, err := observability.InitMeter(ctx, &mc)
	if err != nil {
		return err
	}
	a.OnStop(mp.Shutdown)
	return nil
}

// stop runs stop hooks within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := runHooksReverse(ctx, a.onStop); err != nil {
		a.Logger.Error("shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	a.Logger.Debug("application stopped")
	return nil
}
