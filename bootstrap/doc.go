// Package bootstrap runs yeet binaries as finite tasks with a uniform
// lifecycle.
//
// NewApp applies defaults to a typed configuration, validates it and
// initializes the logger. RunTask then installs OpenTelemetry providers when
// an OTLP endpoint is configured, runs start hooks, executes the task with a
// context cancelled on SIGINT or SIGTERM, and finally runs stop hooks within
// the graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithTelemetry(cfg.Telemetry))
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := demo(ctx, app.Metrics)
//	    return err
//	})
package bootstrap
