package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/yeet/bootstrap"
	"github.com/kbukum/yeet/logger"
	"github.com/kbukum/yeet/result"
	"github.com/kbukum/yeet/runner"
	"github.com/kbukum/yeet/yeet"
)

type profileUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type profileAddress struct {
	City string      `json:"city"`
	User profileUser `json:"user"`
}

// demoFlags select which lookups fail.
type demoFlags struct {
	id          int
	failUser    bool
	failAddress bool
}

func newDemoCmd(global *globalFlags) *cobra.Command {
	var flags demoFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a user profile from two chained lookups",
		Long: `Registers getUser and getAddress, binds their results to "user" and
"address", passes the stored user into getAddress by name, and prints the
run outcome as JSON. A failing lookup stops the run; earlier results remain
in the yields.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, global, flags)
		},
	}

	cmd.Flags().IntVar(&flags.id, "id", 7, "user id to look up (0 stops with \"no id\")")
	cmd.Flags().BoolVar(&flags.failUser, "fail-user", false, "make getUser stop with \"no user\"")
	cmd.Flags().BoolVar(&flags.failAddress, "fail-address", false, "make getAddress stop with \"no address\"")
	return cmd
}

func runDemo(cmd *cobra.Command, global *globalFlags, flags demoFlags) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithTelemetry(cfg.Telemetry))
	if err != nil {
		return err
	}

	reg, err := yeet.NewRegistry(demoOperations(flags))
	if err != nil {
		return err
	}

	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		r, err := runner.New(cfg.Runner,
			runner.WithLogger(logger.Get("runner")),
			runner.WithMetrics(app.Metrics),
		)
		if err != nil {
			return err
		}

		out, err := r.Run(ctx, profileSequence(reg, cfg.Yeet), flags.id)
		if err != nil {
			return err
		}
		return writeOutcome(cmd.OutOrStdout(), out)
	})
}

func demoOperations(flags demoFlags) yeet.Operations {
	return yeet.Operations{
		"getUser": func(args ...any) result.Result {
			id, _ := args[0].(int)
			switch {
			case id == 0:
				return result.Stop("no id")
			case flags.failUser:
				return result.Stop("no user")
			}
			return result.Success(profileUser{ID: id, Name: "Jim", Age: 41})
		},
		"getAddress": func(args ...any) result.Result {
			u, ok := args[0].(profileUser)
			if !ok || flags.failAddress {
				return result.Stop("no address")
			}
			return result.Success(profileAddress{City: "Melbourne", User: u})
		},
	}
}

// profileSequence looks up the user, then their address by binding name,
// then fetches a second user without recording it.
func profileSequence(reg *yeet.Registry, cfg yeet.Config) runner.Sequence {
	return func(ctx context.Context, yield runner.Yield, args ...any) any {
		s, err := yeet.NewWithRegistry(ctx, reg, yeet.WithConfig(cfg), yeet.WithLogger(logger.Get("yeet")))
		if err != nil {
			// The runner reports this as a violation carrying the error code.
			panic(err)
		}

		if !yield(s.Bind("user").Call("getUser", args...)) {
			return nil
		}
		if !yield(s.Bind("address").Call("getAddress", "user")) {
			return nil
		}
		if !yield(s.Call("getUser", 5)) {
			return nil
		}
		return s.Yoink()
	}
}

// outcomeView renders an Outcome with error reasons as text.
type outcomeView struct {
	RunID      string        `json:"run_id"`
	Status     runner.Status `json:"status"`
	Data       any           `json:"data"`
	Yields     []any         `json:"yields"`
	Steps      int           `json:"steps"`
	DurationMS int64         `json:"duration_ms"`
}

func writeOutcome(w io.Writer, out *runner.Outcome) error {
	data := out.Data
	if err, ok := data.(error); ok {
		data = err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomeView{
		RunID:      out.RunID,
		Status:     out.Status,
		Data:       data,
		Yields:     out.Yields,
		Steps:      out.Steps,
		DurationMS: out.Duration.Milliseconds(),
	})
}
