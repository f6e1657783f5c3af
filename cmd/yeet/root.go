package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/yeet/bootstrap"
	"github.com/kbukum/yeet/config"
	"github.com/kbukum/yeet/runner"
	"github.com/kbukum/yeet/version"
	"github.com/kbukum/yeet/yeet"
)

const appName = "yeet"

// appConfig is the file layout read by LoadConfig; flags override it.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Runner               runner.Config             `yaml:"runner" mapstructure:"runner"`
	Yeet                 yeet.Config               `yaml:"yeet" mapstructure:"yeet"`
	Telemetry            bootstrap.TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

func (c *appConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Runner.ApplyDefaults()
	c.Yeet.ApplyDefaults()
}

func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Runner.Validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	if err := c.Yeet.Validate(); err != nil {
		return fmt.Errorf("yeet: %w", err)
	}
	return nil
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile    string
	logLevel      string
	pendingPolicy string
	otlpEndpoint  string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   appName,
		Short: "Sequence named, fallible operations",
		Long: "yeet registers named operations, records their results under bindings\n" +
			"and drives sequences that stop at the first failure.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version.Get().Short(),
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "path to a YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	pf.StringVar(&flags.pendingPolicy, "pending-policy", "", "pending binding policy (reject, overwrite)")
	pf.StringVar(&flags.otlpEndpoint, "otlp-endpoint", "", "OTLP HTTP collector host:port for traces and metrics")

	root.AddCommand(newDemoCmd(&flags))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the config file and environment, then applies flag
// overrides. Defaults and validation run in bootstrap.NewApp.
func loadConfig(flags *globalFlags) (*appConfig, error) {
	var opts []config.LoaderOption
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}

	cfg := &appConfig{}
	if err := config.LoadConfig(appName, cfg, opts...); err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.pendingPolicy != "" {
		cfg.Yeet.PendingPolicy = flags.pendingPolicy
	}
	if flags.otlpEndpoint != "" {
		cfg.Telemetry.Endpoint = flags.otlpEndpoint
	}
	return cfg, nil
}
