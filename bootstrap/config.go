package bootstrap

import (
	"time"

	"github.com/kbukum/yeet/config"
	"github.com/kbukum/yeet/validation"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) satisfies
// GetServiceConfig via promoted methods.
//
// Example:
//
//	type DemoConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Runner runner.Config `yaml:"runner" mapstructure:"runner"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

// TelemetryConfig selects the OTLP collector receiving traces and metrics.
// Telemetry stays disabled while Endpoint is empty. An unset SampleRate
// samples every trace; an explicit 0 samples none.
type TelemetryConfig struct {
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate *float64      `yaml:"sample_rate" mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults applies default values to the telemetry configuration.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.SampleRate == nil {
		rate := 1.0
		c.SampleRate = &rate
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate validates the telemetry configuration.
func (c *TelemetryConfig) Validate() error {
	return validation.Validate(c)
}

// Enabled reports whether an OTLP endpoint is configured.
func (c *TelemetryConfig) Enabled() bool {
	return c.Endpoint != ""
}
