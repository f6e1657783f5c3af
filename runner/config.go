package runner

import "github.com/kbukum/yeet/validation"

// Config holds the file-configurable runner settings.
type Config struct {
	// Name labels the runner in logs, spans and metrics.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	// MaxSteps aborts a run after this many suspensions (0 = unlimited).
	MaxSteps int `yaml:"max_steps" mapstructure:"max_steps" validate:"gte=0"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
