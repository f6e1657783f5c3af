package yeet

import (
	"github.com/kbukum/yeet/logger"
	"github.com/kbukum/yeet/observability"
	"github.com/kbukum/yeet/validation"
)

// PendingPolicy decides what happens when a binding is opened while
// another one is still waiting for a call.
type PendingPolicy string

const (
	// PendingReject panics with a PENDING_OPEN error.
	PendingReject PendingPolicy = "reject"
	// PendingOverwrite discards the earlier binding and logs a warning.
	PendingOverwrite PendingPolicy = "overwrite"
)

// Config holds the file-configurable Stack settings.
type Config struct {
	PendingPolicy string `yaml:"pending_policy" mapstructure:"pending_policy" validate:"omitempty,oneof=reject overwrite"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.PendingPolicy == "" {
		c.PendingPolicy = string(PendingReject)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Option configures a Stack.
type Option func(*Stack)

// WithConfig applies file configuration to the Stack.
func WithConfig(cfg Config) Option {
	return func(s *Stack) {
		if cfg.PendingPolicy != "" {
			s.policy = PendingPolicy(cfg.PendingPolicy)
		}
	}
}

// WithPendingPolicy sets how a second pending binding is handled.
func WithPendingPolicy(p PendingPolicy) Option {
	return func(s *Stack) { s.policy = p }
}

// WithLogger sets the Stack logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Stack) { s.log = l }
}

// WithMetrics records operation metrics. Without it the Stack uses metrics
// found in its context, if any.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Stack) { s.metrics = m }
}
