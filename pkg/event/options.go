package event

import "github.com/rs/zerolog"

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for subscription and queue diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	priority int32
	name     string
}

// WithPriority sets the listener priority. Higher priorities run first; the default is 0.
func WithPriority(priority int32) SubscribeOption {
	return func(c *subscribeConfig) {
		c.priority = priority
	}
}

// WithName labels the listener in debug logs.
func WithName(name string) SubscribeOption {
	return func(c *subscribeConfig) {
		c.name = name
	}
}

func newSubscribeConfig(opts []SubscribeOption) subscribeConfig {
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
