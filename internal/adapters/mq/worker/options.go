package worker

import (
	"github.com/okian/cujulink/pkg/logger"
)

type config struct {
	name   string
	pool   string
	logger logger.Logger
}

// Option applies a configuration option to a worker or pool.
type Option func(*config)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithPool labels the pool in logs and metrics.
func WithPool(pool string) Option {
	return func(c *config) {
		if pool != "" {
			c.pool = pool
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
