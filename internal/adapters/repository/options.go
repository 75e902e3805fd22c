package repository

import "time"

const (
	defaultBusyTimeout = 5 * time.Second
	defaultOpenTimeout = time.Second
)

type options struct {
	busyTimeout time.Duration
	openTimeout time.Duration
	wal         bool
}

func defaultOptions() options {
	return options{busyTimeout: defaultBusyTimeout, openTimeout: defaultOpenTimeout, wal: true}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithOpenTimeout sets how long bbolt waits for the file lock when opening.
func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.openTimeout = d
		}
	}
}

// WithWAL toggles SQLite write-ahead logging.
func WithWAL(enabled bool) Option {
	return func(o *options) {
		o.wal = enabled
	}
}
