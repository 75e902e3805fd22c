package queue

type options struct {
	capacity int
	name     string
}

// Option applies a configuration option to an InMemoryQueue.
type Option func(*options)

// WithCapacity sets the maximum number of queued items.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithName labels the queue in metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
