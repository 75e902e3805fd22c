// Package queue provides a bounded in-memory queue feeding worker pools.
package queue

import (
	"context"
	"sync"

	"github.com/okian/cujulink/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultName          = "default"
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item. Returns false if the queue is full, closed or ctx is done.
	Enqueue(ctx context.Context, item T) bool

	// Dequeue returns the channel items are delivered on. It is closed once
	// the queue is closed and drained.
	Dequeue() <-chan T

	// Len returns the current number of queued items.
	Len() int

	// Close stops accepting items. Queued items stay readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items    chan T
	capacity int
	name     string

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	o := options{capacity: defaultQueueCapacity, name: defaultName}
	for _, opt := range opts {
		opt(&o)
	}
	q := &InMemoryQueue[T]{
		items:    make(chan T, o.capacity),
		capacity: o.capacity,
		name:     o.name,
	}
	metrics.UpdateQueueSize(q.name, 0)
	return q
}

// Enqueue adds an item to the queue without blocking.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected(q.name, "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueRejected(q.name, "context_canceled")
		return false
	}

	select {
	case q.items <- item:
		metrics.UpdateQueueSize(q.name, len(q.items))
		return true
	default:
		metrics.RecordQueueRejected(q.name, "full")
		return false
	}
}

// Dequeue returns the channel items are delivered on.
func (q *InMemoryQueue[T]) Dequeue() <-chan T {
	return q.items
}

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len() int {
	n := len(q.items)
	metrics.UpdateQueueSize(q.name, n)
	return n
}

// Cap returns the configured capacity.
func (q *InMemoryQueue[T]) Cap() int { return q.capacity }

// Close gracefully shuts down the queue. It is safe to call more than once.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
