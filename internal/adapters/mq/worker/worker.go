// Package worker runs pools of goroutines that drain a queue through a handler.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cujulink/pkg/logger"
	"github.com/okian/cujulink/pkg/metrics"
)

// Handler processes one item taken off a queue.
type Handler[T any] interface {
	Handle(ctx context.Context, item T) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[T any] func(ctx context.Context, item T) error

// Handle calls f.
func (f HandlerFunc[T]) Handle(ctx context.Context, item T) error { return f(ctx, item) }

// Source defines how workers receive items. queue.InMemoryQueue satisfies it.
type Source[T any] interface {
	Dequeue() <-chan T
}

// InMemoryWorker takes items from a source until it is drained, ctx is done
// or Shutdown is called. Handler errors are logged and counted, never fatal.
type InMemoryWorker[T any] struct {
	source  Source[T]
	handler Handler[T]
	name    string
	pool    string
	failed  *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker[T any](source Source[T], handler Handler[T], opts ...Option) *InMemoryWorker[T] {
	c := config{name: "worker", pool: "default"}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named(c.pool)
	}
	return &InMemoryWorker[T]{
		source:   source,
		handler:  handler,
		name:     c.name,
		pool:     c.pool,
		failed:   new(atomic.Int64),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   c.logger.With(logger.String("worker", c.name)),
	}
}

// Run processes items until the source channel closes, ctx is canceled or
// Shutdown is called.
func (w *InMemoryWorker[T]) Run(ctx context.Context) {
	defer close(w.done)

	items := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case item, ok := <-items:
			if !ok {
				return
			}
			w.process(ctx, item)
		}
	}
}

// Shutdown stops the worker after its current item.
func (w *InMemoryWorker[T]) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker[T]) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker[T]) process(ctx context.Context, item T) {
	start := time.Now()
	err := w.handler.Handle(ctx, item)
	ms := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerJob(w.pool, "failed", ms)
		w.logger.Error(ctx, "job failed", logger.Error(err))
		return
	}
	metrics.RecordWorkerJob(w.pool, "ok", ms)
}

// Pool manages multiple workers sharing one source and handler.
type Pool[T any] struct {
	workers []*InMemoryWorker[T]
	failed  atomic.Int64
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers; values below one mean one per CPU.
func NewPool[T any](workerCount int, source Source[T], handler Handler[T], opts ...Option) *Pool[T] {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	c := config{pool: "default"}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named(c.pool)
	}

	p := &Pool[T]{
		workers: make([]*InMemoryWorker[T], workerCount),
		logger:  c.logger,
	}
	for i := range p.workers {
		w := NewInMemoryWorker(source, handler,
			WithPool(c.pool),
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(c.logger),
		)
		w.failed = &p.failed
		p.workers[i] = w
	}
	return p
}

// Start starts all workers in the pool.
func (p *Pool[T]) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned, which happens once the source
// is closed and drained or ctx passed to Start is done.
func (p *Pool[T]) Wait() {
	for _, w := range p.workers {
		<-w.done
	}
}

// Failed returns how many jobs returned an error.
func (p *Pool[T]) Failed() int64 { return p.failed.Load() }

// Size returns the number of workers.
func (p *Pool[T]) Size() int { return len(p.workers) }

// Shutdown stops all workers, giving up when ctx is done.
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			firstErr = err
		}
	}
	return firstErr
}
