package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/cujulink/internal/domain/model"
	"github.com/okian/cujulink/pkg/metrics"
)

// Source supplies raw records and the generation they belong to.
// repository.Store satisfies it.
type Source interface {
	ListAll(ctx context.Context) ([]model.RawRecord, error)
	Generation(ctx context.Context) (uint64, error)
}

// Built is a snapshot together with how it was built.
type Built struct {
	Snapshot *model.Snapshot
	Report   BuildReport
	BuiltAt  time.Time
}

// Loader hands out snapshots. With caching on, the last snapshot is reused
// until the source generation changes; otherwise every call rebuilds.
// Concurrent rebuilds of the same generation are collapsed into one.
type Loader struct {
	src     Source
	builder *Builder
	cache   bool

	current atomic.Pointer[Built]
	group   singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache enables or disables reuse of the last snapshot.
func WithCache(enabled bool) Option {
	return func(l *Loader) { l.cache = enabled }
}

// WithBuilder replaces the default Builder.
func WithBuilder(b *Builder) Option {
	return func(l *Loader) {
		if b != nil {
			l.builder = b
		}
	}
}

// NewLoader returns a Loader reading from src. Caching is on by default.
func NewLoader(src Source, opts ...Option) *Loader {
	l := &Loader{src: src, cache: true}
	for _, opt := range opts {
		opt(l)
	}
	if l.builder == nil {
		l.builder = NewBuilder()
	}
	return l
}

// Snapshot returns a snapshot of the source's current records.
func (l *Loader) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	b, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Snapshot, nil
}

// Load is Snapshot with the build details.
func (l *Loader) Load(ctx context.Context) (*Built, error) {
	gen, err := l.src.Generation(ctx)
	if err != nil {
		return nil, fmt.Errorf("read generation: %w", err)
	}
	metrics.UpdateStoreGeneration(gen)

	if l.cache {
		if cur := l.current.Load(); cur != nil && cur.Snapshot.Generation() == gen {
			metrics.RecordSnapshotCacheHit()
			return cur, nil
		}
		metrics.RecordSnapshotCacheMiss()
	}

	v, err, _ := l.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		raws, err := l.src.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		snap, rep := l.builder.Build(ctx, gen, raws)
		built := &Built{Snapshot: snap, Report: rep, BuiltAt: time.Now()}
		l.current.Store(built)
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Built), nil
}

// Last returns the most recently built snapshot, if any.
func (l *Loader) Last() (*Built, bool) {
	b := l.current.Load()
	return b, b != nil
}

// Cached reports whether snapshots are reused across calls.
func (l *Loader) Cached() bool { return l.cache }
