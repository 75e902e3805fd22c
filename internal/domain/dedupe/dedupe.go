// Package dedupe tracks which identities have already been seen.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records identities and reports repeats.
type Deduper interface {
	// SeenAndRecord reports whether id was seen before and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be recorded again.
	Unrecord(ctx context.Context, id string)

	// Size returns how many identities are recorded.
	Size() int64
}

// inMemoryDeduper is a mutex-guarded set. Ids are passed through the
// normalizer first, so spellings that normalize alike collide.
type inMemoryDeduper struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	normalize func(string) string
}

// NewInMemoryDeduper creates a deduper. Without WithNormalizer ids are compared as given.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		seen:      make(map[string]struct{}),
		normalize: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	key := d.normalize(id)
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	key := d.normalize(id)
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
