package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/cujulink/internal/domain/model"
)

// MemoryStore is an in-process Store. Records keep their first insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]model.RawRecord
	gen     atomic.Uint64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.RawRecord)}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// ListAll returns every record in insertion order.
func (s *MemoryStore) ListAll(_ context.Context) ([]model.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RawRecord, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.records[k])
	}
	return out, nil
}

// Get returns the record with the given key.
func (s *MemoryStore) Get(_ context.Context, key string) (model.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key]
	if !ok {
		return model.RawRecord{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return r, nil
}

// Upsert inserts or replaces records by key.
func (s *MemoryStore) Upsert(_ context.Context, records []model.RawRecord) (int, error) {
	return s.write(false, records)
}

// Replace drops every record before storing records.
func (s *MemoryStore) Replace(_ context.Context, records []model.RawRecord) (int, error) {
	return s.write(true, records)
}

func (s *MemoryStore) write(truncate bool, records []model.RawRecord) (int, error) {
	for _, r := range records {
		if r.Key == "" {
			return 0, fmt.Errorf("%w: %q", ErrEmptyKey, r.DisplayName)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if truncate {
		s.order = nil
		s.records = make(map[string]model.RawRecord, len(records))
	}
	for _, r := range records {
		r.ClubCareer = orEmptyList(r.ClubCareer)
		r.IntlCareer = orEmptyList(r.IntlCareer)
		if _, ok := s.records[r.Key]; !ok {
			s.order = append(s.order, r.Key)
		}
		s.records[r.Key] = r
	}
	s.gen.Add(1)
	return len(records), nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Generation returns the current store generation.
func (s *MemoryStore) Generation(_ context.Context) (uint64, error) {
	return s.gen.Load(), nil
}
