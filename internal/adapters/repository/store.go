// Package repository persists raw player records and the store generation
// counter that tells readers when those records changed.
package repository

import (
	"context"

	"github.com/okian/cujulink/internal/domain/model"
)

// Store provides read/write access to raw player records.
//
// Every successful write bumps the generation exactly once, so readers may
// cache anything derived from ListAll until Generation changes.
type Store interface {
	// ListAll returns every record in a stable order.
	ListAll(ctx context.Context) ([]model.RawRecord, error)

	// Get returns the record with the given canonical key.
	// Returns ErrNotFound if the key is unknown.
	Get(ctx context.Context, key string) (model.RawRecord, error)

	// Upsert inserts or replaces records by key and returns how many were written.
	Upsert(ctx context.Context, records []model.RawRecord) (int, error)

	// Replace removes every record and stores records in one transaction.
	Replace(ctx context.Context, records []model.RawRecord) (int, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Generation returns the current store generation.
	Generation(ctx context.Context) (uint64, error)

	// Close releases the underlying resources.
	Close() error
}
