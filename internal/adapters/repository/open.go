package repository

import (
	"context"
	"fmt"
)

// Store drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Open returns the store for driver. path is ignored by the memory driver.
func Open(ctx context.Context, driver, path string, opts ...Option) (Store, error) {
	switch driver {
	case DriverSQLite:
		s, err := OpenSQLite(ctx, path, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverBolt:
		s, err := OpenBolt(ctx, path, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, driver)
	}
}
