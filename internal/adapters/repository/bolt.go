package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/okian/cujulink/internal/domain/model"
)

// Bucket keys
var (
	bucketPlayers = []byte("players")
	bucketMeta    = []byte("meta")
	keyGeneration = []byte("generation")
)

// BoltStore is a Store backed by a bbolt file. Players live in one bucket as
// JSON values keyed by canonical key, so ListAll returns them in key order.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens (or creates) a bbolt database at path.
func OpenBolt(_ context.Context, path string, opts ...Option) (*BoltStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: o.openTimeout})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPlayers); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// ListAll returns every record ordered by key.
func (s *BoltStore) ListAll(ctx context.Context) ([]model.RawRecord, error) {
	var out []model.RawRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlayers).ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r model.RawRecord
			// Unmarshal copies, so v does not escape the transaction.
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return out, nil
}

// Get returns the record with the given key.
func (s *BoltStore) Get(_ context.Context, key string) (model.RawRecord, error) {
	var (
		r     model.RawRecord
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPlayers).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &r)
	})
	if err != nil {
		return model.RawRecord{}, fmt.Errorf("get player: %w", err)
	}
	if !found {
		return model.RawRecord{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return r, nil
}

// Upsert inserts or replaces records by key.
func (s *BoltStore) Upsert(ctx context.Context, records []model.RawRecord) (int, error) {
	return s.write(ctx, false, records)
}

// Replace drops every record before storing records.
func (s *BoltStore) Replace(ctx context.Context, records []model.RawRecord) (int, error) {
	return s.write(ctx, true, records)
}

func (s *BoltStore) write(ctx context.Context, truncate bool, records []model.RawRecord) (int, error) {
	encoded := make([][]byte, len(records))
	for i, r := range records {
		if r.Key == "" {
			return 0, fmt.Errorf("%w: %q", ErrEmptyKey, r.DisplayName)
		}
		r.ClubCareer = orEmptyList(r.ClubCareer)
		r.IntlCareer = orEmptyList(r.IntlCareer)
		b, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", r.Key, err)
		}
		encoded[i] = b
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if truncate {
			if err := tx.DeleteBucket(bucketPlayers); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucketPlayers); err != nil {
				return err
			}
		}
		players := tx.Bucket(bucketPlayers)
		for i, r := range records {
			if err := players.Put([]byte(r.Key), encoded[i]); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		next := decodeGeneration(meta.Get(keyGeneration)) + 1
		return meta.Put(keyGeneration, encodeGeneration(next))
	})
	if err != nil {
		return 0, fmt.Errorf("write players: %w", err)
	}
	return len(records), nil
}

// Count returns the number of stored records.
func (s *BoltStore) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketPlayers).Stats().KeyN
		return nil
	})
	return n, err
}

// Generation returns the current store generation.
func (s *BoltStore) Generation(_ context.Context) (uint64, error) {
	var g uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		g = decodeGeneration(tx.Bucket(bucketMeta).Get(keyGeneration))
		return nil
	})
	return g, err
}

func encodeGeneration(g uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, g)
	return b
}

func decodeGeneration(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
