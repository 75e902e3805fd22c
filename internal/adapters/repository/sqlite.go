package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/cujulink/internal/domain/model"
)

//go:embed schema.sql
var schema string

const upsertPlayerSQL = `
	INSERT INTO players (normalized_name, original_name, wiki_url, full_record, club_career, intl_career)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(normalized_name) DO UPDATE SET
	  original_name = excluded.original_name,
	  wiki_url = excluded.wiki_url,
	  full_record = excluded.full_record,
	  club_career = excluded.club_career,
	  intl_career = excluded.intl_career
`

const selectPlayerColumns = `normalized_name, original_name, wiki_url, full_record, club_career, intl_career`

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	// Connection-scoped settings go in the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", path, o.busyTimeout.Milliseconds())
	if o.wal {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListAll returns every record in insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectPlayerColumns+` FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []model.RawRecord
	for rows.Next() {
		var r model.RawRecord
		if err := rows.Scan(&r.Key, &r.DisplayName, &r.SourceURL, &r.Biography, &r.ClubCareer, &r.IntlCareer); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return out, nil
}

// Get returns the record with the given key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (model.RawRecord, error) {
	var r model.RawRecord
	err := s.db.QueryRowContext(ctx, `SELECT `+selectPlayerColumns+` FROM players WHERE normalized_name = ?`, key).
		Scan(&r.Key, &r.DisplayName, &r.SourceURL, &r.Biography, &r.ClubCareer, &r.IntlCareer)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RawRecord{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return model.RawRecord{}, fmt.Errorf("get player: %w", err)
	}
	return r, nil
}

// Upsert inserts or updates records by key.
func (s *SQLiteStore) Upsert(ctx context.Context, records []model.RawRecord) (int, error) {
	return s.write(ctx, false, records)
}

// Replace deletes every record before inserting records.
func (s *SQLiteStore) Replace(ctx context.Context, records []model.RawRecord) (int, error) {
	return s.write(ctx, true, records)
}

func (s *SQLiteStore) write(ctx context.Context, truncate bool, records []model.RawRecord) (int, error) {
	for _, r := range records {
		if r.Key == "" {
			return 0, fmt.Errorf("%w: %q", ErrEmptyKey, r.DisplayName)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if truncate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
			return 0, fmt.Errorf("clear players: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, upsertPlayerSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Key, r.DisplayName, r.SourceURL, r.Biography, orEmptyList(r.ClubCareer), orEmptyList(r.IntlCareer)); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", r.Key, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE meta SET value = value + 1 WHERE key = 'generation'`); err != nil {
		return 0, fmt.Errorf("bump generation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// Generation returns the current store generation.
func (s *SQLiteStore) Generation(ctx context.Context) (uint64, error) {
	var g int64
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'generation'`).Scan(&g); err != nil {
		return 0, fmt.Errorf("read generation: %w", err)
	}
	return uint64(g), nil
}

func orEmptyList(s string) string {
	if s == "" {
		return "[]"
	}
	return s
}
