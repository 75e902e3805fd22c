// Package snapshot turns stored player records into immutable engine snapshots
// and optionally caches the latest one per store generation.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/cujulink/internal/domain/career"
	"github.com/okian/cujulink/internal/domain/model"
	"github.com/okian/cujulink/internal/domain/names"
	"github.com/okian/cujulink/pkg/logger"
	"github.com/okian/cujulink/pkg/metrics"
)

// Skip reasons reported by Build.
const (
	SkipEmptyKey  = "empty_key"
	SkipDuplicate = "duplicate_key"
)

// RecordParseError describes a record whose career text could not be parsed.
// The record is still included with empty service sets.
type RecordParseError struct {
	Key   string
	Field string
	Err   error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("player %s: %s: %v", e.Key, e.Field, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }

// BuildReport summarizes one build.
type BuildReport struct {
	Records       int
	Players       int
	ParseFailures []*RecordParseError
	Skipped       map[string]int
	Duration      time.Duration
}

// Builder builds snapshots from raw records.
type Builder struct {
	log logger.Logger
}

// NewBuilder returns a Builder logging through the global logger.
func NewBuilder() *Builder {
	return &Builder{log: logger.Named("snapshot")}
}

// Build parses every record and returns the snapshot only once all of them are
// processed. A malformed career field empties both career sets of its own
// record and leaves the others alone. Records
// whose display name has no canonical form are skipped, and when two records
// share a key the first one wins.
func (b *Builder) Build(ctx context.Context, generation uint64, raws []model.RawRecord) (*model.Snapshot, BuildReport) {
	start := time.Now()
	rep := BuildReport{Records: len(raws), Skipped: map[string]int{}}
	players := make(map[string]*model.PlayerRecord, len(raws))

	for _, raw := range raws {
		key := names.Normalize(raw.DisplayName)
		if key == "" {
			rep.Skipped[SkipEmptyKey]++
			metrics.RecordSnapshotSkipped(SkipEmptyKey)
			b.log.Warn(ctx, "skipping record without a usable name", logger.String("stored_key", raw.Key))
			continue
		}
		if first, dup := players[key]; dup {
			rep.Skipped[SkipDuplicate]++
			metrics.RecordSnapshotSkipped(SkipDuplicate)
			b.log.Warn(ctx, "duplicate canonical key, keeping first record",
				logger.String("key", key),
				logger.String("kept", first.DisplayName),
				logger.String("dropped", raw.DisplayName),
			)
			continue
		}

		p := &model.PlayerRecord{
			Key:         key,
			DisplayName: raw.DisplayName,
			SourceURL:   raw.SourceURL,
			Biography:   raw.Biography,
		}
		club, clubOK := b.decode(ctx, &rep, key, "club_career", raw.ClubCareer)
		intl, intlOK := b.decode(ctx, &rep, key, "intl_career", raw.IntlCareer)
		if !clubOK || !intlOK {
			// A record with any corrupt career links to nobody.
			club, intl = model.NewPeriodSet(), model.NewPeriodSet()
		}
		p.Club, p.Intl = club, intl
		players[key] = p
	}

	snap := model.NewSnapshot(generation, players)
	rep.Players = snap.Len()
	rep.Duration = time.Since(start)
	metrics.RecordSnapshotBuild(float64(rep.Duration.Microseconds())/1000, rep.Players)
	b.log.Debug(ctx, "snapshot built",
		logger.Int("records", rep.Records),
		logger.Int("players", rep.Players),
		logger.Int("parse_failures", len(rep.ParseFailures)),
		logger.Duration("took", rep.Duration),
	)
	return snap, rep
}

func (b *Builder) decode(ctx context.Context, rep *BuildReport, key, field, text string) (model.PeriodSet, bool) {
	set, err := career.DecodeJSON(text)
	if err == nil {
		return set, true
	}
	perr := &RecordParseError{Key: key, Field: field, Err: err}
	rep.ParseFailures = append(rep.ParseFailures, perr)
	metrics.RecordSnapshotParseFailure()
	b.log.Warn(ctx, "career parse failed, using empty sets",
		logger.String("player", key),
		logger.String("field", field),
		logger.Error(err),
	)
	return model.NewPeriodSet(), false
}
