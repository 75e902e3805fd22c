// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cujulink/internal/adapters/repository"
	"github.com/okian/cujulink/internal/adapters/roster"
	"github.com/okian/cujulink/internal/adapters/snapshot"
	"github.com/okian/cujulink/internal/domain/career"
	"github.com/okian/cujulink/internal/domain/chain"
	"github.com/okian/cujulink/internal/domain/link"
	"github.com/okian/cujulink/internal/domain/model"
	"github.com/okian/cujulink/internal/domain/names"
	"github.com/okian/cujulink/internal/domain/search"
	"github.com/okian/cujulink/internal/domain/suggest"
	"github.com/okian/cujulink/internal/domain/types"
	"github.com/okian/cujulink/pkg/logger"
	"github.com/okian/cujulink/pkg/metrics"
)

// walkAttempts bounds how many random starting players RandomChain tries
// before settling for the longest walk it found.
const walkAttempts = 8

// Service implements the API dependencies for the player link engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	loader *snapshot.Loader
	roster *roster.Roster

	// Configuration
	suggestLimit      int
	suggestCutoff     float64
	maxChainLength    int
	maxGenerateLength int
	snapshotCache     bool

	rngMu sync.Mutex
	rng   *rand.Rand

	// Counters reported by GetStats
	searches    atomic.Uint64
	searchNanos atomic.Int64
	validations atomic.Uint64
	suggestions atomic.Uint64

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the player store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRoster sets the curated roster used for challenges.
func WithRoster(r *roster.Roster) Option {
	return func(s *Service) {
		if r != nil {
			s.roster = r
		}
	}
}

// WithSuggestLimit sets the maximum number of name suggestions.
func WithSuggestLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestLimit = n
		}
	}
}

// WithSuggestCutoff sets the similarity cutoff for fuzzy suggestions.
func WithSuggestCutoff(c float64) Option {
	return func(s *Service) {
		if c >= 0 && c <= 1 {
			s.suggestCutoff = c
		}
	}
}

// WithMaxChainLength sets the longest chain ValidateChain accepts.
func WithMaxChainLength(n int) Option {
	return func(s *Service) {
		if n >= 2 {
			s.maxChainLength = n
		}
	}
}

// WithMaxGenerateLength sets the longest chain RandomChain produces.
func WithMaxGenerateLength(n int) Option {
	return func(s *Service) {
		if n >= 2 {
			s.maxGenerateLength = n
		}
	}
}

// WithSnapshotCache enables or disables reuse of the built snapshot.
func WithSnapshotCache(enabled bool) Option {
	return func(s *Service) {
		s.snapshotCache = enabled
	}
}

// WithRand sets the random source used for challenges and generated chains.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		roster:            roster.New(nil),
		suggestLimit:      5,
		suggestCutoff:     0.8,
		maxChainLength:    12,
		maxGenerateLength: 10,
		snapshotCache:     true,
		rng:               rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		logger:            nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the snapshot loader and warms it with a first snapshot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.logger.Info(ctx, "starting player link service...")

	loader := snapshot.NewLoader(s.store, snapshot.WithCache(s.snapshotCache))
	built, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("warm snapshot: %w", err)
	}
	s.loader = loader
	s.started = true
	s.startedAt = time.Now()

	s.logger.Info(ctx, "player link service started",
		logger.Int("players", built.Snapshot.Len()),
		logger.Int("parseFailures", len(built.Report.ParseFailures)),
		logger.Int("roster", s.roster.Len()),
		logger.Bool("snapshotCache", s.snapshotCache),
	)
	return nil
}

// Stop closes the store. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping player link service...")
	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "failed to close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "player link service stopped")
}

func (s *Service) snapshot(ctx context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	l := s.loader
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	return l.Snapshot(ctx)
}

// SuggestNames returns display names resembling query. A blank query yields
// an empty list.
func (s *Service) SuggestNames(ctx context.Context, query string) ([]string, error) {
	if names.Normalize(query) == "" {
		return []string{}, nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := suggest.Suggest(query, snap.NameIndex(),
		suggest.WithLimit(s.suggestLimit),
		suggest.WithCutoff(s.suggestCutoff),
	)
	s.suggestions.Add(1)
	metrics.RecordSuggestion(len(out))
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ValidateChain checks every consecutive pair of the submitted chain.
func (s *Service) ValidateChain(ctx context.Context, req types.ValidateChainRequest) (types.ValidationResult, error) {
	if err := req.Validate(); err != nil {
		return types.ValidationResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	submitted := req.Names()
	if len(submitted) > s.maxChainLength {
		return types.ValidationResult{}, fmt.Errorf("%w: chain has %d players, at most %d allowed",
			ErrInvalidInput, len(submitted), s.maxChainLength)
	}
	mode, err := model.ParseMode(req.LinkType)
	if err != nil {
		return types.ValidationResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.ValidationResult{}, err
	}

	res, err := chain.Validate(snap, submitted, mode)
	if err != nil {
		return types.ValidationResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	s.validations.Add(1)
	metrics.RecordValidation(res.Valid, res.Reasons())

	out := types.ValidationResult{Valid: res.Valid, InvalidLinks: make([]types.InvalidLink, 0, len(res.InvalidLinks))}
	for _, l := range res.InvalidLinks {
		out.InvalidLinks = append(out.InvalidLinks, types.InvalidLink{From: l.From, To: l.To, Reason: l.Reason})
	}
	return out, nil
}

// FindLink searches for a chain between two players and describes each link.
// A chain from a player to itself is empty. ErrNoLink is returned when no
// chain exists or either player is unknown.
func (s *Service) FindLink(ctx context.Context, req types.FindLinkRequest) ([]types.LinkDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	mode, err := model.ParseMode(req.LinkType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	startKey, endKey := names.Normalize(req.StartPlayer), names.Normalize(req.EndPlayer)
	begin := time.Now()
	res, err := search.Find(ctx, snap, startKey, endKey, mode)
	took := time.Since(begin)
	s.searches.Add(1)
	s.searchNanos.Add(int64(took))

	tookMs := float64(took.Microseconds()) / 1000
	if err != nil {
		metrics.RecordSearch(mode.String(), "canceled", tookMs, res.Expanded, 0)
		s.logger.Warn(ctx, "search aborted",
			logger.String("start", startKey),
			logger.String("end", endKey),
			logger.Int("expanded", res.Expanded),
			logger.Duration("took", took),
			logger.Error(err),
		)
		return nil, err
	}

	outcome := "not_found"
	if res.Found {
		outcome = "found"
	}
	metrics.RecordSearch(mode.String(), outcome, tookMs, res.Expanded, len(res.Links))
	s.logger.Info(ctx, "search finished",
		logger.String("start", startKey),
		logger.String("end", endKey),
		logger.String("mode", mode.String()),
		logger.Bool("found", res.Found),
		logger.Int("links", len(res.Links)),
		logger.Int("expanded", res.Expanded),
		logger.Duration("took", took),
	)

	if !res.Found {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoLink, req.StartPlayer, req.EndPlayer)
	}
	out := make([]types.LinkDetail, 0, len(res.Links))
	for _, l := range res.Links {
		out = append(out, describe(snap, l.From, l.To, l.Overlap))
	}
	return out, nil
}

// PlayerData returns the stored record of one player.
func (s *Service) PlayerData(ctx context.Context, name string) (types.PlayerData, error) {
	key := names.Normalize(name)
	if key == "" {
		return types.PlayerData{}, fmt.Errorf("%w: player_name is required", ErrInvalidInput)
	}
	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()
	if !started {
		return types.PlayerData{}, ErrNotStarted
	}

	raw, err := store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return types.PlayerData{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	if err != nil {
		return types.PlayerData{}, fmt.Errorf("get player %q: %w", key, err)
	}

	return types.PlayerData{
		OriginalName: raw.DisplayName,
		WikiURL:      raw.SourceURL,
		FullRecord:   raw.Biography,
		ClubCareer:   s.careerPeriods(ctx, key, career.ClubSection, raw.ClubCareer),
		IntlCareer:   s.careerPeriods(ctx, key, career.IntlSection, raw.IntlCareer),
	}, nil
}

func (s *Service) careerPeriods(ctx context.Context, key, field, text string) []types.Period {
	set, err := career.DecodeJSON(text)
	if err != nil {
		s.logger.Warn(ctx, "malformed career data",
			logger.String("player", key),
			logger.String("field", field),
			logger.Error(err),
		)
	}
	out := make([]types.Period, 0, set.Len())
	for _, p := range set.Sorted() {
		out = append(out, types.Period{Season: p.Label, Team: p.Team})
	}
	return out
}

// Challenge picks two distinct random players. Curated roster players known
// to the store are preferred; with fewer than two of them the whole snapshot
// is used.
func (s *Service) Challenge(ctx context.Context) (types.Challenge, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.Challenge{}, err
	}

	var pool []string
	for _, e := range s.roster.Entries() {
		if snap.Has(e.Key) {
			pool = append(pool, e.Key)
		}
	}
	if len(pool) < 2 {
		pool = snap.Keys()
	}
	if len(pool) < 2 {
		return types.Challenge{}, fmt.Errorf("%w: have %d", ErrNotEnoughPlayers, len(pool))
	}

	i := s.intn(len(pool))
	j := s.intn(len(pool) - 1)
	if j >= i {
		j++
	}
	return types.Challenge{
		ChallengeID: uuid.NewString(),
		StartPlayer: snap.DisplayName(pool[i]),
		EndPlayer:   snap.DisplayName(pool[j]),
	}, nil
}

// RandomChain builds a valid chain of up to length players by walking random
// links. A walk stops early when every neighbour is already in the chain.
func (s *Service) RandomChain(ctx context.Context, length int) ([]types.LinkDetail, error) {
	req := types.GenerateChainRequest{Length: length, Max: s.maxGenerateLength}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	keys := snap.Keys()
	if len(keys) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrNotEnoughPlayers, len(keys))
	}

	var best []string
	for attempt := 0; attempt < walkAttempts && len(best) < length; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if path := s.walk(snap, keys, length); len(path) > len(best) {
			best = path
		}
	}
	if len(best) < 2 {
		return nil, fmt.Errorf("%w: no linked players after %d attempts", ErrNoLink, walkAttempts)
	}

	out := make([]types.LinkDetail, 0, len(best)-1)
	for i := 0; i+1 < len(best); i++ {
		a, _ := snap.Get(best[i])
		b, _ := snap.Get(best[i+1])
		out = append(out, describe(snap, best[i], best[i+1], link.CommonPeriods(a, b, model.ModeBoth)))
	}
	return out, nil
}

func (s *Service) walk(snap *model.Snapshot, keys []string, length int) []string {
	cur := keys[s.intn(len(keys))]
	path := []string{cur}
	inPath := map[string]struct{}{cur: {}}
	for len(path) < length {
		rec, _ := snap.Get(cur)
		var next []string
		for _, k := range keys {
			if _, used := inPath[k]; used {
				continue
			}
			if other, _ := snap.Get(k); link.IsAdjacent(rec, other, model.ModeBoth) {
				next = append(next, k)
			}
		}
		if len(next) == 0 {
			break
		}
		cur = next[s.intn(len(next))]
		path = append(path, cur)
		inPath[cur] = struct{}{}
	}
	return path
}

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n)
}

// describe renders one link with its shared periods split for display.
func describe(snap *model.Snapshot, from, to string, o link.Overlap) types.LinkDetail {
	rec, _ := snap.Get(from)
	return types.LinkDetail{
		Player:      rec.DisplayName,
		WikiURL:     rec.SourceURL,
		NextPlayer:  snap.DisplayName(to),
		CommonClubs: displayPeriods(o.Club),
		CommonIntl:  displayPeriods(o.Intl),
	}
}

func displayPeriods(set model.PeriodSet) []types.Period {
	out := make([]types.Period, 0, set.Len())
	for _, p := range set.Sorted() {
		season, team := career.FormatPeriod(p)
		out = append(out, types.Period{Season: season, Team: team})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		RosterSize:     s.roster.Len(),
		SnapshotCached: s.snapshotCache,
		Searches:       s.searches.Load(),
		Validations:    s.validations.Load(),
		Suggestions:    s.suggestions.Load(),
	}
	if n := stats.Searches; n > 0 {
		stats.AvgSearchMillis = float64(s.searchNanos.Load()) / float64(n) / float64(time.Millisecond)
	}
	if !s.started {
		return stats
	}

	stats.UptimeSeconds = time.Since(s.startedAt).Seconds()
	if gen, err := s.store.Generation(ctx); err == nil {
		stats.StoreGeneration = gen
		metrics.UpdateStoreGeneration(gen)
	} else {
		s.logger.Warn(ctx, "failed to read store generation", logger.Error(err))
	}
	if built, ok := s.loader.Last(); ok {
		stats.Players = built.Snapshot.Len()
		stats.ParseFailures = len(built.Report.ParseFailures)
		stats.SnapshotBuiltAt = built.BuiltAt.UTC().Format(time.RFC3339)
	}
	return stats
}
