package model

import (
	"sort"
)

// Snapshot is an immutable view of every player keyed by canonical key.
// It is safe for concurrent readers.
type Snapshot struct {
	generation uint64
	players    map[string]*PlayerRecord
	keys       []string
}

// NewSnapshot wraps players (keyed by canonical key). The map is owned by the
// snapshot afterwards and must not be modified by the caller.
func NewSnapshot(generation uint64, players map[string]*PlayerRecord) *Snapshot {
	if players == nil {
		players = make(map[string]*PlayerRecord)
	}
	keys := make([]string, 0, len(players))
	for k := range players {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Snapshot{generation: generation, players: players, keys: keys}
}

// Generation is the store generation the snapshot was built from.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Get returns the player with the given key.
func (s *Snapshot) Get(key string) (*PlayerRecord, bool) {
	p, ok := s.players[key]
	return p, ok
}

// Has reports whether key is known.
func (s *Snapshot) Has(key string) bool {
	_, ok := s.players[key]
	return ok
}

// Len returns the number of players.
func (s *Snapshot) Len() int { return len(s.players) }

// Keys returns every canonical key in ascending order. The slice is a copy.
func (s *Snapshot) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// DisplayName returns the display name for key, or "" when unknown.
func (s *Snapshot) DisplayName(key string) string {
	if p, ok := s.players[key]; ok {
		return p.DisplayName
	}
	return ""
}

// NameIndex returns a fresh canonical key -> display name map.
func (s *Snapshot) NameIndex() map[string]string {
	out := make(map[string]string, len(s.players))
	for k, p := range s.players {
		out[k] = p.DisplayName
	}
	return out
}
