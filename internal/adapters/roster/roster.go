// Package roster loads the curated list of players used for random challenges.
// The file is read once at startup and never changes afterwards.
package roster

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/okian/cujulink/internal/domain/names"
)

// ErrInvalidRoster is returned when the roster file cannot be decoded.
var ErrInvalidRoster = errors.New("invalid roster")

// Entry is one curated player.
type Entry struct {
	Key         string
	DisplayName string
}

// Roster is an immutable, de-duplicated list of curated players ordered by key.
type Roster struct {
	entries []Entry
}

type file struct {
	Players []string `yaml:"players"`
}

// Load reads the roster at path. An empty path yields an empty roster.
func Load(path string) (*Roster, error) {
	if path == "" {
		return New(nil), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoster, path, err)
	}
	return New(f.Players), nil
}

// New builds a roster from display names. Names that normalize to the same key
// keep the first spelling; blank names are dropped.
func New(displayNames []string) *Roster {
	seen := make(map[string]struct{}, len(displayNames))
	entries := make([]Entry, 0, len(displayNames))
	for _, n := range displayNames {
		key := names.Normalize(n)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, Entry{Key: key, DisplayName: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return &Roster{entries: entries}
}

// Len returns the number of curated players.
func (r *Roster) Len() int { return len(r.entries) }

// Entries returns a copy of the curated players.
func (r *Roster) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
