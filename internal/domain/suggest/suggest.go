// Package suggest offers approximate name completion over the known players.
package suggest

import (
	"sort"
	"strings"

	"github.com/okian/cujulink/internal/domain/names"
)

const (
	defaultLimit  = 5
	defaultCutoff = 0.8
)

// Option tunes Suggest.
type Option func(*options)

type options struct {
	limit  int
	cutoff float64
}

// WithLimit caps the number of suggestions. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithCutoff sets the similarity floor for backfilled suggestions.
func WithCutoff(c float64) Option {
	return func(o *options) {
		if c >= 0 && c <= 1 {
			o.cutoff = c
		}
	}
}

// Suggest returns up to limit display names that look like query.
//
// Players whose surname contains the query's surname come first, ranked by
// similarity to the whole normalized query. Remaining slots are filled from all
// players whose key is close to the query. index maps canonical key to display
// name. A blank query yields an empty list.
func Suggest(query string, index map[string]string, opts ...Option) []string {
	o := options{limit: defaultLimit, cutoff: defaultCutoff}
	for _, opt := range opts {
		opt(&o)
	}

	out := []string{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	q := names.Normalize(query)
	want := names.Surname(query)

	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var surnameHits []scored
	for _, k := range keys {
		if want != "" && strings.Contains(names.Surname(index[k]), want) {
			surnameHits = append(surnameHits, scored{score: Ratio(q, k), word: k})
		}
	}
	// Stable over sorted keys keeps equal ratios in key order.
	sort.SliceStable(surnameHits, func(i, j int) bool { return surnameHits[i].score > surnameHits[j].score })

	picked := make([]string, 0, o.limit)
	seen := make(map[string]struct{}, o.limit)
	add := func(k string) {
		if _, dup := seen[k]; dup || len(picked) >= o.limit {
			return
		}
		seen[k] = struct{}{}
		picked = append(picked, k)
	}
	for _, h := range surnameHits {
		add(h.word)
	}
	if len(picked) < o.limit {
		// Ask for enough matches to cover the ones already picked.
		for _, k := range CloseMatches(q, keys, o.limit+len(picked), o.cutoff) {
			add(k)
		}
	}

	shown := make(map[string]struct{}, len(picked))
	for _, k := range picked {
		name := index[k]
		if _, dup := shown[name]; dup {
			continue
		}
		shown[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
