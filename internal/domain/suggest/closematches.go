package suggest

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// runes splits s into single-rune tokens so difflib compares characters.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Ratio is the difflib similarity of a and b in [0, 1], 2*M/T over characters.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

type scored struct {
	score float64
	word  string
}

// CloseMatches returns up to n of candidates whose similarity to word is at least
// cutoff, best first. Equal scores order by candidate descending. Cheap upper
// bounds are checked before the full ratio.
func CloseMatches(word string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}
	m := difflib.NewMatcher(nil, nil)
	m.SetSeq2(runes(word))

	var hits []scored
	for _, c := range candidates {
		m.SetSeq1(runes(c))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			hits = append(hits, scored{score: r, word: c})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].word > hits[j].word
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.word
	}
	return out
}
