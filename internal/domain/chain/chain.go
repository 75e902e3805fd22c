// Package chain checks user-submitted player chains link by link.
package chain

import (
	"fmt"

	"github.com/okian/cujulink/internal/domain/link"
	"github.com/okian/cujulink/internal/domain/model"
	"github.com/okian/cujulink/internal/domain/names"
)

// Reasons reported for a broken link.
const (
	ReasonPlayerNotFound = "player_not_found"
	ReasonNoCommonTeam   = "no_common_team"
)

// InvalidLink is one broken consecutive pair.
type InvalidLink struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Result is the outcome of a validation. Valid is true iff InvalidLinks is empty.
type Result struct {
	Valid        bool          `json:"valid"`
	InvalidLinks []InvalidLink `json:"invalid_links"`
}

// Reasons lists the reason of every invalid link in order.
func (r Result) Reasons() []string {
	out := make([]string, len(r.InvalidLinks))
	for i, l := range r.InvalidLinks {
		out[i] = l.Reason
	}
	return out
}

// Validate normalizes every submitted name and checks each consecutive pair.
// Every pair is checked so callers see all broken links at once. Invalid links
// carry display names, or the submitted text when the player is unknown.
func Validate(snap *model.Snapshot, submitted []string, mode model.Mode) (Result, error) {
	if len(submitted) < 2 {
		return Result{}, fmt.Errorf("%w: got %d players", ErrChainTooShort, len(submitted))
	}

	keys := make([]string, len(submitted))
	for i, s := range submitted {
		keys[i] = names.Normalize(s)
	}

	res := Result{InvalidLinks: []InvalidLink{}}
	for i := 0; i+1 < len(keys); i++ {
		from, fromOK := snap.Get(keys[i])
		to, toOK := snap.Get(keys[i+1])

		var reason string
		switch {
		case !fromOK || !toOK:
			reason = ReasonPlayerNotFound
		case !link.IsAdjacent(from, to, mode):
			reason = ReasonNoCommonTeam
		default:
			continue
		}
		res.InvalidLinks = append(res.InvalidLinks, InvalidLink{
			From:   display(from, submitted[i]),
			To:     display(to, submitted[i+1]),
			Reason: reason,
		})
	}
	res.Valid = len(res.InvalidLinks) == 0
	return res, nil
}

func display(p *model.PlayerRecord, fallback string) string {
	if p != nil {
		return p.DisplayName
	}
	return fallback
}
