// Package link decides whether two players are adjacent: they served the same
// team in an identical period.
package link

import (
	"github.com/okian/cujulink/internal/domain/model"
)

// Overlap holds the service periods two players share.
type Overlap struct {
	Club model.PeriodSet
	Intl model.PeriodSet
}

// Count returns the total number of shared periods.
func (o Overlap) Count() int { return o.Club.Len() + o.Intl.Len() }

// Empty reports whether nothing is shared.
func (o Overlap) Empty() bool { return o.Count() == 0 }

// CommonPeriods returns the shared club periods and, unless mode is club-only,
// the shared international periods. Nil players share nothing.
func CommonPeriods(a, b *model.PlayerRecord, mode model.Mode) Overlap {
	out := Overlap{Club: model.NewPeriodSet(), Intl: model.NewPeriodSet()}
	if a == nil || b == nil {
		return out
	}
	out.Club = a.Club.Intersect(b.Club)
	if mode.IncludesIntl() {
		out.Intl = a.Intl.Intersect(b.Intl)
	}
	return out
}

// IsAdjacent reports whether a and b share at least one period under mode.
func IsAdjacent(a, b *model.PlayerRecord, mode model.Mode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Club.Overlaps(b.Club) {
		return true
	}
	return mode.IncludesIntl() && a.Intl.Overlaps(b.Intl)
}
