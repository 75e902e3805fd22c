// Package career converts between service period sets and their textual forms:
// the JSON stored with each player, the sections of the scraped dump, and the
// season/team split used for presentation.
package career

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/cujulink/internal/domain/model"
)

// Section headers in the scraped dump.
const (
	ClubSection = "Club Career"
	IntlSection = "International/Managerial Career"
)

var seasonPattern = regexp.MustCompile(`\d{4}-\d{4}|\d{4}`)

// DecodeJSON parses a JSON array of [label, team] pairs. Blank text and JSON
// null decode to an empty set.
func DecodeJSON(text string) (model.PeriodSet, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.NewPeriodSet(), nil
	}
	var pairs [][]string
	if err := json.Unmarshal([]byte(text), &pairs); err != nil {
		return model.NewPeriodSet(), fmt.Errorf("%w: %w", ErrMalformedCareer, err)
	}
	set := make(model.PeriodSet, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return model.NewPeriodSet(), fmt.Errorf("%w: entry %d has %d fields", ErrMalformedCareer, i, len(pair))
		}
		set.Add(model.ServicePeriod{Label: pair[0], Team: pair[1]})
	}
	return set, nil
}

// EncodeJSON renders set as a JSON array of [label, team] pairs in sorted order.
func EncodeJSON(set model.PeriodSet) (string, error) {
	pairs := make([][2]string, 0, set.Len())
	for _, p := range set.Sorted() {
		pairs = append(pairs, [2]string{p.Label, p.Team})
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseSection extracts the periods listed under header in a dump record.
// Each line is "<season> <squad>" split at the last space. Column header lines
// (containing "Season" or "Squad") are skipped and a blank line ends the section.
func ParseSection(record, header string) model.PeriodSet {
	set := model.NewPeriodSet()
	inSection := false
	for _, line := range strings.Split(record, "\n") {
		line = strings.TrimSpace(line)
		if line == header {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if line == "" {
			break
		}
		if strings.Contains(line, "Season") || strings.Contains(line, "Squad") {
			continue
		}
		i := strings.LastIndex(line, " ")
		if i < 0 {
			continue
		}
		set.Add(model.ServicePeriod{
			Label: strings.TrimSpace(line[:i]),
			Team:  strings.TrimSpace(line[i+1:]),
		})
	}
	return set
}

// FormatPeriod splits a period for display. The first year or year range in the
// label becomes the season; label text between it and any following year is
// prefixed to the team.
func FormatPeriod(p model.ServicePeriod) (season, team string) {
	label := strings.TrimSpace(p.Label)
	locs := seasonPattern.FindAllStringIndex(label, 2)
	if len(locs) == 0 {
		return label, strings.TrimSpace(p.Team)
	}
	end := len(label)
	if len(locs) > 1 {
		end = locs[1][0]
	}
	season = label[locs[0][0]:locs[0][1]]
	rest := strings.TrimSpace(label[locs[0][1]:end])
	team = strings.TrimSpace(rest + " " + strings.TrimSpace(p.Team))
	return season, team
}
