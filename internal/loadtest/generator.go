package loadtest

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
)

// Dump generation defaults.
const (
	defaultPlayers  = 500
	defaultTeams    = 40
	defaultNations  = 12
	defaultMaxStint = 4
	firstSeason     = 1990
	seasonSpan      = 30
	intlShare       = 3 // one in intlShare players gets a national team stint
)

func (c DumpConfig) withDefaults() DumpConfig {
	if c.Players < 1 {
		c.Players = defaultPlayers
	}
	if c.Teams < 1 {
		c.Teams = defaultTeams
	}
	if c.Nations < 1 {
		c.Nations = defaultNations
	}
	if c.MaxStint < 1 {
		c.MaxStint = defaultMaxStint
	}
	return c
}

// PlayerName returns the display name of synthetic player i.
func PlayerName(i int) string {
	return fmt.Sprintf("Synthetic Player %05d", i)
}

// WriteDump writes a dump in the scraped format that the importer reads.
// The same seed always yields the same file.
func WriteDump(w io.Writer, cfg DumpConfig) error {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	bw := bufio.NewWriter(w)

	for i := range cfg.Players {
		name := PlayerName(i)
		fmt.Fprintf(bw, "Player Name: %s\n", name)
		fmt.Fprintf(bw, "Wikipedia URL: https://example.org/wiki/Synthetic_Player_%05d\n", i)
		fmt.Fprintf(bw, "Club Career\nSeason Squad\n")

		// One line per season keeps labels short so squads overlap often.
		season := firstSeason + rng.IntN(seasonSpan)
		for range 1 + rng.IntN(cfg.MaxStint) {
			club := rng.IntN(cfg.Teams)
			for range 1 + rng.IntN(3) {
				fmt.Fprintf(bw, "%d Club%03d\n", season, club)
				season++
			}
		}

		if rng.IntN(intlShare) == 0 {
			fmt.Fprintf(bw, "\nInternational/Managerial Career\n%d Nation%02d\n",
				firstSeason+rng.IntN(seasonSpan), rng.IntN(cfg.Nations))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
