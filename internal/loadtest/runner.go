package loadtest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/cujulink/pkg/logger"
)

const percentageMultiplier = 100

type counters struct {
	linked, unlinked, verified, rejected, failed atomic.Int64
	findNanos                                    atomic.Int64
}

// Run checks the service is up and then plays cfg.Rounds rounds, cfg.Workers
// at a time. A round fetches a challenge, asks for the shortest link and
// submits the answer back to validate_chain.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("loadtest")
	stats := &Stats{Rounds: cfg.Rounds, StartTime: time.Now()}

	log.Info(ctx, "starting link engine load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Rounds && gctx.Err() == nil; i++ {
		g.Go(func() error {
			if err := playRound(gctx, client, &c); err != nil {
				c.failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "round failed", logger.Int("round", i), logger.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Linked = int(c.linked.Load())
	stats.Unlinked = int(c.unlinked.Load())
	stats.Verified = int(c.verified.Load())
	stats.Rejected = int(c.rejected.Load())
	stats.Failed = int(c.failed.Load())
	if searched := stats.Linked + stats.Unlinked; searched > 0 {
		stats.AvgFindMillis = float64(c.findNanos.Load()) / float64(searched) / float64(time.Millisecond)
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Rejected > 0 {
		return stats, fmt.Errorf("%d returned chains failed validation", stats.Rejected)
	}
	return stats, nil
}

func playRound(ctx context.Context, client *Client, c *counters) error {
	ch, err := client.Challenge(ctx)
	if err != nil {
		return fmt.Errorf("challenge: %w", err)
	}

	start := time.Now()
	links, err := client.FindLink(ctx, ch.StartPlayer, ch.EndPlayer)
	took := time.Since(start)
	switch {
	case errors.Is(err, errNoLink):
		c.findNanos.Add(int64(took))
		c.unlinked.Add(1)
		return nil
	case err != nil:
		return fmt.Errorf("find_link: %w", err)
	}
	c.findNanos.Add(int64(took))
	c.linked.Add(1)

	req, err := chainRequest(ch.StartPlayer, ch.EndPlayer, links)
	if err != nil {
		c.rejected.Add(1)
		return err
	}
	res, err := client.ValidateChain(ctx, req)
	if err != nil {
		return fmt.Errorf("validate_chain: %w", err)
	}
	if !res.Valid {
		c.rejected.Add(1)
		return fmt.Errorf("chain %v rejected: %v", req.Names(), res.InvalidLinks)
	}
	c.verified.Add(1)
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var linkRate, roundsPerSecond float64
	if stats.Rounds > 0 {
		linkRate = float64(stats.Linked) / float64(stats.Rounds) * percentageMultiplier
	}
	if stats.Duration > 0 {
		roundsPerSecond = float64(stats.Rounds) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("rounds", stats.Rounds),
		logger.Int("linked", stats.Linked),
		logger.Int("unlinked", stats.Unlinked),
		logger.Int("verified", stats.Verified),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Float64("avgFindMs", stats.AvgFindMillis),
		logger.Duration("duration", stats.Duration),
		logger.Float64("linkRate", linkRate),
		logger.Float64("roundsPerSecond", roundsPerSecond))
}
