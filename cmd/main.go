package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cujulink/internal/adapters/http/api"
	"github.com/okian/cujulink/internal/adapters/http/site"
	"github.com/okian/cujulink/internal/adapters/http/swagger"
	"github.com/okian/cujulink/internal/adapters/repository"
	"github.com/okian/cujulink/internal/adapters/roster"
	service "github.com/okian/cujulink/internal/app"
	"github.com/okian/cujulink/internal/config"
	"github.com/okian/cujulink/internal/importer"
	"github.com/okian/cujulink/pkg/logger"
	"github.com/okian/cujulink/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 15 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our own system gauges replace the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("cujulink: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	configureMetrics(cfg)

	svc, im, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	if im != nil && cfg.DumpWatch {
		g.Go(func() error {
			return im.Watch(gctx, cfg.DumpPath, cfg.ImportDebounce())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// buildService opens the store, runs the startup import if one is configured
// and starts the service. The importer is returned when a dump path is set.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, *importer.Importer, error) {
	log := logger.Get()

	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.StorePath())
	if err != nil {
		return nil, nil, err
	}

	var im *importer.Importer
	if cfg.DumpPath != "" {
		im = importer.New(store,
			importer.WithWorkers(cfg.ImportWorkers),
			importer.WithReplace(cfg.DumpReplace),
		)
		if _, err := im.ImportFile(ctx, cfg.DumpPath); err != nil {
			log.Warn(ctx, "startup import failed; serving the stored players", logger.Error(err))
		}
	}

	rost, err := roster.Load(cfg.RosterPath)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	svc := service.New(
		service.WithStore(store),
		service.WithRoster(rost),
		service.WithLogger(log),
		service.WithSnapshotCache(cfg.SnapshotCache),
		service.WithSuggestLimit(cfg.SuggestLimit),
		service.WithSuggestCutoff(cfg.SuggestCutoff),
		service.WithMaxChainLength(cfg.MaxChainLength),
		service.WithMaxGenerateLength(cfg.MaxGenerateLength),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, im, nil
}

// newHandler mounts the API, the docs and the game page on one mux.
func newHandler(ctx context.Context, cfg *config.Config, svc *service.Service) http.Handler {
	mux := http.NewServeMux()

	apiServer := api.NewServer(svc, svc,
		api.WithFindTimeout(cfg.FindTimeout()),
		api.WithFindRateLimit(cfg.FindRatePerSec, cfg.FindBurst),
	)
	apiServer.Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	return api.RequestIDMiddleware(mux)
}

// configureMetrics rebuilds the global metrics manager from config. It runs
// before any handler captures the registry.
func configureMetrics(cfg *config.Config) {
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMS),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
}

// startSystemMetricsUpdater refreshes the runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
