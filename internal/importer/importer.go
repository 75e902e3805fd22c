package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/cujulink/internal/adapters/mq/queue"
	"github.com/okian/cujulink/internal/adapters/mq/worker"
	"github.com/okian/cujulink/internal/domain/dedupe"
	"github.com/okian/cujulink/internal/domain/model"
	"github.com/okian/cujulink/internal/domain/names"
	"github.com/okian/cujulink/pkg/logger"
	"github.com/okian/cujulink/pkg/metrics"
)

const poolName = "import"

// Writer is the part of the record store an import needs.
type Writer interface {
	Upsert(ctx context.Context, records []model.RawRecord) (int, error)
	Replace(ctx context.Context, records []model.RawRecord) (int, error)
	Generation(ctx context.Context) (uint64, error)
}

// Report summarises one import.
type Report struct {
	Blocks     int
	Stored     int
	Malformed  int
	Duplicates int
	Generation uint64
	Duration   time.Duration
}

// Importer parses dumps and writes them to a store.
type Importer struct {
	store    Writer
	workers  int
	replace  bool
	logger   logger.Logger
	onReport func(Report, error)
}

// New creates an importer writing to store.
func New(store Writer, opts ...Option) *Importer {
	im := &Importer{
		store:  store,
		logger: logger.Named("importer"),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportFile imports the dump at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		metrics.RecordImportRun("failed")
		return Report{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import parses every block in r and writes the well-formed ones. When two
// blocks normalize to the same key the first one wins. Malformed blocks are
// skipped and counted. If nothing is left to store the store is not touched
// and ErrNoPlayers is returned.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	start := time.Now()
	report, err := im.run(ctx, r)
	report.Duration = time.Since(start)

	outcome := "ok"
	switch {
	case err == nil:
	case ctx.Err() != nil:
		outcome = "canceled"
	default:
		outcome = "failed"
	}
	metrics.RecordImportRun(outcome)
	metrics.RecordImportRecords("stored", report.Stored)
	metrics.RecordImportRecords("malformed", report.Malformed)
	metrics.RecordImportRecords("duplicate", report.Duplicates)

	if err != nil {
		im.logger.Error(ctx, "import failed", logger.Error(err), logger.Int("blocks", report.Blocks))
		return report, err
	}
	im.logger.Info(ctx, "import finished",
		logger.Int("blocks", report.Blocks),
		logger.Int("stored", report.Stored),
		logger.Int("malformed", report.Malformed),
		logger.Int("duplicates", report.Duplicates),
		logger.Any("generation", report.Generation),
		logger.Duration("took", report.Duration),
	)
	return report, nil
}

func (im *Importer) run(ctx context.Context, r io.Reader) (Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	blocks := SplitBlocks(string(data))
	report := Report{Blocks: len(blocks)}
	if len(blocks) == 0 {
		return report, ErrNoPlayers
	}

	parsed, err := im.parseAll(ctx, blocks)
	if err != nil {
		return report, err
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithNormalizer(names.Normalize))
	records := make([]model.RawRecord, 0, len(parsed))
	for i, rec := range parsed {
		if rec == nil {
			report.Malformed++
			continue
		}
		if seen.SeenAndRecord(ctx, rec.DisplayName) {
			report.Duplicates++
			im.logger.Warn(ctx, "duplicate player skipped",
				logger.String("player", rec.DisplayName), logger.Int("block", i))
			continue
		}
		records = append(records, *rec)
	}
	if len(records) == 0 {
		return report, ErrNoPlayers
	}

	write := im.store.Upsert
	if im.replace {
		write = im.store.Replace
	}
	n, err := write(ctx, records)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	report.Stored = n

	gen, err := im.store.Generation(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	report.Generation = gen
	return report, nil
}

// parseAll fans blocks out to a worker pool. The result is indexed like
// blocks with nil for malformed ones. Each worker writes only its own slots.
func (im *Importer) parseAll(ctx context.Context, blocks []Block) ([]*model.RawRecord, error) {
	q := queue.NewInMemoryQueue[Block](queue.WithCapacity(len(blocks)), queue.WithName(poolName))
	for _, b := range blocks {
		if !q.Enqueue(ctx, b) {
			_ = q.Close()
			return nil, fmt.Errorf("%w: %w", ErrRead, context.Cause(ctx))
		}
	}
	_ = q.Close()

	parsed := make([]*model.RawRecord, len(blocks))
	handler := worker.HandlerFunc[Block](func(_ context.Context, b Block) error {
		rec, err := ParseBlock(b)
		if err != nil {
			return err
		}
		parsed[b.Index] = &rec
		return nil
	})
	pool := worker.NewPool[Block](im.workers, q, handler,
		worker.WithPool(poolName),
		worker.WithLogger(im.logger),
	)
	pool.Start(ctx)
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parsed, nil
}
