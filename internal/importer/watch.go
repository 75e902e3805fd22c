package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/cujulink/pkg/logger"
)

// Watch re-imports path each time it is written or recreated, until ctx is
// done. Bursts of events within debounce collapse into one import. The parent
// directory is watched so editors that replace the file by rename are seen.
func (im *Importer) Watch(ctx context.Context, path string, debounce time.Duration) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	im.logger.Info(ctx, "watching dump", logger.String("path", abs), logger.Duration("debounce", debounce))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Warn(ctx, "watcher error", logger.Error(err))
		case <-pending:
			pending = nil
			report, err := im.ImportFile(ctx, abs)
			if im.onReport != nil {
				im.onReport(report, err)
			}
		}
	}
}
