package importer

import (
	"github.com/okian/cujulink/pkg/logger"
)

// Option configures an Importer.
type Option func(*Importer)

// WithWorkers sets how many goroutines parse blocks. Values below one mean one per CPU.
func WithWorkers(n int) Option {
	return func(im *Importer) { im.workers = n }
}

// WithReplace makes every import clear the store first instead of upserting.
func WithReplace(replace bool) Option {
	return func(im *Importer) { im.replace = replace }
}

// WithLogger sets the importer's logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// WithReportHook is called after every import triggered by Watch.
func WithReportHook(fn func(Report, error)) Option {
	return func(im *Importer) { im.onReport = fn }
}
