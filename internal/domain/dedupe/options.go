package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithNormalizer maps every id before it is compared, e.g. names.Normalize.
func WithNormalizer(fn func(string) string) Option {
	return func(d *inMemoryDeduper) {
		if fn != nil {
			d.normalize = fn
		}
	}
}
