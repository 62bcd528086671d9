package reader

// Option configures a load.
type Option func(*config)

type config struct {
	decompress bool
	disableGC  bool
	verbose    bool
}

func defaultConfig() config {
	// Loading large files runs noticeably faster with the collector
	// paused, since the object graph only grows.
	return config{disableGC: true}
}

// WithDecompress decodes every stream body in place once the file is
// loaded, dropping the filter entries from the stream dictionaries.
func WithDecompress() Option {
	return func(c *config) { c.decompress = true }
}

// WithGCEnabled leaves the garbage collector running during the load.
func WithGCEnabled() Option {
	return func(c *config) { c.disableGC = false }
}

// WithVerbose writes diagnostics to the standard logger as they are
// recorded, in addition to collecting them on the document.
func WithVerbose() Option {
	return func(c *config) { c.verbose = true }
}
