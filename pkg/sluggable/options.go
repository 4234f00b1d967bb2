package sluggable

import (
	"log/slog"

	"github.com/dmitrymomot/slugkit/pkg/cache"
)

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRegistry attaches a registry, enabling Generate and SpecFor.
func WithRegistry(r *Registry) Option {
	return func(g *Generator) {
		g.registry = r
	}
}

// WithPatternCache caches up to size compiled match patterns keyed by base
// token. Non-positive sizes disable the cache.
func WithPatternCache(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.patterns = cache.NewLRUCache[string, *Pattern](size)
		}
	}
}

// WithConflictRetry enables regeneration when saving hits a write conflict,
// as reported by isConflict (for example a unique index violation). attempts
// is the number of regenerations after the first failed save. Off by default:
// without a store-level unique index, two concurrent generations for the same
// base token may produce the same slug.
func WithConflictRetry(attempts int, isConflict func(error) bool) Option {
	return func(g *Generator) {
		if attempts > 0 && isConflict != nil {
			g.retryAttempts = attempts
			g.isConflict = isConflict
		}
	}
}
