package epub

import (
	"time"

	"github.com/Laisky/zap"

	"github.com/simp-lee/mdbook-epub/internal/resource"
)

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithRetriever replaces the HTTP retriever used for remote images.
func WithRetriever(r resource.Retriever) Option {
	return func(g *Generator) {
		if r != nil {
			g.retriever = r
		}
	}
}

// WithModified fixes the modification time written into the archive and
// the package metadata. Zero means the time of generation.
func WithModified(t time.Time) Option {
	return func(g *Generator) {
		g.modified = t
	}
}

// WithConcurrency limits how many remote images are downloaded at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}
