package crawl

import (
	"context"
	"time"

	"StartupDigest/internal/domain"
)

// Crawler captures a single source adapter (K-Startup, Bizinfo, etc.).
// Crawl returns an empty slice on fetch failure or missing page structure;
// a non-nil error is reserved for unexpected faults and is handled at the
// orchestrator boundary.
type Crawler interface {
	Name() string
	Crawl(ctx context.Context) ([]domain.RawArticle, error)
}

// Result is the settled outcome of one crawler within a run.
type Result struct {
	Source     string
	Articles   []domain.RawArticle
	Err        error
	DurationMs int64
	StartedAt  time.Time
}
