package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"StartupDigest/internal/crawl"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/ports"
)

// Orchestrator fans the crawlers out concurrently and settles them all
// before returning. Each crawler is an independent failure domain: a panic
// or error in one never cancels or delays another.
type Orchestrator struct {
	crawlers []crawl.Crawler
	store    ports.Store
	logger   *slog.Logger
}

// NewOrchestrator wires the static crawler list with the run-log store.
func NewOrchestrator(crawlers []crawl.Crawler, store ports.Store, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{crawlers: crawlers, store: store, logger: logger}
}

// RunAll executes every crawler concurrently, persists one run-log entry
// per crawler regardless of outcome, and concatenates the successful
// results in crawler-declaration order.
func (o *Orchestrator) RunAll(ctx context.Context) (string, []crawl.Result, []domain.RawArticle) {
	runID := uuid.NewString()
	o.debug("crawl run started", "run_id", runID, "crawlers", len(o.crawlers))

	results := make([]crawl.Result, len(o.crawlers))
	var wg sync.WaitGroup
	for i, crawler := range o.crawlers {
		wg.Add(1)
		go func(i int, crawler crawl.Crawler) {
			defer wg.Done()
			results[i] = o.runOne(ctx, crawler)
		}(i, crawler)
	}
	wg.Wait()

	var all []domain.RawArticle
	for i := range results {
		o.persistLog(ctx, runID, results[i])
		if results[i].Err == nil {
			all = append(all, results[i].Articles...)
		}
	}

	o.debug("crawl run finished", "run_id", runID, "total", len(all))
	return runID, results, all
}

// runOne times a single crawler and converts any escaping panic into an
// error result so the barrier always settles.
func (o *Orchestrator) runOne(ctx context.Context, crawler crawl.Crawler) (result crawl.Result) {
	result.Source = crawler.Name()
	result.StartedAt = time.Now()

	defer func() {
		result.DurationMs = time.Since(result.StartedAt).Milliseconds()
		if r := recover(); r != nil {
			result.Articles = nil
			result.Err = fmt.Errorf("crawler panicked: %v", r)
		}
		if result.Err != nil {
			o.warn("crawler failed", "source", result.Source, "error", result.Err)
		}
	}()

	result.Articles, result.Err = crawler.Crawl(ctx)
	return result
}

func (o *Orchestrator) persistLog(ctx context.Context, runID string, result crawl.Result) {
	if o.store == nil {
		return
	}

	entry := domain.CrawlLog{
		RunID:         runID,
		Source:        result.Source,
		Status:        domain.CrawlStatusSuccess,
		ArticlesFound: len(result.Articles),
		DurationMs:    result.DurationMs,
		StartedAt:     result.StartedAt,
	}
	if result.Err != nil {
		entry.Status = domain.CrawlStatusError
		entry.ArticlesFound = 0
		entry.ErrorMessage = result.Err.Error()
	}

	if err := o.store.InsertCrawlLog(ctx, entry); err != nil {
		o.warn("persist crawl log failed", "source", result.Source, "error", err)
	}
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
