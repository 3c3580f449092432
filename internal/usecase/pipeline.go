package usecase

import (
	"context"
	"log/slog"

	"StartupDigest/internal/domain"
	"StartupDigest/internal/ports"
)

// Pipeline runs one full crawl → process → deliver cycle.
type Pipeline struct {
	orchestrator *Orchestrator
	processor    *Processor
	notifier     ports.Notifier
	store        ports.Store
	logger       *slog.Logger
}

// NewPipeline wires the run stages together.
func NewPipeline(orchestrator *Orchestrator, processor *Processor, notifier ports.Notifier, store ports.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		orchestrator: orchestrator,
		processor:    processor,
		notifier:     notifier,
		store:        store,
		logger:       logger,
	}
}

// Run executes the pipeline once. Zero crawled or zero new records is a
// successful run; records are marked delivered only after the notifier
// confirms the send.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	runID, results, raw := p.orchestrator.RunAll(ctx)

	summary := domain.RunSummary{
		RunID:        runID,
		TotalCrawled: len(raw),
		PerSource:    make([]domain.SourceSummary, 0, len(results)),
	}
	for _, r := range results {
		entry := domain.SourceSummary{Source: r.Source, Found: len(r.Articles), DurationMs: r.DurationMs}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			entry.Found = 0
		}
		summary.PerSource = append(summary.PerSource, entry)
	}

	if len(raw) == 0 {
		p.log("no articles crawled", "run_id", runID)
		return summary, nil
	}

	categorized, newCount, err := p.processor.Process(ctx, raw)
	if err != nil {
		return summary, err
	}
	summary.NewArticles = newCount

	if newCount == 0 {
		p.log("nothing new to deliver", "run_id", runID)
		return summary, nil
	}

	if p.notifier == nil {
		return summary, nil
	}

	if !p.notifier.Deliver(ctx, categorized) {
		p.warn("delivery failed, records stay undelivered", "run_id", runID)
		return summary, nil
	}
	summary.Delivered = true

	var urls []string
	for _, articles := range categorized {
		for _, a := range articles {
			urls = append(urls, a.URL)
		}
	}
	if err := p.store.MarkNotified(ctx, urls); err != nil {
		p.warn("mark notified failed", "run_id", runID, "error", err)
	}

	return summary, nil
}

func (p *Pipeline) log(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
