package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"StartupDigest/internal/config"
	"StartupDigest/internal/dateutil"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/ports"
)

// Processor filters, deduplicates, classifies, and persists raw articles.
type Processor struct {
	store       ports.Store
	logger      *slog.Logger
	lookback    int
	urgentDays  int
	newsSources map[string]struct{}
	now         func() time.Time
}

// NewProcessor wires the store with the filtering configuration.
func NewProcessor(store ports.Store, cfg config.CrawlConfig, logger *slog.Logger) *Processor {
	news := make(map[string]struct{}, len(cfg.NewsSources))
	for _, source := range cfg.NewsSources {
		news[source] = struct{}{}
	}
	return &Processor{
		store:       store,
		logger:      logger,
		lookback:    cfg.LookbackDays,
		urgentDays:  cfg.UrgentDays,
		newsSources: news,
		now:         time.Now,
	}
}

// Classify assigns a category from (source, deadline, today) alone.
func (p *Processor) Classify(raw domain.RawArticle, today time.Time) domain.Category {
	if _, ok := p.newsSources[raw.Source]; ok {
		return domain.CategoryNews
	}
	if dday, ok := dateutil.DDay(raw.Deadline, today); ok && dday >= 0 && dday <= p.urgentDays {
		return domain.CategoryUrgent
	}
	return domain.CategoryNew
}

// Process runs the per-record pipeline: staleness window for news-type
// sources, expiry, ledger dedup against a single upfront snapshot,
// classification, idempotent persistence. Accepted URLs are appended to
// the ledger in one batch afterwards.
func (p *Processor) Process(ctx context.Context, raw []domain.RawArticle) (map[domain.Category][]domain.Article, int, error) {
	today := p.now()
	cutoff := dateutil.Midnight(today).AddDate(0, 0, -p.lookback)

	sent, err := p.store.SentURLs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load sent history: %w", err)
	}

	categorized := make(map[domain.Category][]domain.Article)
	var newURLs []string

	for _, r := range raw {
		if _, isNews := p.newsSources[r.Source]; isNews {
			if published, ok := dateutil.Parse(r.Date); ok && published.Before(cutoff) {
				continue
			}
		}

		if dday, ok := dateutil.DDay(r.Deadline, today); ok && dday < 0 {
			continue
		}

		if _, delivered := sent[r.URL]; delivered {
			continue
		}

		article := domain.Article{
			Title:     r.Title,
			URL:       r.URL,
			Source:    r.Source,
			Date:      r.Date,
			Deadline:  r.Deadline,
			Category:  p.Classify(r, today),
			CreatedAt: today,
		}

		if _, err := p.store.InsertArticle(ctx, article); err != nil {
			p.warn("persist article failed", "url", r.URL, "error", err)
			continue
		}

		categorized[article.Category] = append(categorized[article.Category], article)
		newURLs = append(newURLs, r.URL)
	}

	p.sortCategories(categorized, today)

	if len(newURLs) > 0 {
		if err := p.store.AppendSentHistory(ctx, newURLs); err != nil {
			return nil, 0, fmt.Errorf("append sent history: %w", err)
		}
	}

	p.log("processing finished", "new", len(newURLs), "filtered", len(raw)-len(newURLs))
	return categorized, len(newURLs), nil
}

// sortCategories orders urgent items by ascending D-day (stable, so equal
// deadlines keep input order and undated items sink last) and the rest by
// descending publication date.
func (p *Processor) sortCategories(categorized map[domain.Category][]domain.Article, today time.Time) {
	if urgent, ok := categorized[domain.CategoryUrgent]; ok {
		sort.SliceStable(urgent, func(i, j int) bool {
			return urgentRank(urgent[i], today) < urgentRank(urgent[j], today)
		})
	}
	for _, category := range []domain.Category{domain.CategoryNew, domain.CategoryNews} {
		if articles, ok := categorized[category]; ok {
			sort.SliceStable(articles, func(i, j int) bool {
				return articles[i].Date > articles[j].Date
			})
		}
	}
}

func urgentRank(a domain.Article, today time.Time) int {
	dday, ok := dateutil.DDay(a.Deadline, today)
	if !ok {
		return 1<<31 - 1
	}
	return dday
}

func (p *Processor) log(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Processor) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
