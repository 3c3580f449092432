package ports

import (
	"context"
	"time"

	"StartupDigest/internal/domain"
)

// ArticleFilter narrows QueryArticles results; zero values mean "any".
type ArticleFilter struct {
	Category domain.Category
	Source   string
	Notified *bool
	Page     int
	Limit    int
}

// ArticlePage is one page of stored articles plus total match count.
type ArticlePage struct {
	Articles   []domain.Article
	Total      int
	Page       int
	TotalPages int
}

// Store persists articles, the sent-history ledger, and crawl logs.
// Ledger membership and article inserts are idempotent per URL.
type Store interface {
	InsertArticle(ctx context.Context, article domain.Article) (inserted bool, err error)
	SentURLs(ctx context.Context) (map[string]struct{}, error)
	AppendSentHistory(ctx context.Context, urls []string) error
	MarkNotified(ctx context.Context, urls []string) error
	InsertCrawlLog(ctx context.Context, log domain.CrawlLog) error
	QueryArticles(ctx context.Context, filter ArticleFilter) (ArticlePage, error)
	RecentCrawlLogs(ctx context.Context, limit int) ([]domain.CrawlLog, error)
}

// Notifier delivers a categorized digest downstream. A false return means
// every configured transport failed; it never panics past this boundary.
type Notifier interface {
	Deliver(ctx context.Context, categorized map[domain.Category][]domain.Article) bool
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
