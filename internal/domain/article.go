package domain

import "time"

// Category buckets articles for digest composition.
type Category string

const (
	// CategoryUrgent marks announcements whose deadline falls within the urgent window.
	CategoryUrgent Category = "urgent"
	// CategoryNew marks announcements without an imminent deadline.
	CategoryNew Category = "new"
	// CategoryNews marks informational items from news-type sources.
	CategoryNews Category = "news"
)

// Label returns the display heading used in outgoing digests.
func (c Category) Label() string {
	switch c {
	case CategoryUrgent:
		return "🔥 마감 임박"
	case CategoryNew:
		return "📋 신규 공고"
	case CategoryNews:
		return "📰 정책 동향"
	}
	return string(c)
}

// CategoryOrder fixes the display order across primary and thread messages.
var CategoryOrder = []Category{CategoryUrgent, CategoryNew, CategoryNews}

// RawArticle is the normalized record a crawler extracts from one source.
// Dates are YYYY-MM-DD strings; Deadline is empty for undated items.
// URL is the identity of a record across the whole pipeline.
type RawArticle struct {
	Title    string
	URL      string
	Source   string
	Date     string
	Deadline string
}

// Article is a processed record with its category and delivery state.
// Notified flips false→true exactly once, on confirmed delivery.
type Article struct {
	Title      string
	URL        string
	Source     string
	Date       string
	Deadline   string
	Category   Category
	Notified   bool
	NotifiedAt *time.Time
	CreatedAt  time.Time
}

// CrawlLogStatus enumerates per-crawler run outcomes.
type CrawlLogStatus string

const (
	CrawlStatusSuccess CrawlLogStatus = "success"
	CrawlStatusError   CrawlLogStatus = "error"
)

// CrawlLog is one append-only entry per crawler invocation per run.
type CrawlLog struct {
	RunID         string
	Source        string
	Status        CrawlLogStatus
	ArticlesFound int
	ArticlesNew   int
	ErrorMessage  string
	DurationMs    int64
	StartedAt     time.Time
}

// SourceSummary reports one crawler's contribution to a run.
type SourceSummary struct {
	Source     string `json:"source"`
	Found      int    `json:"found"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// RunSummary is the JSON-facing outcome of one full pipeline run.
type RunSummary struct {
	RunID        string          `json:"runId"`
	TotalCrawled int             `json:"totalCrawled"`
	NewArticles  int             `json:"newArticles"`
	Delivered    bool            `json:"delivered"`
	PerSource    []SourceSummary `json:"perSourceSummary"`
}
