// Package storage persists articles, the sent-history ledger, and crawl
// logs in SQLite. Inserts are idempotent per URL so the database's own
// uniqueness constraints back up the processor's ledger snapshot.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"StartupDigest/internal/domain"
	"StartupDigest/internal/ports"
)

const timeLayout = time.RFC3339

var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		published_date TEXT NOT NULL DEFAULT '',
		deadline TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		notified INTEGER NOT NULL DEFAULT 0,
		notified_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sent_history (
		url TEXT PRIMARY KEY,
		sent_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS crawl_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		articles_found INTEGER NOT NULL DEFAULT 0,
		articles_new INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_notified ON articles(notified)`,
	`CREATE INDEX IF NOT EXISTS idx_crawl_logs_run ON crawl_logs(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_crawl_logs_started ON crawl_logs(started_at DESC)`,
}

// SQLiteStore implements ports.Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database and ensures the schema.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The pipeline is single-run, but crawl-log writes arrive from
	// concurrent goroutines; one connection serializes them.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// InsertArticle stores a classified article; a URL collision is a no-op
// and reports inserted=false.
func (s *SQLiteStore) InsertArticle(ctx context.Context, article domain.Article) (bool, error) {
	query, args, err := sq.Insert("articles").
		Columns("title", "url", "source", "published_date", "deadline", "category", "notified", "created_at").
		Values(article.Title, article.URL, article.Source, article.Date, article.Deadline,
			string(article.Category), boolToInt(article.Notified), article.CreatedAt.UTC().Format(timeLayout)).
		Suffix("ON CONFLICT(url) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert article %s: %w", article.URL, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SentURLs loads the full ledger as a membership set.
func (s *SQLiteStore) SentURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM sent_history`)
	if err != nil {
		return nil, fmt.Errorf("query sent history: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan sent url: %w", err)
		}
		urls[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent history: %w", err)
	}
	return urls, nil
}

// AppendSentHistory records delivered URLs; re-appending is a no-op.
func (s *SQLiteStore) AppendSentHistory(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(timeLayout)
	for _, url := range urls {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sent_history (url, sent_at) VALUES (?, ?) ON CONFLICT(url) DO NOTHING`,
			url, now)
		if err != nil {
			return fmt.Errorf("append sent history %s: %w", url, err)
		}
	}
	return nil
}

// MarkNotified flips the delivered flag for the given URLs.
func (s *SQLiteStore) MarkNotified(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(timeLayout)
	for _, url := range urls {
		_, err := s.db.ExecContext(ctx,
			`UPDATE articles SET notified = 1, notified_at = ? WHERE url = ?`, now, url)
		if err != nil {
			return fmt.Errorf("mark notified %s: %w", url, err)
		}
	}
	return nil
}

// InsertCrawlLog appends one run-log entry; entries are never mutated.
func (s *SQLiteStore) InsertCrawlLog(ctx context.Context, log domain.CrawlLog) error {
	query, args, err := sq.Insert("crawl_logs").
		Columns("run_id", "source", "status", "articles_found", "articles_new",
			"error_message", "duration_ms", "started_at").
		Values(log.RunID, log.Source, string(log.Status), log.ArticlesFound, log.ArticlesNew,
			log.ErrorMessage, log.DurationMs, log.StartedAt.UTC().Format(timeLayout)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build crawl log insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert crawl log %s/%s: %w", log.RunID, log.Source, err)
	}
	return nil
}

// QueryArticles returns one filtered, paginated page of stored articles.
func (s *SQLiteStore) QueryArticles(ctx context.Context, filter ports.ArticleFilter) (ports.ArticlePage, error) {
	where := sq.And{}
	if filter.Category != "" {
		where = append(where, sq.Eq{"category": string(filter.Category)})
	}
	if filter.Source != "" {
		where = append(where, sq.Eq{"source": filter.Source})
	}
	if filter.Notified != nil {
		where = append(where, sq.Eq{"notified": boolToInt(*filter.Notified)})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	countQuery := sq.Select("COUNT(*)").From("articles")
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
	}
	query, args, err := countQuery.ToSql()
	if err != nil {
		return ports.ArticlePage{}, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return ports.ArticlePage{}, fmt.Errorf("count articles: %w", err)
	}

	selectQuery := sq.Select("title", "url", "source", "published_date", "deadline",
		"category", "notified", "notified_at", "created_at").
		From("articles").
		OrderBy("published_date DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))
	if len(where) > 0 {
		selectQuery = selectQuery.Where(where)
	}
	query, args, err = selectQuery.ToSql()
	if err != nil {
		return ports.ArticlePage{}, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ports.ArticlePage{}, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return ports.ArticlePage{}, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return ports.ArticlePage{}, fmt.Errorf("iterate articles: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return ports.ArticlePage{Articles: articles, Total: total, Page: page, TotalPages: totalPages}, nil
}

// RecentCrawlLogs returns the newest run-log entries, latest first.
func (s *SQLiteStore) RecentCrawlLogs(ctx context.Context, limit int) ([]domain.CrawlLog, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, status, articles_found, articles_new, error_message, duration_ms, started_at
		 FROM crawl_logs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query crawl logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.CrawlLog
	for rows.Next() {
		var (
			log       domain.CrawlLog
			status    string
			startedAt string
		)
		if err := rows.Scan(&log.RunID, &log.Source, &status, &log.ArticlesFound,
			&log.ArticlesNew, &log.ErrorMessage, &log.DurationMs, &startedAt); err != nil {
			return nil, fmt.Errorf("scan crawl log: %w", err)
		}
		log.Status = domain.CrawlLogStatus(status)
		log.StartedAt = parseStoredTime(startedAt)
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crawl logs: %w", err)
	}
	return logs, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		article    domain.Article
		category   string
		notified   int
		notifiedAt sql.NullString
		createdAt  string
	)
	err := rows.Scan(&article.Title, &article.URL, &article.Source, &article.Date,
		&article.Deadline, &category, &notified, &notifiedAt, &createdAt)
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	article.Category = domain.Category(category)
	article.Notified = notified != 0
	if notifiedAt.Valid && notifiedAt.String != "" {
		t := parseStoredTime(notifiedAt.String)
		article.NotifiedAt = &t
	}
	article.CreatedAt = parseStoredTime(createdAt)
	return article, nil
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
