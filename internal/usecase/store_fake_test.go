package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"StartupDigest/internal/domain"
	"StartupDigest/internal/ports"
)

// fakeStore is an in-memory ports.Store for use-case tests.
type fakeStore struct {
	mu        sync.Mutex
	articles  map[string]domain.Article
	sent      map[string]struct{}
	crawlLogs []domain.CrawlLog
	notified  []string

	sentErr   error
	insertErr error
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		articles: map[string]domain.Article{},
		sent:     map[string]struct{}{},
	}
}

var _ ports.Store = (*fakeStore)(nil)

func (f *fakeStore) InsertArticle(_ context.Context, article domain.Article) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if _, ok := f.articles[article.URL]; ok {
		return false, nil
	}
	f.articles[article.URL] = article
	return true, nil
}

func (f *fakeStore) SentURLs(context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sentErr != nil {
		return nil, f.sentErr
	}
	snapshot := make(map[string]struct{}, len(f.sent))
	for url := range f.sent {
		snapshot[url] = struct{}{}
	}
	return snapshot, nil
}

func (f *fakeStore) AppendSentHistory(_ context.Context, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, url := range urls {
		f.sent[url] = struct{}{}
	}
	return nil
}

func (f *fakeStore) MarkNotified(_ context.Context, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, urls...)
	return nil
}

func (f *fakeStore) InsertCrawlLog(_ context.Context, log domain.CrawlLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crawlLogs = append(f.crawlLogs, log)
	return nil
}

func (f *fakeStore) QueryArticles(context.Context, ports.ArticleFilter) (ports.ArticlePage, error) {
	return ports.ArticlePage{}, errors.New("not implemented")
}

func (f *fakeStore) RecentCrawlLogs(context.Context, int) ([]domain.CrawlLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CrawlLog(nil), f.crawlLogs...), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
