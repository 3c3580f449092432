package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StartupDigest/internal/config"
	"StartupDigest/internal/domain"
)

var processorToday = time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC)

func newTestProcessor(store *fakeStore) *Processor {
	p := NewProcessor(store, config.CrawlConfig{
		LookbackDays: 7,
		UrgentDays:   7,
		NewsSources:  []string{"네이버뉴스", "중소벤처기업부"},
	}, discardLogger())
	p.now = func() time.Time { return processorToday }
	return p
}

func TestProcessClassifiesUrgent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{{
		Title:    "지원사업 A",
		URL:      "https://x/1",
		Source:   "K-Startup",
		Date:     "2024-01-01",
		Deadline: "2024-01-05",
	}}

	categorized, newCount, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if newCount != 1 {
		t.Fatalf("expected 1 new article, got %d", newCount)
	}

	urgent := categorized[domain.CategoryUrgent]
	if len(urgent) != 1 || urgent[0].URL != "https://x/1" {
		t.Fatalf("expected article in urgent category: %+v", categorized)
	}
	if _, ok := store.sent["https://x/1"]; !ok {
		t.Fatalf("accepted url must be appended to the ledger")
	}
	if _, ok := store.articles["https://x/1"]; !ok {
		t.Fatalf("accepted article must be persisted")
	}
}

func TestProcessDropsExpiredDeadline(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{{
		Title:    "지원사업 A",
		URL:      "https://x/1",
		Source:   "K-Startup",
		Date:     "2024-01-01",
		Deadline: "2024-01-01",
	}}

	categorized, newCount, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if newCount != 0 {
		t.Fatalf("expired article must not count as new, got %d", newCount)
	}
	if len(categorized) != 0 {
		t.Fatalf("expired article must not be categorized: %+v", categorized)
	}
	if len(store.articles) != 0 {
		t.Fatalf("expired article must not be persisted")
	}
	if len(store.sent) != 0 {
		t.Fatalf("expired article must not enter the ledger")
	}
}

func TestProcessKeepsDeadlineToday(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{{
		Title:    "오늘 마감",
		URL:      "https://x/today",
		Source:   "K-Startup",
		Date:     "2024-01-01",
		Deadline: "2024-01-03",
	}}

	categorized, newCount, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if newCount != 1 {
		t.Fatalf("deadline today (D-0) must be retained, got %d", newCount)
	}
	if len(categorized[domain.CategoryUrgent]) != 1 {
		t.Fatalf("D-0 article belongs to urgent: %+v", categorized)
	}
}

func TestProcessSkipsLedgeredURL(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.sent["https://x/1"] = struct{}{}
	p := newTestProcessor(store)

	raw := []domain.RawArticle{{
		Title:    "지원사업 A",
		URL:      "https://x/1",
		Source:   "K-Startup",
		Date:     "2024-01-01",
		Deadline: "2024-01-05",
	}}

	categorized, newCount, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if newCount != 0 {
		t.Fatalf("ledgered url must not count as new, got %d", newCount)
	}
	if len(categorized) != 0 {
		t.Fatalf("ledgered url must appear in no category: %+v", categorized)
	}
}

func TestProcessReRunIsNoOp(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{{
		Title:    "지원사업 A",
		URL:      "https://x/1",
		Source:   "K-Startup",
		Date:     "2024-01-01",
		Deadline: "2024-01-05",
	}}

	if _, newCount, err := p.Process(context.Background(), raw); err != nil || newCount != 1 {
		t.Fatalf("first run: newCount=%d err=%v", newCount, err)
	}
	if _, newCount, err := p.Process(context.Background(), raw); err != nil || newCount != 0 {
		t.Fatalf("second run must dedup: newCount=%d err=%v", newCount, err)
	}
	if len(store.sent) != 1 {
		t.Fatalf("ledger membership must stay unchanged, got %d entries", len(store.sent))
	}
}

func TestProcessFiltersStaleNews(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{
		{Title: "최신 뉴스", URL: "https://n/1", Source: "네이버뉴스", Date: "2024-01-02"},
		{Title: "경계 뉴스", URL: "https://n/2", Source: "네이버뉴스", Date: "2023-12-27"},
		{Title: "오래된 뉴스", URL: "https://n/3", Source: "네이버뉴스", Date: "2023-12-01"},
		// Stale dates on announcement sources are not filtered.
		{Title: "오래된 공고", URL: "https://a/1", Source: "기업마당", Date: "2023-12-01"},
	}

	categorized, newCount, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if newCount != 3 {
		t.Fatalf("expected 3 accepted records, got %d", newCount)
	}

	news := categorized[domain.CategoryNews]
	if len(news) != 2 {
		t.Fatalf("expected fresh and boundary news, got %+v", news)
	}
	if len(categorized[domain.CategoryNew]) != 1 {
		t.Fatalf("announcement source must bypass the staleness filter: %+v", categorized)
	}
}

func TestProcessSortsUrgentByDDay(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{
		{Title: "D-5 첫번째", URL: "https://x/1", Source: "K-Startup", Deadline: "2024-01-08"},
		{Title: "D-2", URL: "https://x/2", Source: "K-Startup", Deadline: "2024-01-05"},
		{Title: "D-5 두번째", URL: "https://x/3", Source: "K-Startup", Deadline: "2024-01-08"},
		{Title: "D-0", URL: "https://x/4", Source: "K-Startup", Deadline: "2024-01-03"},
	}

	categorized, _, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	urgent := categorized[domain.CategoryUrgent]
	got := make([]string, 0, len(urgent))
	for _, a := range urgent {
		got = append(got, a.URL)
	}

	want := []string{"https://x/4", "https://x/2", "https://x/1", "https://x/3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected urgent order: %v", got)
		}
	}
}

func TestProcessSortsNewsByDateDescending(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := newTestProcessor(store)

	raw := []domain.RawArticle{
		{Title: "old", URL: "https://n/1", Source: "네이버뉴스", Date: "2024-01-01"},
		{Title: "new", URL: "https://n/2", Source: "네이버뉴스", Date: "2024-01-03"},
		{Title: "mid", URL: "https://n/3", Source: "네이버뉴스", Date: "2024-01-02"},
	}

	categorized, _, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	news := categorized[domain.CategoryNews]
	if news[0].Date != "2024-01-03" || news[1].Date != "2024-01-02" || news[2].Date != "2024-01-01" {
		t.Fatalf("expected descending dates: %+v", news)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(newFakeStore())
	raw := domain.RawArticle{Source: "K-Startup", Deadline: "2024-01-05"}

	first := p.Classify(raw, processorToday)
	for i := 0; i < 10; i++ {
		if got := p.Classify(raw, processorToday); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
	if first != domain.CategoryUrgent {
		t.Fatalf("expected urgent, got %s", first)
	}

	if got := p.Classify(domain.RawArticle{Source: "네이버뉴스", Deadline: "2024-01-05"}, processorToday); got != domain.CategoryNews {
		t.Fatalf("news source wins over deadline, got %s", got)
	}
	if got := p.Classify(domain.RawArticle{Source: "K-Startup", Deadline: "2024-02-01"}, processorToday); got != domain.CategoryNew {
		t.Fatalf("distant deadline is new, got %s", got)
	}
	if got := p.Classify(domain.RawArticle{Source: "K-Startup"}, processorToday); got != domain.CategoryNew {
		t.Fatalf("no deadline is new, got %s", got)
	}
}

func TestProcessSurfacesLedgerOutage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.sentErr = errors.New("store unreachable")
	p := newTestProcessor(store)

	if _, _, err := p.Process(context.Background(), []domain.RawArticle{{URL: "https://x/1", Source: "K-Startup"}}); err == nil {
		t.Fatalf("expected terminal error when ledger snapshot fails")
	}
}

func TestProcessSkipsRecordOnInsertFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.insertErr = errors.New("constraint violated")
	p := newTestProcessor(store)

	raw := []domain.RawArticle{{Title: "공고", URL: "https://x/1", Source: "K-Startup"}}
	categorized, newCount, err := p.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("insert failure must not be terminal: %v", err)
	}
	if newCount != 0 || len(categorized) != 0 {
		t.Fatalf("failed record must be skipped: newCount=%d %+v", newCount, categorized)
	}
	if len(store.sent) != 0 {
		t.Fatalf("failed record must not enter the ledger")
	}
}
