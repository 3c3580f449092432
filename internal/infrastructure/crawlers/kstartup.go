package crawlers

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StartupDigest/internal/dateutil"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/infrastructure/fetch"
)

const kstartupListPath = "/web/contents/bizpbanc-ongoing.do"

// K-Startup renders detail navigation through an inline go_view(id) call
// instead of a usable href.
var goViewExpr = regexp.MustCompile(`go_view\((\d+)\)`)

// KStartup crawls the K-Startup ongoing-announcements board.
type KStartup struct {
	client  *fetch.Client
	logger  *slog.Logger
	listURL string
}

// NewKStartup wires the adapter; baseURL "" selects the production origin.
func NewKStartup(client *fetch.Client, baseURL string, logger *slog.Logger) *KStartup {
	if baseURL == "" {
		baseURL = "https://www.k-startup.go.kr"
	}
	return &KStartup{client: client, logger: logger, listURL: baseURL + kstartupListPath}
}

// Name identifies the source in logs and stored records.
func (k *KStartup) Name() string { return "K-Startup" }

// Crawl extracts every announcement currently listed on the first page.
func (k *KStartup) Crawl(ctx context.Context) ([]domain.RawArticle, error) {
	html, err := k.client.Text(ctx, k.listURL, fetch.Options{})
	if err != nil {
		warn(k.logger, "fetch failed", "source", k.Name(), "error", err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		warn(k.logger, "parse failed", "source", k.Name(), "error", err)
		return nil, nil
	}

	container := doc.Find("#bizPbancList")
	if container.Length() == 0 {
		warn(k.logger, "announcement container missing", "source", k.Name())
		return nil, nil
	}

	var articles []domain.RawArticle
	container.Find("ul > li").Each(func(_ int, item *goquery.Selection) {
		if article, ok := k.parseItem(item); ok {
			articles = append(articles, article)
		}
	})

	info(k.logger, "crawl finished", "source", k.Name(), "count", len(articles))
	return articles, nil
}

func (k *KStartup) parseItem(item *goquery.Selection) (domain.RawArticle, bool) {
	title := strings.TrimSpace(item.Find("p.tit").Text())
	if title == "" {
		return domain.RawArticle{}, false
	}

	url := k.listURL
	if href, exists := item.Find("div.middle a").Attr("href"); exists {
		if m := goViewExpr.FindStringSubmatch(href); m != nil {
			url = k.listURL + "?schM=view&pbancSn=" + m[1]
		}
	}

	date, deadline := k.extractDates(item)
	return domain.RawArticle{Title: title, URL: url, Source: k.Name(), Date: date, Deadline: deadline}, true
}

// extractDates scans the labeled spans for the registered-on and due-by
// fields; a missing registered date defaults to today.
func (k *KStartup) extractDates(item *goquery.Selection) (date, deadline string) {
	item.Find("div.bottom span.list").Each(func(_ int, span *goquery.Selection) {
		text := strings.TrimSpace(span.Text())
		m := isoDateExpr.FindStringSubmatch(text)
		if m == nil {
			return
		}
		switch {
		case strings.Contains(text, "등록일자"):
			date = m[1]
		case strings.Contains(text, "마감일자"):
			deadline = m[1]
		}
	})

	if date == "" {
		date = dateutil.Format(time.Now())
	}
	return date, deadline
}
