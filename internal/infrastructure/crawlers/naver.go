package crawlers

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"StartupDigest/internal/config"
	"StartupDigest/internal/dateutil"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/infrastructure/fetch"
)

const naverDisplayCount = 10

type naverNewsItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	PubDate      string `json:"pubDate"`
}

type naverNewsResponse struct {
	Items []naverNewsItem `json:"items"`
}

// NaverNews queries the Naver open search API for each configured keyword
// (a news-type source).
type NaverNews struct {
	client *fetch.Client
	logger *slog.Logger
	cfg    config.NaverConfig
	apiURL string
}

// NewNaverNews wires the adapter; apiURL "" selects the production endpoint.
func NewNaverNews(client *fetch.Client, cfg config.NaverConfig, apiURL string, logger *slog.Logger) *NaverNews {
	if apiURL == "" {
		apiURL = "https://openapi.naver.com/v1/search/news.json"
	}
	return &NaverNews{client: client, logger: logger, cfg: cfg, apiURL: apiURL}
}

// Name identifies the source in logs and stored records.
func (n *NaverNews) Name() string { return "네이버뉴스" }

// Crawl runs one search per keyword and merges results, deduplicating by
// URL within the run. Missing credentials yield an empty result.
func (n *NaverNews) Crawl(ctx context.Context) ([]domain.RawArticle, error) {
	if n.cfg.ClientID == "" || n.cfg.ClientSecret == "" {
		warn(n.logger, "api credentials not configured", "source", n.Name())
		return nil, nil
	}

	var articles []domain.RawArticle
	seen := map[string]struct{}{}

	for _, keyword := range n.cfg.Keywords {
		params := url.Values{}
		params.Set("query", keyword)
		params.Set("display", strconv.Itoa(naverDisplayCount))
		params.Set("start", "1")
		params.Set("sort", "date")

		var resp naverNewsResponse
		err := n.client.JSON(ctx, n.apiURL+"?"+params.Encode(), fetch.Options{
			Headers: map[string]string{
				"X-Naver-Client-Id":     n.cfg.ClientID,
				"X-Naver-Client-Secret": n.cfg.ClientSecret,
			},
		}, &resp)
		if err != nil {
			warn(n.logger, "search failed", "source", n.Name(), "keyword", keyword, "error", err)
			continue
		}

		for _, item := range resp.Items {
			link := item.OriginalLink
			if link == "" {
				link = item.Link
			}
			if link == "" {
				continue
			}
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}

			articles = append(articles, domain.RawArticle{
				Title:  dateutil.StripHTML(item.Title),
				URL:    link,
				Source: n.Name(),
				Date:   dateutil.ParseRFC1123(item.PubDate),
			})
		}
	}

	info(n.logger, "crawl finished", "source", n.Name(), "count", len(articles))
	return articles, nil
}
