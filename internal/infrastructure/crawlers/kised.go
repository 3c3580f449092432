package crawlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StartupDigest/internal/dateutil"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/infrastructure/fetch"
)

const kisedListPath = "/menu.es?mid=a10302000000"

// KISED crawls the 창업진흥원 announcement list.
type KISED struct {
	client  *fetch.Client
	logger  *slog.Logger
	baseURL string
}

// NewKISED wires the adapter; baseURL "" selects the production origin.
func NewKISED(client *fetch.Client, baseURL string, logger *slog.Logger) *KISED {
	if baseURL == "" {
		baseURL = "https://www.kised.or.kr"
	}
	return &KISED{client: client, logger: logger, baseURL: baseURL}
}

// Name identifies the source in logs and stored records.
func (k *KISED) Name() string { return "창업진흥원" }

// Crawl extracts every list item on the announcement page.
func (k *KISED) Crawl(ctx context.Context) ([]domain.RawArticle, error) {
	listURL := k.baseURL + kisedListPath
	html, err := k.client.Text(ctx, listURL, fetch.Options{})
	if err != nil {
		warn(k.logger, "fetch failed", "source", k.Name(), "error", err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		warn(k.logger, "parse failed", "source", k.Name(), "error", err)
		return nil, nil
	}

	items := doc.Find("ul.lstyle_list > li")
	if items.Length() == 0 {
		warn(k.logger, "announcement list missing", "source", k.Name())
		return nil, nil
	}

	var articles []domain.RawArticle
	items.Each(func(_ int, item *goquery.Selection) {
		if article, ok := k.parseItem(item, listURL); ok {
			articles = append(articles, article)
		}
	})

	info(k.logger, "crawl finished", "source", k.Name(), "count", len(articles))
	return articles, nil
}

func (k *KISED) parseItem(item *goquery.Selection, listURL string) (domain.RawArticle, bool) {
	title := strings.TrimSpace(item.Find("b.ls_tit").Text())
	if title == "" {
		return domain.RawArticle{}, false
	}

	url := listURL
	if href, exists := item.Find("a[href]").First().Attr("href"); exists {
		if resolved, ok := absoluteURL(k.baseURL, href); ok {
			url = resolved
		}
	}

	return domain.RawArticle{
		Title:    title,
		URL:      url,
		Source:   k.Name(),
		Date:     dateutil.Format(time.Now()),
		Deadline: extractDeadline(item),
	}, true
}

// extractDeadline prefers the definition-list value labeled 마감 and falls
// back to the first date-shaped value in the block.
func extractDeadline(item *goquery.Selection) string {
	dts := item.Find("dl dt")
	dds := item.Find("dl dd")

	deadline := ""
	dts.EachWithBreak(func(i int, dt *goquery.Selection) bool {
		if !strings.Contains(dt.Text(), "마감") || i >= dds.Length() {
			return true
		}
		if m := isoDateExpr.FindStringSubmatch(strings.TrimSpace(dds.Eq(i).Text())); m != nil {
			deadline = m[1]
			return false
		}
		return true
	})
	if deadline != "" {
		return deadline
	}

	dds.EachWithBreak(func(_ int, dd *goquery.Selection) bool {
		if m := isoDateExpr.FindStringSubmatch(strings.TrimSpace(dd.Text())); m != nil {
			deadline = m[1]
			return false
		}
		return true
	})
	return deadline
}
