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

const bizinfoListPath = "/web/lay1/bbs/S1T122C128/AS/74/list.do"

var bizinfoRowSelectors = []string{
	"table.tbl_type1 tbody tr",
	"table.boardList tbody tr",
	"table.bbs_list tbody tr",
	"div.board_list table tbody tr",
	"div.tbl_wrap table tbody tr",
	"table tbody tr",
}

var (
	bizinfoPblancExpr = regexp.MustCompile(`PBLN_\w+`)
	bizinfoPathExpr   = regexp.MustCompile(`'(/[^']+)'`)
)

// Bizinfo crawls the 기업마당 support-program board.
type Bizinfo struct {
	client  *fetch.Client
	logger  *slog.Logger
	baseURL string
}

// NewBizinfo wires the adapter; baseURL "" selects the production origin.
func NewBizinfo(client *fetch.Client, baseURL string, logger *slog.Logger) *Bizinfo {
	if baseURL == "" {
		baseURL = "https://www.bizinfo.go.kr"
	}
	return &Bizinfo{client: client, logger: logger, baseURL: baseURL}
}

// Name identifies the source in logs and stored records.
func (b *Bizinfo) Name() string { return "기업마당" }

// Crawl extracts the first page of board rows.
func (b *Bizinfo) Crawl(ctx context.Context) ([]domain.RawArticle, error) {
	listURL := b.baseURL + bizinfoListPath
	html, err := b.client.Text(ctx, listURL, fetch.Options{})
	if err != nil {
		warn(b.logger, "fetch failed", "source", b.Name(), "error", err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		warn(b.logger, "parse failed", "source", b.Name(), "error", err)
		return nil, nil
	}

	rows := findRows(doc, bizinfoRowSelectors)
	if rows == nil {
		warn(b.logger, "no board rows matched", "source", b.Name())
		return nil, nil
	}

	var articles []domain.RawArticle
	rows.Each(func(_ int, row *goquery.Selection) {
		if article, ok := b.parseRow(row, listURL); ok {
			articles = append(articles, article)
		}
	})

	info(b.logger, "crawl finished", "source", b.Name(), "count", len(articles))
	return articles, nil
}

func (b *Bizinfo) parseRow(row *goquery.Selection, listURL string) (domain.RawArticle, bool) {
	if row.Find("td").Length() < 2 {
		return domain.RawArticle{}, false
	}

	link := row.Find("a").First()
	if link.Length() == 0 {
		return domain.RawArticle{}, false
	}

	title := strings.TrimSpace(link.Text())
	if title == "" {
		return domain.RawArticle{}, false
	}

	return domain.RawArticle{
		Title:  title,
		URL:    b.extractURL(link, listURL),
		Source: b.Name(),
		Date:   dateutil.Extract(row.Text(), time.Now()),
	}, true
}

// extractURL prefers a direct href; the board mostly navigates through an
// onclick call carrying either a PBLN announcement id or a quoted path.
func (b *Bizinfo) extractURL(link *goquery.Selection, listURL string) string {
	href, _ := link.Attr("href")
	if resolved, ok := absoluteURL(b.baseURL, href); ok {
		return resolved
	}

	if onclick, exists := link.Attr("onclick"); exists && onclick != "" {
		if id := bizinfoPblancExpr.FindString(onclick); id != "" {
			return b.baseURL + "/web/lay1/bbs/S1T122C128/AS/74/view.do?pblancId=" + id
		}
		if path := bizinfoPathExpr.FindStringSubmatch(onclick); path != nil {
			return b.baseURL + path[1]
		}
	}

	return listURL
}
