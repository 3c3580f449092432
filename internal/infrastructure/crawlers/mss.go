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

const mssBoardID = "86"

// Board markup on mss.go.kr changes across site revisions; the selectors
// are tried in order until one yields rows.
var mssRowSelectors = []string{
	"table.boardList tbody tr",
	"table.bbs_list tbody tr",
	"div.board_list table tbody tr",
	"table.tbl_type tbody tr",
	"table tbody tr",
}

var (
	mssOnclickPairExpr = regexp.MustCompile(`'(\d+)'\s*,\s*'(\d+)'`)
	mssOnclickIDExpr   = regexp.MustCompile(`(\d{4,})`)
	mssCellDateExpr    = regexp.MustCompile(`^(\d{4})[.\-](\d{1,2})[.\-](\d{1,2})$`)
)

// MSS crawls the 중소벤처기업부 press-release board (a news-type source).
type MSS struct {
	client  *fetch.Client
	logger  *slog.Logger
	baseURL string
}

// NewMSS wires the adapter; baseURL "" selects the production origin.
func NewMSS(client *fetch.Client, baseURL string, logger *slog.Logger) *MSS {
	if baseURL == "" {
		baseURL = "https://www.mss.go.kr"
	}
	return &MSS{client: client, logger: logger, baseURL: baseURL}
}

// Name identifies the source in logs and stored records.
func (m *MSS) Name() string { return "중소벤처기업부" }

// Crawl extracts the first page of board rows.
func (m *MSS) Crawl(ctx context.Context) ([]domain.RawArticle, error) {
	listURL := m.baseURL + "/site/smba/ex/bbs/List.do?cbIdx=" + mssBoardID + "&pageIndex=1"
	html, err := m.client.Text(ctx, listURL, fetch.Options{})
	if err != nil {
		warn(m.logger, "fetch failed", "source", m.Name(), "error", err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		warn(m.logger, "parse failed", "source", m.Name(), "error", err)
		return nil, nil
	}

	rows := findRows(doc, mssRowSelectors)
	if rows == nil {
		warn(m.logger, "no board rows matched", "source", m.Name())
		return nil, nil
	}

	var articles []domain.RawArticle
	rows.Each(func(_ int, row *goquery.Selection) {
		if article, ok := m.parseRow(row); ok {
			articles = append(articles, article)
		}
	})

	info(m.logger, "crawl finished", "source", m.Name(), "count", len(articles))
	return articles, nil
}

func (m *MSS) parseRow(row *goquery.Selection) (domain.RawArticle, bool) {
	cols := row.Find("td")
	if cols.Length() < 3 {
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
		URL:    m.extractURL(link),
		Source: m.Name(),
		Date:   extractCellDate(cols, time.Now()),
	}, true
}

// extractURL prefers a direct href and falls back to pattern-matching the
// board/post ids out of the row's onclick navigation call.
func (m *MSS) extractURL(link *goquery.Selection) string {
	href, _ := link.Attr("href")
	if resolved, ok := absoluteURL(m.baseURL, href); ok {
		return resolved
	}

	if onclick, exists := link.Attr("onclick"); exists && onclick != "" {
		if pair := mssOnclickPairExpr.FindStringSubmatch(onclick); pair != nil {
			return m.baseURL + "/site/smba/ex/bbs/View.do?cbIdx=" + pair[1] + "&bcIdx=" + pair[2]
		}
		if id := mssOnclickIDExpr.FindStringSubmatch(onclick); id != nil {
			return m.baseURL + "/site/smba/ex/bbs/View.do?cbIdx=" + mssBoardID + "&bcIdx=" + id[1]
		}
	}

	return m.baseURL + "/site/smba/ex/bbs/List.do?cbIdx=" + mssBoardID + "&pageIndex=1"
}

func findRows(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		rows := doc.Find(sel)
		if rows.Length() > 0 {
			return rows
		}
	}
	return nil
}

// extractCellDate returns the first cell holding a bare date, else today.
func extractCellDate(cols *goquery.Selection, now time.Time) string {
	date := ""
	cols.EachWithBreak(func(_ int, col *goquery.Selection) bool {
		text := strings.TrimSpace(col.Text())
		m := mssCellDateExpr.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		date = dateutil.Extract(text, now)
		return false
	})
	if date == "" {
		return dateutil.Format(now)
	}
	return date
}
