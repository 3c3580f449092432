package crawlers

import (
	"context"
	"testing"
)

const bizinfoFixture = `
<html><body>
<table class="tbl_type1"><tbody>
  <tr>
    <td>금융</td>
    <td><a href="#" onclick="fnGoView('PBLN_000000000104001'); return false;">창업기업 융자 지원</a></td>
    <td>2024.01.02 ~ 2024.01.31</td>
  </tr>
  <tr>
    <td>기술</td>
    <td><a href="#" onclick="location.href='/web/announce/view.do?seq=55';">기술개발 바우처</a></td>
    <td>2024-01-03</td>
  </tr>
  <tr>
    <td>인력</td>
    <td><a href="/web/lay1/bbs/S1T122C128/AS/74/view.do?pblancId=PBLN_000000000104002">채용 연계 지원</a></td>
    <td></td>
  </tr>
</tbody></table>
</body></html>`

func TestBizinfoCrawl(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, bizinfoFixture)
	crawler := NewBizinfo(newTestClient(), server.URL, nil)

	articles, err := crawler.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl error: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d: %+v", len(articles), articles)
	}

	// onclick carrying a PBLN announcement id.
	if want := server.URL + "/web/lay1/bbs/S1T122C128/AS/74/view.do?pblancId=PBLN_000000000104001"; articles[0].URL != want {
		t.Fatalf("PBLN onclick URL = %q, want %q", articles[0].URL, want)
	}
	if articles[0].Date != "2024-01-02" {
		t.Fatalf("date from row text = %q", articles[0].Date)
	}

	// onclick carrying a quoted site path.
	if want := server.URL + "/web/announce/view.do?seq=55"; articles[1].URL != want {
		t.Fatalf("path onclick URL = %q, want %q", articles[1].URL, want)
	}

	// A usable href wins over onclick parsing.
	if want := server.URL + "/web/lay1/bbs/S1T122C128/AS/74/view.do?pblancId=PBLN_000000000104002"; articles[2].URL != want {
		t.Fatalf("href URL = %q, want %q", articles[2].URL, want)
	}
	if articles[2].Date == "" {
		t.Fatalf("row without dates must default to today")
	}
}

func TestBizinfoNoRowsMatched(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<html><body><div class="empty">공고가 없습니다</div></body></html>`)
	crawler := NewBizinfo(newTestClient(), server.URL, nil)

	articles, err := crawler.Crawl(context.Background())
	if err != nil || len(articles) != 0 {
		t.Fatalf("layout drift must yield an empty result: %v %+v", err, articles)
	}
}
