// Package digest composes the two-part outgoing message from categorized
// articles. Pure string building; no I/O.
package digest

import (
	"fmt"
	"strings"
	"time"

	"StartupDigest/internal/dateutil"
	"StartupDigest/internal/domain"
)

// categoryLimits caps how many lines each category shows in the primary
// message; 0 means unlimited. The thread message is never capped.
var categoryLimits = map[domain.Category]int{
	domain.CategoryUrgent: 0,
	domain.CategoryNew:    10,
	domain.CategoryNews:   5,
}

// BuildPrimary renders the size-bounded main message: dated header,
// per-category capped sections with overflow notices, and a shown/total
// footer. Empty categories are omitted.
func BuildPrimary(categorized map[domain.Category][]domain.Article, today time.Time) string {
	shownTotal := 0
	fullTotal := totalCount(categorized)

	var lines []string
	lines = append(lines, fmt.Sprintf("📮 *[창업 정책 위클리 다이제스트]* %s", today.Format("2006.01.02")), "")

	for _, category := range domain.CategoryOrder {
		articles := categorized[category]
		if len(articles) == 0 {
			continue
		}

		display := articles
		if limit := categoryLimits[category]; limit > 0 && len(articles) > limit {
			display = articles[:limit]
		}
		overflow := len(articles) - len(display)
		shownTotal += len(display)

		lines = append(lines, fmt.Sprintf("*%s* (%d건)", category.Label(), len(articles)))
		for _, a := range display {
			lines = append(lines, formatArticle(a, today))
		}
		if overflow > 0 {
			lines = append(lines, fmt.Sprintf("  _…외 %d건 (스레드에서 전체 확인)_", overflow))
		}
		lines = append(lines, "")
	}

	lines = append(lines, fmt.Sprintf("총 *%d건* 표시 (전체 %d건)", shownTotal, fullTotal))
	lines = append(lines, "_💬 스레드에서 전체 목록을 확인하세요_")

	return strings.Join(lines, "\n")
}

// BuildThread renders the unbounded full list posted as a reply.
func BuildThread(categorized map[domain.Category][]domain.Article, today time.Time) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("📎 *전체 목록* (%d건)", totalCount(categorized)), "")

	for _, category := range domain.CategoryOrder {
		articles := categorized[category]
		if len(articles) == 0 {
			continue
		}

		lines = append(lines, fmt.Sprintf("*%s* (%d건)", category.Label(), len(articles)))
		for _, a := range articles {
			lines = append(lines, formatArticle(a, today))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "_자동 수집 by Startup Policy Digest_")
	return strings.Join(lines, "\n")
}

// formatArticle renders one item: linked title, then source and dates.
func formatArticle(a domain.Article, today time.Time) string {
	info := []string{a.Source}

	switch {
	case a.Category == domain.CategoryUrgent:
		if dday, ok := dateutil.DDay(a.Deadline, today); ok {
			info = append(info, fmt.Sprintf("마감 %s (D-%d)", dateutil.FormatShort(a.Deadline), dday))
		}
	case a.Deadline != "":
		info = append(info, "마감 "+dateutil.FormatShort(a.Deadline))
		if a.Date != "" {
			info = append(info, "등록 "+dateutil.FormatShort(a.Date))
		}
	case a.Date != "":
		info = append(info, dateutil.FormatShort(a.Date))
	}

	return fmt.Sprintf("• <%s|%s>\n  └ %s", a.URL, a.Title, strings.Join(info, " | "))
}

func totalCount(categorized map[domain.Category][]domain.Article) int {
	total := 0
	for _, articles := range categorized {
		total += len(articles)
	}
	return total
}
