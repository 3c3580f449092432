// Package crawlers holds the source adapters. Each adapter extracts a
// normalized article list from one origin's document shape and degrades
// to an empty result when the page cannot be fetched or no longer matches.
package crawlers

import (
	"log/slog"
	"regexp"
	"strings"
)

// isoDateExpr matches the strict YYYY-MM-DD fields the portals render.
var isoDateExpr = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// absoluteURL resolves an href that is either already absolute or rooted.
func absoluteURL(base, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http") {
		return href, true
	}
	if strings.HasPrefix(href, "/") {
		return base + href, true
	}
	return "", false
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

func info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}
