// Package dateutil handles the date formats the crawled sources emit:
// ISO YYYY-MM-DD fields, loosely delimited dates inside free text, and
// RFC-1123 style timestamps from the Naver search API.
package dateutil

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const isoDate = "2006-01-02"

var (
	isoExpr   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	looseExpr = regexp.MustCompile(`(\d{4})[.\-/](\d{1,2})[.\-/](\d{1,2})`)

	stripPolicy = bluemonday.StrictPolicy()
)

// Parse reads a YYYY-MM-DD (single-digit month/day tolerated) date string.
func Parse(s string) (time.Time, bool) {
	m := isoExpr.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, fmt.Sprintf("%s-%s-%s", m[1], pad(m[2]), pad(m[3])))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Midnight zeroes the time of day, keeping the calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DDay returns whole days from today until the deadline; negative means
// passed. The second return is false when no deadline can be computed.
func DDay(deadline string, today time.Time) (int, bool) {
	if deadline == "" {
		return 0, false
	}
	dl, ok := Parse(deadline)
	if !ok {
		return 0, false
	}
	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(Midnight(dl).Sub(base).Hours() / 24)
	return days, true
}

// Extract scans free text for the first YYYY.MM.DD / YYYY-MM-DD / YYYY/MM/DD
// shaped date and normalizes it; today (formatted) is the fallback.
func Extract(text string, today time.Time) string {
	m := looseExpr.FindStringSubmatch(text)
	if m == nil {
		return Format(today)
	}
	normalized := fmt.Sprintf("%s-%s-%s", m[1], pad(m[2]), pad(m[3]))
	if _, err := time.Parse(isoDate, normalized); err != nil {
		return Format(today)
	}
	return normalized
}

// Format renders a time as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(isoDate)
}

// FormatShort renders a YYYY-MM-DD string as MM.DD for digest lines.
func FormatShort(date string) string {
	if len(date) < 10 {
		return ""
	}
	return strings.ReplaceAll(date[5:10], "-", ".")
}

// ParseRFC1123 converts an RFC-1123 style timestamp (Naver pubDate,
// e.g. "Mon, 02 Jan 2006 15:04:05 +0900") to YYYY-MM-DD, or "".
func ParseRFC1123(s string) string {
	t, err := time.Parse(time.RFC1123Z, strings.TrimSpace(s))
	if err != nil {
		if t, err = time.Parse(time.RFC1123, strings.TrimSpace(s)); err != nil {
			return ""
		}
	}
	return Format(t.UTC())
}

// StripHTML removes markup from API-provided titles and decodes entities.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}
