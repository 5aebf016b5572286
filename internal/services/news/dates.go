package news

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativePattern matches scraped timestamps like "15m ago", "2 hours ago"
// or "3d ago".
var relativePattern = regexp.MustCompile(`(?i)(\d+)\s*(m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days)\s+ago`)

var absoluteLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
}

// parseArticleDate converts a scraped date string into a timestamp relative
// to now. Unparseable input resolves to now rather than failing the article.
func parseArticleDate(text string, now time.Time) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return now
	}

	if strings.EqualFold(text, "yesterday") {
		return now.Add(-24 * time.Hour)
	}

	if match := relativePattern.FindStringSubmatch(text); match != nil {
		n, err := strconv.Atoi(match[1])
		if err == nil {
			switch strings.ToLower(match[2])[0] {
			case 'm':
				return now.Add(-time.Duration(n) * time.Minute)
			case 'h':
				return now.Add(-time.Duration(n) * time.Hour)
			case 'd':
				return now.Add(-time.Duration(n) * 24 * time.Hour)
			}
		}
	}

	for _, layout := range absoluteLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed.UTC()
		}
	}

	return now
}
