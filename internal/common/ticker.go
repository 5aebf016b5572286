// Package common provides shared utilities across the application.
package common

import (
	"regexp"
	"strings"
)

// Ticker symbols are 1-5 alphanumeric characters with an optional single
// class suffix (e.g. "BRK.B"). Validation runs on already-normalized input;
// extraction scans free text for letter tokens of the same shape.
var (
	tickerPattern  = regexp.MustCompile(`^[A-Z0-9]{1,5}(\.[A-Z])?$`)
	extractPattern = regexp.MustCompile(`\b[A-Z]{1,5}(\.[A-Z])?\b`)
)

// IsValidTicker reports whether s is a well-formed ticker symbol.
func IsValidTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// NormalizeTicker cleans raw user input into candidate ticker form:
// trimmed, uppercased, with everything outside [A-Z0-9.] stripped.
// The result still has to pass IsValidTicker before entering the pipeline.
func NormalizeTicker(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractTickers scans free text for ticker-shaped tokens and returns them
// in first-occurrence order, de-duplicated. Empty or whitespace input yields
// an empty slice.
func ExtractTickers(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	matches := extractPattern.FindAllString(strings.ToUpper(text), -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if !IsValidTicker(m) {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		result = append(result, m)
	}
	return result
}

// FirstTicker returns the first valid ticker in text, or "" when none found.
func FirstTicker(text string) string {
	tickers := ExtractTickers(text)
	if len(tickers) == 0 {
		return ""
	}
	return tickers[0]
}
