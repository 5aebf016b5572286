// Package summarizer condenses article headlines into a short summary.
// The fast strategy is deterministic and local; the Claude strategy calls
// the Anthropic API and degrades to the fast strategy on any failure.
package summarizer

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// noNewsMessage is returned for tickers with zero articles. Never empty.
const noNewsMessage = "No recent news found for this ticker."

const fastTitleCount = 3

// FastSummarizer builds a one-sentence summary from the newest headlines
// without any external call.
type FastSummarizer struct {
	logger arbor.ILogger
}

func NewFastSummarizer(logger arbor.ILogger) *FastSummarizer {
	return &FastSummarizer{logger: logger}
}

// Summarize joins the top headlines into a single sentence. Zero articles
// yield the fixed no-news message.
func (s *FastSummarizer) Summarize(_ context.Context, articles []models.Article) string {
	return fastSummary(articles)
}

func fastSummary(articles []models.Article) string {
	if len(articles) == 0 {
		return noNewsMessage
	}

	count := len(articles)
	if count > fastTitleCount {
		count = fastTitleCount
	}

	titles := make([]string, 0, count)
	for _, a := range articles[:count] {
		titles = append(titles, strings.TrimRight(strings.TrimSpace(a.Title), "."))
	}

	return "Recent headlines: " + strings.Join(titles, "; ") + "."
}

var _ interfaces.Summarizer = (*FastSummarizer)(nil)
