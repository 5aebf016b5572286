// Package news retrieves recent articles for a ticker. A structured feed is
// the primary strategy; a page scrape is the fallback when the feed yields
// nothing. No results is a normal outcome, never an error.
package news

import (
	"context"
	"net/http"
	"sort"

	"github.com/mmcdole/gofeed"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
	"golang.org/x/time/rate"
)

// Service fetches, normalizes, de-duplicates and orders ticker news.
type Service struct {
	config  common.NewsConfig
	client  *http.Client
	parser  *gofeed.Parser
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewService creates a news service from configuration.
func NewService(config common.NewsConfig, logger arbor.ILogger) *Service {
	client := &http.Client{
		Timeout: config.RequestTimeout.Std(),
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = config.UserAgent

	return &Service{
		config:  config,
		client:  client,
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit),
		logger:  logger,
	}
}

// Fetch returns up to MaxArticles articles for ticker, newest first.
// Strategy failures degrade to the next strategy and finally to an empty
// slice; callers never see an error.
func (s *Service) Fetch(ctx context.Context, ticker string) []models.Article {
	articles, err := s.fetchFeed(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Primary feed fetch failed")
	}

	if len(articles) == 0 {
		fallback, err := s.scrapePage(ctx, ticker)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Fallback page scrape failed")
		}
		articles = fallback
	}

	articles = normalizeArticles(articles, s.config.MaxArticles)

	s.logger.Debug().
		Str("ticker", ticker).
		Int("articles", len(articles)).
		Msg("News fetch completed")

	return articles
}

// normalizeArticles de-duplicates by exact title (first seen wins), sorts
// newest first and truncates to max.
func normalizeArticles(articles []models.Article, max int) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.Title]; ok {
			continue
		}
		seen[a.Title] = struct{}{}
		unique = append(unique, a)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].PublishedAt.After(unique[j].PublishedAt)
	})

	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}

var _ interfaces.NewsSource = (*Service)(nil)
