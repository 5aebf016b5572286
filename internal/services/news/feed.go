package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/tickerpulse/internal/models"
)

// fetchFeed pulls the structured feed for ticker and converts entries to
// articles. Entries without a title are skipped; entries without a parseable
// date default to the current time.
func (s *Service) fetchFeed(ctx context.Context, ticker string) ([]models.Article, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	feedURL := fmt.Sprintf(s.config.FeedURLTemplate, url.QueryEscape(ticker))

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout.Std())
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := time.Now().UTC()
	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		published := now
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}

		articles = append(articles, models.Article{
			Title:       title,
			Link:        strings.TrimSpace(item.Link),
			PublishedAt: published,
			Description: strings.TrimSpace(item.Description),
		})
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("entries", len(articles)).
		Msg("Feed entries retrieved")

	return articles, nil
}
