package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// selectorSet describes one markup layout of the quote news page. Sets are
// tried in order; the first that yields any articles wins.
type selectorSet struct {
	name     string
	item     string
	title    string
	link     string
	dateText string
}

var pageSelectors = []selectorSet{
	{name: "stream-items", item: "li.stream-item", title: "h3", link: "a", dateText: "time, .publishing"},
	{name: "js-stream", item: "li.js-stream-content", title: "h3", link: "h3 a", dateText: "span"},
	{name: "generic", item: "article", title: "h3, h2", link: "a", dateText: "time"},
}

// scrapePage fetches the quote news page and extracts articles from static
// markup. Scraped entries carry no description.
func (s *Service) scrapePage(ctx context.Context, ticker string) ([]models.Article, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	pageURL := fmt.Sprintf(s.config.PageURLTemplate, url.PathEscape(ticker))

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout.Std())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	now := time.Now().UTC()
	for _, set := range pageSelectors {
		articles := extractArticles(doc, set, base, now)
		if len(articles) > 0 {
			s.logger.Debug().
				Str("ticker", ticker).
				Str("selectors", set.name).
				Int("entries", len(articles)).
				Msg("Page scrape matched")
			return articles, nil
		}
	}

	return nil, nil
}

func extractArticles(doc *goquery.Document, set selectorSet, base *url.URL, now time.Time) []models.Article {
	var articles []models.Article
	doc.Find(set.item).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(set.title).First().Text())
		if title == "" {
			return
		}

		link := ""
		if href, ok := sel.Find(set.link).First().Attr("href"); ok {
			link = resolveLink(base, href)
		}

		published := now
		if text := strings.TrimSpace(sel.Find(set.dateText).First().Text()); text != "" {
			published = parseArticleDate(text, now)
		}

		articles = append(articles, models.Article{
			Title:       title,
			Link:        link,
			PublishedAt: published,
		})
	})
	return articles
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
