// Package analyzer composes validation, cache, news retrieval, summarization
// and sentiment scoring into one request/response cycle.
package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// Service runs the full pipeline for one ticker request.
type Service struct {
	news      interfaces.NewsSource
	summary   interfaces.Summarizer
	sentiment interfaces.SentimentService
	cache     interfaces.ResultCache
	history   interfaces.HistoryStorage
	logger    arbor.ILogger
}

// NewService wires the pipeline stages together. history may be nil when
// history persistence is disabled.
func NewService(
	news interfaces.NewsSource,
	summary interfaces.Summarizer,
	sentiment interfaces.SentimentService,
	cache interfaces.ResultCache,
	history interfaces.HistoryStorage,
	logger arbor.ILogger,
) *Service {
	return &Service{
		news:      news,
		summary:   summary,
		sentiment: sentiment,
		cache:     cache,
		history:   history,
		logger:    logger,
	}
}

// Analyze normalizes and validates rawTicker, then serves the result from
// cache or runs the pipeline: fetch, summarize and score concurrently,
// assemble, cache, persist. A sentiment failure degrades to absent
// sentiment/metrics fields; it never aborts the request.
func (s *Service) Analyze(ctx context.Context, rawTicker string) (*models.AnalysisResult, error) {
	ticker := common.NormalizeTicker(rawTicker)
	if !common.IsValidTicker(ticker) {
		return nil, models.NewValidationError(rawTicker, "not a valid ticker symbol")
	}

	if cached, ok := s.cache.Get(ticker); ok {
		s.logger.Debug().Str("ticker", ticker).Msg("Analysis served from cache")
		return cached, nil
	}

	started := time.Now()
	articles := s.news.Fetch(ctx, ticker)

	var (
		wg      sync.WaitGroup
		summary string
		verdict *models.SentimentVerdict
		metrics *models.ClassifierMetrics
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		summary = s.summary.Summarize(ctx, articles)
	}()
	go func() {
		defer wg.Done()
		verdict = s.sentiment.Analyze(ctx, articles)
		// No articles means no classifier run, so there are no metrics to
		// fetch and no reason to wake the classifier process.
		if verdict != nil && verdict.Error == "" && !verdict.NoInput {
			metrics = s.sentiment.Metrics(ctx)
		}
	}()
	wg.Wait()

	if verdict != nil && verdict.Error != "" {
		// Degrade to absent sentiment rather than surfacing the failure.
		verdict = nil
		metrics = nil
	}

	result := &models.AnalysisResult{
		Ticker:    ticker,
		Summary:   summary,
		Articles:  articles,
		Sentiment: verdict,
		Metrics:   metrics,
	}

	if err := s.cache.Put(ticker, result); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache analysis result")
	}

	s.saveHistory(result)

	s.logger.Info().
		Str("ticker", ticker).
		Int("articles", len(articles)).
		Dur("duration", time.Since(started)).
		Msg("Analysis completed")

	return result, nil
}

func (s *Service) saveHistory(result *models.AnalysisResult) {
	if s.history == nil {
		return
	}

	record := &models.AnalysisRecord{
		ID:           uuid.New().String(),
		Ticker:       result.Ticker,
		Summary:      result.Summary,
		ArticleCount: len(result.Articles),
		CreatedAt:    time.Now().UTC(),
	}
	if result.Sentiment != nil {
		record.Sentiment = result.Sentiment.Sentiment
		record.Confidence = result.Sentiment.Confidence
	}

	if err := s.history.SaveRecord(record); err != nil {
		s.logger.Warn().Err(err).Str("ticker", result.Ticker).Msg("Failed to persist analysis record")
	}
}

var _ interfaces.Analyzer = (*Service)(nil)
