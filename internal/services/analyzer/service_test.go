package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

type fakeNews struct {
	calls    int
	articles []models.Article
}

func (f *fakeNews) Fetch(_ context.Context, _ string) []models.Article {
	f.calls++
	if f.articles == nil {
		return []models.Article{}
	}
	return f.articles
}

type fakeSummarizer struct{ summary string }

func (f *fakeSummarizer) Summarize(_ context.Context, articles []models.Article) string {
	if len(articles) == 0 {
		return "No recent news found for this ticker."
	}
	return f.summary
}

type fakeSentiment struct {
	verdict      *models.SentimentVerdict
	metrics      *models.ClassifierMetrics
	metricsCalls int
}

func (f *fakeSentiment) Analyze(_ context.Context, _ []models.Article) *models.SentimentVerdict {
	return f.verdict
}

func (f *fakeSentiment) Metrics(_ context.Context) *models.ClassifierMetrics {
	f.metricsCalls++
	return f.metrics
}

type fakeCache struct {
	entries map[string]*models.AnalysisResult
	gets    []string
	puts    []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*models.AnalysisResult)}
}

func (f *fakeCache) Get(ticker string) (*models.AnalysisResult, bool) {
	f.gets = append(f.gets, ticker)
	result, ok := f.entries[ticker]
	return result, ok
}

func (f *fakeCache) Put(ticker string, result *models.AnalysisResult) error {
	f.puts = append(f.puts, ticker)
	f.entries[ticker] = result
	return nil
}

func (f *fakeCache) Sweep() int { return 0 }

type fakeHistory struct {
	records []*models.AnalysisRecord
}

func (f *fakeHistory) SaveRecord(record *models.AnalysisRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) ListRecords(_ string, _ int) ([]*models.AnalysisRecord, error) {
	return f.records, nil
}

func (f *fakeHistory) Close() error { return nil }

func newTestAnalyzer(news *fakeNews, sentiment *fakeSentiment, cache *fakeCache, history *fakeHistory) *Service {
	// Avoid wrapping a typed nil in the interface so the service's nil
	// history check still disables persistence.
	var historyStorage interfaces.HistoryStorage
	if history != nil {
		historyStorage = history
	}
	return NewService(
		news,
		&fakeSummarizer{summary: "Recent headlines: something."},
		sentiment,
		cache,
		historyStorage,
		common.GetLogger(),
	)
}

func positiveSentiment() *fakeSentiment {
	return &fakeSentiment{
		verdict: &models.SentimentVerdict{Sentiment: models.SentimentPositive, Confidence: 0.8},
		metrics: &models.ClassifierMetrics{Accuracy: 0.9},
	}
}

func TestService_AnalyzeRejectsInvalidTickerBeforeIO(t *testing.T) {
	news := &fakeNews{}
	svc := newTestAnalyzer(news, positiveSentiment(), newFakeCache(), nil)

	tests := []string{"", "   ", "!!!", "TOOLONGG"}
	for _, input := range tests {
		result, err := svc.Analyze(context.Background(), input)
		require.Error(t, err, "input %q", input)
		assert.Nil(t, result)

		var vErr *models.ValidationError
		assert.ErrorAs(t, err, &vErr)
	}
	assert.Equal(t, 0, news.calls, "invalid input must be rejected before any fetch")
}

func TestService_AnalyzeNormalizesToOneCacheKey(t *testing.T) {
	news := &fakeNews{articles: []models.Article{{Title: "A headline"}}}
	cache := newFakeCache()
	svc := newTestAnalyzer(news, positiveSentiment(), cache, nil)

	first, err := svc.Analyze(context.Background(), "aapl ")
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", first.Ticker)
	assert.Same(t, first, second, "second call must be served from cache")
	assert.Equal(t, 1, news.calls)
	assert.Equal(t, []string{"AAPL"}, cache.puts)
	assert.Equal(t, []string{"AAPL", "AAPL"}, cache.gets)
}

func TestService_AnalyzeEmptyNewsIsAssembledAndCached(t *testing.T) {
	news := &fakeNews{}
	cache := newFakeCache()
	sentiment := &fakeSentiment{
		verdict: &models.SentimentVerdict{Sentiment: models.SentimentNeutral, NoInput: true},
	}
	svc := newTestAnalyzer(news, sentiment, cache, nil)

	result, err := svc.Analyze(context.Background(), "ZZZZZ")

	require.NoError(t, err)
	assert.Equal(t, "ZZZZZ", result.Ticker)
	assert.Equal(t, "No recent news found for this ticker.", result.Summary)
	assert.NotNil(t, result.Articles)
	assert.Empty(t, result.Articles)
	assert.Contains(t, cache.entries, "ZZZZZ")
	assert.Equal(t, 0, sentiment.metricsCalls, "no-article verdicts must not reach the classifier for metrics")
}

func TestService_AnalyzeSentimentFailureDegradesToAbsentFields(t *testing.T) {
	news := &fakeNews{articles: []models.Article{{Title: "A headline"}}}
	sentiment := &fakeSentiment{
		verdict: &models.SentimentVerdict{Sentiment: models.SentimentNeutral, Error: "classifier unreachable"},
		metrics: &models.ClassifierMetrics{Accuracy: 0.9},
	}
	svc := newTestAnalyzer(news, sentiment, newFakeCache(), nil)

	result, err := svc.Analyze(context.Background(), "TSLA")

	require.NoError(t, err)
	assert.Nil(t, result.Sentiment)
	assert.Nil(t, result.Metrics)
	assert.Equal(t, "Recent headlines: something.", result.Summary)
	assert.Len(t, result.Articles, 1)
}

func TestService_AnalyzePersistsHistoryRecord(t *testing.T) {
	news := &fakeNews{articles: []models.Article{{Title: "A headline"}, {Title: "Another"}}}
	history := &fakeHistory{}
	svc := newTestAnalyzer(news, positiveSentiment(), newFakeCache(), history)

	_, err := svc.Analyze(context.Background(), "MSFT")

	require.NoError(t, err)
	require.Len(t, history.records, 1)
	record := history.records[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "MSFT", record.Ticker)
	assert.Equal(t, 2, record.ArticleCount)
	assert.Equal(t, models.SentimentPositive, record.Sentiment)
	assert.False(t, record.CreatedAt.IsZero())
}
