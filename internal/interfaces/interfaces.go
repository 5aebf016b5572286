// Package interfaces defines the service contracts wired through the app
// container. Implementations are substituted with fakes in tests.
package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/tickerpulse/internal/models"
)

// ErrRecordNotFound is returned by storage lookups for missing records.
var ErrRecordNotFound = errors.New("record not found")

// NewsSource retrieves recent articles for a ticker. An empty result is a
// normal outcome, never an error; strategy failures are absorbed internally.
type NewsSource interface {
	Fetch(ctx context.Context, ticker string) []models.Article
}

// Summarizer condenses a set of articles into a single summary string.
// Implementations must always resolve to a string, falling back internally
// on any external failure.
type Summarizer interface {
	Summarize(ctx context.Context, articles []models.Article) string
}

// Classifier is the narrow boundary to the external sentiment classifier
// process: JSON in, JSON out.
type Classifier interface {
	Train(ctx context.Context) (*models.ClassifierMetrics, error)
	Predict(ctx context.Context, texts []string) (*models.SentimentVerdict, error)
	Metrics(ctx context.Context) (*models.ClassifierMetrics, error)
}

// SentimentService scores article batches, handling lazy training, metric
// caching and untrained retries above the raw Classifier.
type SentimentService interface {
	Analyze(ctx context.Context, articles []models.Article) *models.SentimentVerdict
	Metrics(ctx context.Context) *models.ClassifierMetrics
}

// ResultCache memoizes analysis results per ticker with a TTL.
// Lookup errors are absorbed and reported as a miss.
type ResultCache interface {
	Get(ticker string) (*models.AnalysisResult, bool)
	Put(ticker string, result *models.AnalysisResult) error
	Sweep() int
}

// Analyzer runs the full request/response cycle for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, rawTicker string) (*models.AnalysisResult, error)
}

// HistoryStorage persists completed analysis records.
type HistoryStorage interface {
	SaveRecord(record *models.AnalysisRecord) error
	ListRecords(ticker string, limit int) ([]*models.AnalysisRecord, error)
	Close() error
}

// SampleSource reads the current sample from a shared external resource
// such as the system clipboard. Platform-specific implementations are
// selected at startup; tests substitute a fake.
type SampleSource interface {
	ReadCurrentSample() (string, error)
}
