package sentiment

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// fakeClassifier mimics the external process: untrained until Train runs.
type fakeClassifier struct {
	trained      bool
	trainCalls   int
	predictCalls int
	metricsCalls int
	lastTexts    []string
	predictErr   error
	trainErr     error
}

func (f *fakeClassifier) Train(_ context.Context) (*models.ClassifierMetrics, error) {
	f.trainCalls++
	if f.trainErr != nil {
		return nil, f.trainErr
	}
	f.trained = true
	return &models.ClassifierMetrics{Accuracy: 0.91, Precision: 0.88, Recall: 0.86, F1: 0.87}, nil
}

func (f *fakeClassifier) Predict(_ context.Context, texts []string) (*models.SentimentVerdict, error) {
	f.predictCalls++
	f.lastTexts = texts
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	if !f.trained {
		return nil, ErrNotTrained
	}
	return &models.SentimentVerdict{Sentiment: models.SentimentPositive, Confidence: 0.82}, nil
}

func (f *fakeClassifier) Metrics(_ context.Context) (*models.ClassifierMetrics, error) {
	f.metricsCalls++
	if !f.trained {
		return nil, ErrNotTrained
	}
	return &models.ClassifierMetrics{Accuracy: 0.91, Precision: 0.88, Recall: 0.86, F1: 0.87}, nil
}

func newTestService(classifier *fakeClassifier) *Service {
	config := common.SentimentConfig{MaxDescriptionChars: 200}
	return NewService(classifier, config, common.GetLogger())
}

func TestService_AnalyzeTrainsOnceThenPredicts(t *testing.T) {
	classifier := &fakeClassifier{}
	svc := newTestService(classifier)
	articles := []models.Article{{Title: "Shares rally on earnings beat"}}

	verdict := svc.Analyze(context.Background(), articles)

	require.NotNil(t, verdict)
	assert.Equal(t, models.SentimentPositive, verdict.Sentiment)
	assert.Equal(t, 1, classifier.trainCalls)
	assert.Equal(t, 2, classifier.predictCalls)

	// Subsequent calls must not retrain, and metrics must be stable.
	first := svc.Metrics(context.Background())
	second := svc.Metrics(context.Background())
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, classifier.trainCalls)

	svc.Analyze(context.Background(), articles)
	assert.Equal(t, 1, classifier.trainCalls)
}

func TestService_AnalyzeNoInputSkipsClassifier(t *testing.T) {
	classifier := &fakeClassifier{trained: true}
	svc := newTestService(classifier)

	verdict := svc.Analyze(context.Background(), []models.Article{{Title: "   "}})

	require.NotNil(t, verdict)
	assert.Equal(t, models.SentimentNeutral, verdict.Sentiment)
	assert.Zero(t, verdict.Confidence)
	assert.True(t, verdict.NoInput)
	assert.Equal(t, 0, classifier.predictCalls)
}

func TestService_AnalyzeDegradesWhenTrainingFails(t *testing.T) {
	classifier := &fakeClassifier{trainErr: fmt.Errorf("python3: not found")}
	svc := newTestService(classifier)

	verdict := svc.Analyze(context.Background(), []models.Article{{Title: "Some headline"}})

	require.NotNil(t, verdict)
	assert.Equal(t, models.SentimentNeutral, verdict.Sentiment)
	assert.Zero(t, verdict.Confidence)
	assert.Contains(t, verdict.Error, "not found")
	assert.Equal(t, 1, classifier.predictCalls)
}

func TestService_AnalyzeDegradesOnPredictFailure(t *testing.T) {
	classifier := &fakeClassifier{trained: true, predictErr: fmt.Errorf("exit status 1")}
	svc := newTestService(classifier)

	verdict := svc.Analyze(context.Background(), []models.Article{{Title: "Some headline"}})

	require.NotNil(t, verdict)
	assert.Equal(t, models.SentimentNeutral, verdict.Sentiment)
	assert.Contains(t, verdict.Error, "exit status 1")
	assert.Equal(t, 0, classifier.trainCalls)
}

func TestService_InputTruncatesLongDescriptions(t *testing.T) {
	classifier := &fakeClassifier{trained: true}
	svc := newTestService(classifier)
	articles := []models.Article{
		{Title: "Headline", Description: strings.Repeat("x", 500)},
		{Title: "", Description: ""},
	}

	svc.Analyze(context.Background(), articles)

	require.Len(t, classifier.lastTexts, 1)
	assert.Equal(t, len("Headline ")+200, len(classifier.lastTexts[0]))
}

func TestService_InputTruncationKeepsMultibyteRunesIntact(t *testing.T) {
	classifier := &fakeClassifier{trained: true}
	svc := newTestService(classifier)
	articles := []models.Article{
		{Title: "Überschrift", Description: strings.Repeat("ü", 500)},
	}

	svc.Analyze(context.Background(), articles)

	require.Len(t, classifier.lastTexts, 1)
	text := classifier.lastTexts[0]
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, utf8.RuneCountInString("Überschrift ")+200, utf8.RuneCountInString(text))
}

func TestService_MetricsCachedAfterFirstFetch(t *testing.T) {
	classifier := &fakeClassifier{trained: true}
	svc := newTestService(classifier)

	first := svc.Metrics(context.Background())
	second := svc.Metrics(context.Background())

	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, classifier.metricsCalls)
}
