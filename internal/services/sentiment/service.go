package sentiment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// Service sits above the raw classifier boundary. It builds classifier input
// from articles, trains lazily when the classifier reports an untrained
// model, retries the prediction exactly once after training, and caches
// evaluation metrics for the process lifetime.
type Service struct {
	classifier interfaces.Classifier
	config     common.SentimentConfig
	logger     arbor.ILogger

	mu      sync.Mutex
	metrics *models.ClassifierMetrics
}

func NewService(classifier interfaces.Classifier, config common.SentimentConfig, logger arbor.ILogger) *Service {
	return &Service{
		classifier: classifier,
		config:     config,
		logger:     logger,
	}
}

// Analyze scores the batch of articles. It never returns nil; classifier
// failures degrade to a neutral, zero-confidence verdict carrying the error.
func (s *Service) Analyze(ctx context.Context, articles []models.Article) *models.SentimentVerdict {
	texts := buildTexts(articles, s.config.MaxDescriptionChars)
	if len(texts) == 0 {
		return &models.SentimentVerdict{
			Sentiment: models.SentimentNeutral,
			NoInput:   true,
		}
	}

	verdict, err := s.classifier.Predict(ctx, texts)
	if errors.Is(err, ErrNotTrained) {
		s.logger.Info().Msg("Classifier untrained, running training pass")
		if trainErr := s.train(ctx); trainErr != nil {
			s.logger.Warn().Err(trainErr).Msg("Classifier training failed")
			return degradedVerdict(trainErr)
		}
		verdict, err = s.classifier.Predict(ctx, texts)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int("texts", len(texts)).Msg("Sentiment prediction failed")
		return degradedVerdict(err)
	}

	return verdict
}

// Metrics returns the classifier's evaluation metrics, fetching (and if
// necessary training) on first use and serving the cached copy afterwards.
// Returns nil when no metrics can be obtained.
func (s *Service) Metrics(ctx context.Context) *models.ClassifierMetrics {
	if cached := s.cachedMetrics(); cached != nil {
		return cached
	}

	metrics, err := s.classifier.Metrics(ctx)
	if errors.Is(err, ErrNotTrained) {
		if trainErr := s.train(ctx); trainErr != nil {
			s.logger.Warn().Err(trainErr).Msg("Classifier training failed during metrics fetch")
			return nil
		}
		return s.cachedMetrics()
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Classifier metrics fetch failed")
		return nil
	}

	s.storeMetrics(metrics)
	return metrics
}

func (s *Service) train(ctx context.Context) error {
	metrics, err := s.classifier.Train(ctx)
	if err != nil {
		return err
	}
	s.storeMetrics(metrics)
	return nil
}

func (s *Service) cachedMetrics() *models.ClassifierMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

func (s *Service) storeMetrics(metrics *models.ClassifierMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// buildTexts concatenates each article's title with a bounded prefix of its
// description. Empty results are dropped.
func buildTexts(articles []models.Article, maxDescriptionChars int) []string {
	texts := make([]string, 0, len(articles))
	for _, a := range articles {
		description := a.Description
		if utf8.RuneCountInString(description) > maxDescriptionChars {
			runes := []rune(description)
			description = string(runes[:maxDescriptionChars])
		}
		text := strings.TrimSpace(a.Title + " " + description)
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

func degradedVerdict(err error) *models.SentimentVerdict {
	return &models.SentimentVerdict{
		Sentiment: models.SentimentNeutral,
		Error:     err.Error(),
	}
}

var _ interfaces.SentimentService = (*Service)(nil)
