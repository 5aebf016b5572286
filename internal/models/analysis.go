// Package models defines the data types shared across the analysis pipeline.
package models

import (
	"time"
)

// Article is a single normalized news item produced by the news fetcher.
// Immutable once constructed; two articles with the same title are
// considered duplicates (first seen wins).
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// Sentiment labels produced by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentVerdict is the classifier's judgement over a batch of texts.
type SentimentVerdict struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`

	// Per-class probabilities as reported by the classifier.
	ProbNegative float64 `json:"probability_negative,omitempty"`
	ProbNeutral  float64 `json:"probability_neutral,omitempty"`
	ProbPositive float64 `json:"probability_positive,omitempty"`

	// NoInput is set when there was nothing to classify; the classifier
	// process was not invoked.
	NoInput bool `json:"no_input,omitempty"`

	// Error carries the classifier failure text when classification
	// degraded to a neutral verdict.
	Error string `json:"error,omitempty"`
}

// ClassifierMetrics are computed once per (re)training and cached for the
// process lifetime. All values are in [0,1].
type ClassifierMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// AnalysisResult is the unit stored in the cache and returned to callers.
// A new request always produces a new instance; results are never mutated
// in place.
type AnalysisResult struct {
	Ticker    string             `json:"ticker"`
	Summary   string             `json:"summary"`
	Articles  []Article          `json:"articles"`
	Sentiment *SentimentVerdict  `json:"sentiment,omitempty"`
	Metrics   *ClassifierMetrics `json:"metrics,omitempty"`
}

// CacheEntry wraps a result with its storage timestamp. Owned exclusively
// by the result cache.
type CacheEntry struct {
	Result   *AnalysisResult `json:"result"`
	StoredAt time.Time       `json:"stored_at"`
}

// Expired reports whether the entry has outlived ttl at the given instant.
func (e *CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) >= ttl
}

// AnalysisRecord is a persisted trace of a completed analysis, kept for the
// history endpoint.
type AnalysisRecord struct {
	ID           string    `badgerhold:"key" json:"id"`
	Ticker       string    `badgerhold:"index" json:"ticker"`
	Summary      string    `json:"summary"`
	ArticleCount int       `json:"article_count"`
	Sentiment    string    `json:"sentiment,omitempty"`
	Confidence   float64   `json:"confidence,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
