// Package cache provides the TTL-based memoization of analysis results.
// Entries live in the shared Badger store; the in-memory Badger option
// covers tests and throwaway runs.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

const keyPrefix = "result:"

// Service is a Badger-backed result cache with one entry per ticker.
// A put fully replaces the prior entry and resets its age; get evicts
// lazily, and Sweep proactively removes everything expired.
type Service struct {
	db     *badgerdb.DB
	ttl    time.Duration
	logger arbor.ILogger
	now    func() time.Time
}

// NewService creates a new cache service.
func NewService(db *badgerdb.DB, ttl time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		db:     db,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func cacheKey(ticker string) []byte {
	return []byte(keyPrefix + ticker)
}

// Get returns the cached result for ticker, treating an entry as absent
// once its age reaches the TTL and deleting it on access.
func (s *Service) Get(ticker string) (*models.AnalysisResult, bool) {
	var entry models.CacheEntry

	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(cacheKey(ticker))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err == badgerdb.ErrKeyNotFound {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Cache lookup failed, treating as miss")
		return nil, false
	}

	if entry.Expired(s.now(), s.ttl) {
		if err := s.delete(ticker); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to evict expired cache entry")
		}
		s.logger.Debug().Str("ticker", ticker).Msg("Cache entry expired")
		return nil, false
	}

	return entry.Result, true
}

// Put stores a result, replacing any existing entry for the ticker.
// Empty-article results are cacheable like any other.
func (s *Service) Put(ticker string, result *models.AnalysisResult) error {
	entry := models.CacheEntry{
		Result:   result,
		StoredAt: s.now(),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		// Badger TTL is a backstop; expiry is decided from StoredAt so the
		// boundary stays exact.
		e := badgerdb.NewEntry(cacheKey(ticker), data).WithTTL(s.ttl + time.Minute)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("articles", len(result.Articles)).
		Msg("Analysis result cached")

	return nil
}

// Sweep removes all expired entries and returns how many were deleted.
// Scheduled by the app on a fixed interval.
func (s *Service) Sweep() int {
	now := s.now()
	var stale []string

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var entry models.CacheEntry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil || entry.Expired(now, s.ttl) {
				stale = append(stale, string(item.Key())[len(keyPrefix):])
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache sweep scan failed")
		return 0
	}

	deleted := 0
	for _, ticker := range stale {
		if err := s.delete(ticker); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Cache sweep delete failed")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Debug().Int("deleted", deleted).Msg("Cache sweep removed expired entries")
	}
	return deleted
}

func (s *Service) delete(ticker string) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(cacheKey(ticker))
	})
}

var _ interfaces.ResultCache = (*Service)(nil)
