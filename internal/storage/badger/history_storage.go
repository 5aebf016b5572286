package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// HistoryStorage persists completed analysis records in badgerhold.
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HistoryStorage {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

// SaveRecord inserts or updates an analysis record.
func (s *HistoryStorage) SaveRecord(record *models.AnalysisRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record and record ID are required")
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save analysis record: %w", err)
	}

	s.logger.Debug().
		Str("id", record.ID).
		Str("ticker", record.Ticker).
		Msg("Analysis record saved")

	return nil
}

// ListRecords returns records newest-first, optionally filtered by ticker.
func (s *HistoryStorage) ListRecords(ticker string, limit int) ([]*models.AnalysisRecord, error) {
	if limit < 1 {
		limit = 20
	}

	var records []*models.AnalysisRecord
	var query *badgerhold.Query
	if ticker != "" {
		query = badgerhold.Where("Ticker").Eq(ticker).Index("Ticker")
	}

	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// Close is a no-op; the shared connection is closed by the app.
func (s *HistoryStorage) Close() error {
	return nil
}

var _ interfaces.HistoryStorage = (*HistoryStorage)(nil)
