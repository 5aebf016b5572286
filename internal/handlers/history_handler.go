package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
)

// HistoryHandler serves persisted analysis records.
type HistoryHandler struct {
	history interfaces.HistoryStorage
	limit   int
	logger  arbor.ILogger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history interfaces.HistoryStorage, limit int, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		limit:   limit,
		logger:  logger,
	}
}

// GetHistoryHandler handles GET /api/history?ticker=AAPL&limit=20. The
// ticker filter is optional; records come back newest first.
func (h *HistoryHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := ""
	if raw := r.URL.Query().Get("ticker"); raw != "" {
		ticker = common.NormalizeTicker(raw)
		if !common.IsValidTicker(ticker) {
			WriteError(w, http.StatusBadRequest, "invalid ticker parameter")
			return
		}
	}

	limit := QueryInt(r, "limit", h.limit)

	records, err := h.history.ListRecords(ticker, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("ticker", ticker).Msg("History lookup failed")
		WriteError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}
