package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
	"github.com/ternarybob/tickerpulse/internal/models"
)

// AnalyzeHandler handles HTTP requests for ticker analysis
type AnalyzeHandler struct {
	analyzer interfaces.Analyzer
	logger   arbor.ILogger
}

// NewAnalyzeHandler creates a new AnalyzeHandler
func NewAnalyzeHandler(analyzer interfaces.Analyzer, logger arbor.ILogger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

type analyzeRequest struct {
	Ticker string `json:"ticker"`
}

// AnalyzeTickerHandler handles POST /api/analyze
func (h *AnalyzeHandler) AnalyzeTickerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.Ticker)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			WriteError(w, http.StatusBadRequest, vErr.Error())
			return
		}

		// Detail stays server-side; the caller gets an opaque message.
		h.logger.Error().Err(err).Str("ticker", req.Ticker).Msg("Analysis failed")
		WriteError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
