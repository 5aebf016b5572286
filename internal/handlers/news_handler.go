package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/interfaces"
)

const defaultNewsPreview = 5

// NewsHandler exposes raw fetch results for operability testing. It bypasses
// the cache and the rest of the pipeline.
type NewsHandler struct {
	news   interfaces.NewsSource
	logger arbor.ILogger
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(news interfaces.NewsSource, logger arbor.ILogger) *NewsHandler {
	return &NewsHandler{
		news:   news,
		logger: logger,
	}
}

// GetNewsHandler handles GET /api/news?ticker=AAPL&limit=5
func (h *NewsHandler) GetNewsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := common.NormalizeTicker(r.URL.Query().Get("ticker"))
	if !common.IsValidTicker(ticker) {
		WriteError(w, http.StatusBadRequest, "missing or invalid ticker parameter")
		return
	}

	limit := QueryInt(r, "limit", defaultNewsPreview)

	articles := h.news.Fetch(r.Context(), ticker)
	if len(articles) > limit {
		articles = articles[:limit]
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":   ticker,
		"count":    len(articles),
		"articles": articles,
	})
}
