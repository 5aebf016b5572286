package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Analysis pipeline
	mux.HandleFunc("/api/analyze", s.app.AnalyzeHandler.AnalyzeTickerHandler) // POST - run or replay an analysis

	// Diagnostics
	mux.HandleFunc("/api/news", s.app.NewsHandler.GetNewsHandler) // GET - raw fetch preview, cache bypassed
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	// History is optional; the route only exists when persistence is enabled
	if s.app.HistoryHandler != nil {
		mux.HandleFunc("/api/history", s.app.HistoryHandler.GetHistoryHandler)
	}

	return mux
}
