// Package api exposes the ops HTTP interface for the crawler.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bormog/ycrawler/internal/crawl"
	"github.com/bormog/ycrawler/internal/fetch"
	"github.com/bormog/ycrawler/internal/metrics"
)

// Server serves health, status and metrics endpoints alongside the
// crawl loop. It only reads crawl state; it never mutates it.
type Server struct {
	router  chi.Router
	state   *crawl.State
	fetcher *fetch.Fetcher
	logger  *zap.Logger
	started time.Time
}

// NewServer constructs a Server with its routes registered.
func NewServer(state *crawl.State, fetcher *fetch.Fetcher, logger *zap.Logger) *Server {
	s := &Server{
		state:   state,
		fetcher: fetcher,
		logger:  logger,
		started: time.Now().UTC(),
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/statusz", s.statusz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the JSON document served by /statusz.
type statusResponse struct {
	UptimeSeconds float64     `json:"uptime_seconds"`
	Scheduled     []string    `json:"scheduled"`
	VisitedCount  int         `json:"visited_count"`
	Fetcher       fetch.Stats `json:"fetcher"`
}

func (s *Server) statusz(w http.ResponseWriter, _ *http.Request) {
	scheduled, visited := s.state.Snapshot()
	s.writeJSON(w, http.StatusOK, statusResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Scheduled:     scheduled,
		VisitedCount:  len(visited),
		Fetcher:       s.fetcher.Stats(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}
