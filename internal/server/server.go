package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

// Server provides health, state and metrics endpoints for the watch loop.
type Server struct {
	store   storage.Store
	metrics http.Handler
	mux     *http.ServeMux
	logger  *slog.Logger

	mu      sync.RWMutex
	lastRun *RunSummary
}

// RunSummary is the JSON view of the most recent run.
type RunSummary struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	Outcome     tracker.Outcome    `json:"outcome"`
	Transition  model.Transition   `json:"transition,omitempty"`
	Observation *model.Observation `json:"observation,omitempty"`
	Notified    bool               `json:"notified"`
	Saved       bool               `json:"saved"`
	Errors      []string           `json:"errors,omitempty"`
}

// NewServer creates an API server. metrics may be nil.
func NewServer(store storage.Store, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		store:   store,
		metrics: metrics,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/state", s.handleState)
	s.mux.HandleFunc("GET /api/v1/runs/last", s.handleLastRun)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ObserveRun implements tracker.RunObserver.
func (s *Server) ObserveRun(res tracker.Result) {
	summary := &RunSummary{
		RunID:       res.RunID,
		StartedAt:   res.StartedAt,
		Outcome:     res.Outcome,
		Transition:  res.Transition,
		Observation: res.Observation,
		Notified:    res.Notified,
		Saved:       res.Saved,
	}
	for _, err := range []error{res.FetchErr, res.LoadErr, res.NotifyErr, res.SaveErr} {
		if err != nil {
			summary.Errors = append(summary.Errors, err.Error())
		}
	}

	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	obs, err := s.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "no state recorded yet", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("load state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(obs)
}

func (s *Server) handleLastRun(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	last := s.lastRun
	s.mu.RUnlock()

	if last == nil {
		http.Error(w, "no run yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(last)
}
