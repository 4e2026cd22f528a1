// Package api serves read-only run statistics over HTTP.
// Live endpoints read whichever Boundary was last published; archive
// endpoints read the SQLite run archive.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/talgya/worldhistory/internal/engine"
	"github.com/talgya/worldhistory/internal/persistence"
)

// Server serves run state over HTTP.
type Server struct {
	DB          *persistence.DB // Optional; archive endpoints return 503 without it.
	Port        int
	CORSOrigins []string // Allowed in addition to localhost dev servers.

	current atomic.Pointer[engine.Boundary]
	srv     *http.Server
}

// Publish makes b the run the live endpoints report on. nil clears it.
func (s *Server) Publish(b *engine.Boundary) {
	s.current.Store(b)
}

// Handler builds the API's routes.
func (s *Server) Handler() http.Handler {
	// Archive queries hit SQLite; keep them cheap for the live run.
	archiveLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/stats/history", s.handleStatsHistory)
	mux.HandleFunc("GET /api/v1/runs", RateLimitMiddleware(archiveLimiter, s.handleRuns))
	mux.HandleFunc("GET /api/v1/runs/{id}/samples", RateLimitMiddleware(archiveLimiter, s.handleRunSamples))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "archive", s.DB != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// snapshot reads the published boundary, writing an error response if
// there is none or it is poisoned.
func (s *Server) snapshot(w http.ResponseWriter) (engine.BoundarySnapshot, bool) {
	b := s.current.Load()
	if b == nil {
		http.Error(w, "no simulation running", http.StatusServiceUnavailable)
		return engine.BoundarySnapshot{}, false
	}
	snap, err := b.Snapshot()
	if err != nil {
		slog.Error("boundary snapshot failed", "run", b.RunID(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return engine.BoundarySnapshot{}, false
	}
	return snap, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	status := map[string]any{
		"run_id":         snap.RunID,
		"started_at":     snap.StartedAt,
		"steps_complete": snap.StepsComplete,
		"steps_total":    snap.StepsTotal,
		"progress":       snap.Progress(),
		"stop_requested": snap.StopRequested,
	}
	if n := len(snap.Entities); n > 0 {
		status["entities"] = snap.Entities[n-1]
		status["people"] = snap.People[n-1]
		status["places"] = snap.Places[n-1]
		status["last_tick_seconds"] = snap.TickSeconds[n-1]
	}
	writeJSON(w, status)
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"run_id":       snap.RunID,
		"capacity":     snap.Capacity,
		"tick_seconds": snap.TickSeconds,
		"entities":     snap.Entities,
		"people":       snap.People,
		"places":       snap.Places,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		slog.Error("recent runs query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleRunSamples(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	samples, err := s.DB.RunSamples(id)
	if err != nil {
		slog.Error("run samples query failed", "run", id, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if len(samples) == 0 {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, samples)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
