// Package server exposes the dashboard over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"CompteClient/internal/dashboard"
	"CompteClient/internal/gateway"
	"CompteClient/internal/model"
	"CompteClient/internal/render"
)

// StateReporter reports the state of the cached aggregates.
type StateReporter interface {
	State() gateway.State
}

// Server serves the dashboard page and its parts.
type Server struct {
	dashboard *dashboard.Service
	state     StateReporter
}

// New creates a Server. state may be nil.
func New(svc *dashboard.Service, state StateReporter) *Server {
	return &Server{dashboard: svc, state: state}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard", s.handleLayout).Methods(http.MethodGet)
	r.HandleFunc("/charts/{id}.svg", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("[INFO] dashboard listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.dashboard.WritePage(r.Context(), &buf)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		log.Printf("[ERROR] render page: %v", err)
		w.WriteHeader(statusFor(err))
	}
	w.Write(buf.Bytes())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Snapshot(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Layout)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Snapshot(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	section, ok := snap.Layout.Chart(mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := render.ChartSVG(&buf, section); err != nil {
		if errors.Is(err, render.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Printf("[ERROR] render chart: %v", err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := "unknown"
	if s.state != nil {
		state = s.state.State().String()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "data": state})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] load dashboard: %v", err)
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[INFO] %s %s (%v)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
