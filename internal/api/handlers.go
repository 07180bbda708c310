package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parlaydesk/tracker/internal/view"
)

// StatusResponse reports the health of the refresh cycle.
type StatusResponse struct {
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	HasData     bool       `json:"hasData"`
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	Refreshes   int64      `json:"refreshes"`
	Failures    int64      `json:"failures"`
	Uptime      string     `json:"uptime"`
	Clients     int        `json:"wsClients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()

	resp := StatusResponse{
		Status:    string(snap.Status),
		Source:    snap.Source,
		HasData:   snap.HasData,
		LastError: snap.LastError,
		Refreshes: snap.Refreshes,
		Failures:  snap.Failures,
		Uptime:    snap.Uptime.Round(time.Second).String(),
		Clients:   s.hub.Clients(),
	}
	if !snap.LastAttempt.IsZero() {
		resp.LastAttempt = &snap.LastAttempt
	}
	if !snap.LastSuccess.IsZero() {
		resp.LastSuccess = &snap.LastSuccess
	}

	respondJSON(w, http.StatusOK, resp)
}

// model returns the current season, writing 503 when none has loaded yet.
func (s *Server) model(w http.ResponseWriter) (view.Model, bool) {
	m, ok := s.tracker.Model()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "season data has not loaded yet")
	}
	return m, ok
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, m.Summary())
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w)
	if !ok {
		return
	}

	key := chi.URLParam(r, "key")
	month, found := m.Month(key)
	if !found {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "no month "+key)
		return
	}
	respondJSON(w, http.StatusOK, month)
}

// handleParlay expects the parlay key path-escaped, since keys contain '/'.
func (s *Server) handleParlay(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w)
	if !ok {
		return
	}

	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "malformed parlay key")
		return
	}

	p, found := m.Parlay(key)
	if !found {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "no parlay "+key)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.refresher.RunOnce(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, ErrCodeUnavailable, err.Error())
		return
	}
	s.handleStatus(w, r)
}
