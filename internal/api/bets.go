package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parlaydesk/tracker/internal/store"
)

// ImportResponse reports how many bets an import stored.
type ImportResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.bets.List(r.Context())
	if err != nil {
		s.internalError(w, "list_bets_failed", err)
		return
	}
	if bets == nil {
		bets = []store.Bet{}
	}
	respondJSON(w, http.StatusOK, bets)
}

// parseBet decodes a bet body. An "id" field is accepted so exported bets can
// be sent back unchanged, but it is ignored: the store or the URL owns the id.
func parseBet(r *http.Request) (store.Leg, error) {
	var bet store.Bet
	if err := parseJSONBody(r, &bet); err != nil {
		return store.Leg{}, err
	}
	return bet.Leg, nil
}

func (s *Server) handleAddBet(w http.ResponseWriter, r *http.Request) {
	leg, err := parseBet(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid bet: "+err.Error())
		return
	}

	bet, err := s.bets.Add(r.Context(), leg)
	if err != nil {
		s.internalError(w, "add_bet_failed", err)
		return
	}

	s.recompute(r.Context())
	respondJSON(w, http.StatusCreated, bet)
}

func (s *Server) handleUpdateBet(w http.ResponseWriter, r *http.Request) {
	leg, err := parseBet(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid bet: "+err.Error())
		return
	}

	bet := store.Bet{ID: chi.URLParam(r, "id"), Leg: leg}
	if err := s.bets.Update(r.Context(), bet); err != nil {
		s.betError(w, "update_bet_failed", err)
		return
	}

	s.recompute(r.Context())
	respondJSON(w, http.StatusOK, bet)
}

func (s *Server) handleDeleteBet(w http.ResponseWriter, r *http.Request) {
	if err := s.bets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.betError(w, "delete_bet_failed", err)
		return
	}

	s.recompute(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportBets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="bets.json"`)
	if err := s.bets.Export(r.Context(), w); err != nil {
		s.log.Error("export_bets_failed", "error", err)
	}
}

func (s *Server) handleImportBets(w http.ResponseWriter, r *http.Request) {
	n, err := s.bets.Import(r.Context(), http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		s.betError(w, "import_bets_failed", err)
		return
	}

	s.recompute(r.Context())
	respondJSON(w, http.StatusOK, ImportResponse{Imported: n})
}

// recompute refreshes the season after a local edit. A failure here is
// already recorded by the tracker and does not fail the edit.
func (s *Server) recompute(ctx context.Context) {
	if err := s.refresher.RunOnce(ctx); err != nil {
		s.log.Warn("recompute_failed", "error", err)
	}
}

func (s *Server) betError(w http.ResponseWriter, event string, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrBetNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidImport), errors.As(err, &maxBytes):
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
	default:
		s.internalError(w, event, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, event string, err error) {
	s.log.Error(event, "error", err)
	respondError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
}
