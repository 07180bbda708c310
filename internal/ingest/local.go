package ingest

import (
	"context"
	"fmt"

	"github.com/parlaydesk/tracker/internal/store"
)

// BetLister lists stored bets.
type BetLister interface {
	List(ctx context.Context) ([]store.Bet, error)
}

// LocalSource reads bets from the local store.
type LocalSource struct {
	bets BetLister
}

// NewLocalSource creates a LocalSource backed by bets.
func NewLocalSource(bets BetLister) *LocalSource {
	return &LocalSource{bets: bets}
}

// Name identifies the source in logs.
func (s *LocalSource) Name() string {
	return "local"
}

// Fetch returns the stored bets as sheet rows.
func (s *LocalSource) Fetch(ctx context.Context) ([]store.RawRecord, error) {
	bets, err := s.bets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}

	records := make([]store.RawRecord, len(bets))
	for i, bet := range bets {
		records[i] = bet.Record()
	}
	return records, nil
}
