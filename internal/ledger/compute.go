package ledger

import "github.com/parlaydesk/tracker/internal/store"

// State is everything derived from one fetch of the sheet.
type State struct {
	Rows    int
	Dropped int
	Legs    []store.Leg
	Parlays []Parlay
	Season  SeasonAggregate
}

// ComputeDerivedState runs the whole pipeline: normalize, group, aggregate.
// It is a pure function of its arguments.
func ComputeDerivedState(records []store.RawRecord, opts Options) State {
	if !opts.Key.Valid() {
		opts.Key = KeyDateOdds
	}

	norm := Normalize(records)
	parlays := Group(norm.Legs, opts.Key)

	return State{
		Rows:    len(records),
		Dropped: norm.Dropped,
		Legs:    norm.Legs,
		Parlays: parlays,
		Season:  BuildSeason(parlays, opts),
	}
}
