package ledger

import (
	"fmt"
	"time"

	"github.com/parlaydesk/tracker/internal/store"
)

// KeyPolicy decides which legs belong to the same parlay.
type KeyPolicy string

const (
	// KeyDateOdds groups legs sharing date and parlay odds.
	KeyDateOdds KeyPolicy = "date_odds"

	// KeyDate groups legs by date alone. Only valid for sheets with at most
	// one parlay per day.
	KeyDate KeyPolicy = "date"
)

// Valid reports whether p is a known policy.
func (p KeyPolicy) Valid() bool {
	return p == KeyDateOdds || p == KeyDate
}

// Key returns the grouping key of a leg.
func (p KeyPolicy) Key(leg store.Leg) string {
	if p == KeyDate {
		return leg.Date
	}
	return fmt.Sprintf("%s|%s", leg.Date, leg.ParlayOdds)
}

// Parlay is a group of legs settled together.
type Parlay struct {
	Key        string
	Date       string
	ParlayOdds string
	Legs       []store.Leg

	// When is the resolved calendar date, zero until BuildSeason resolves it
	When time.Time
}

// Group splits legs into parlays. Parlays appear in the order their first leg
// appears and keep their legs in input order.
func Group(legs []store.Leg, policy KeyPolicy) []Parlay {
	var parlays []Parlay
	index := make(map[string]int)

	for _, leg := range legs {
		key := policy.Key(leg)
		i, ok := index[key]
		if !ok {
			i = len(parlays)
			index[key] = i
			parlays = append(parlays, Parlay{
				Key:        key,
				Date:       leg.Date,
				ParlayOdds: leg.ParlayOdds,
			})
		}
		parlays[i].Legs = append(parlays[i].Legs, leg)
	}

	return parlays
}

// RecordedResult is the parlay result written on the first leg.
func (p Parlay) RecordedResult() store.Result {
	if len(p.Legs) == 0 {
		return store.ResultPending
	}
	return p.Legs[0].ParlayResult
}

// Result is the recorded result when the sheet settles the parlay, otherwise
// the result derived from the legs.
func (p Parlay) Result() store.Result {
	if r := p.RecordedResult(); r.Resolved() {
		return r
	}
	return DeriveResult(p.Legs)
}

// DeriveResult settles a parlay from its legs: won when every leg won, lost
// when every leg is settled and at least one lost, pending otherwise.
func DeriveResult(legs []store.Leg) store.Result {
	if len(legs) == 0 {
		return store.ResultPending
	}

	lost := false
	for _, leg := range legs {
		switch leg.PickResult {
		case store.ResultWon:
		case store.ResultLost:
			lost = true
		default:
			return store.ResultPending
		}
	}

	if lost {
		return store.ResultLost
	}
	return store.ResultWon
}

// Odds returns the parlay odds, falling back to the product of the leg odds
// when the sheet leaves them blank.
func (p Parlay) Odds() (float64, bool) {
	if v, ok := store.ParseDecimal(p.ParlayOdds); ok {
		return v, true
	}
	if len(p.Legs) == 0 {
		return 0, false
	}

	product := 1.0
	for _, leg := range p.Legs {
		if leg.Odds <= 0 {
			return 0, false
		}
		product *= leg.Odds
	}
	return product, true
}

// Bank returns the last bank value recorded on any leg.
func (p Parlay) Bank() (float64, bool) {
	for i := len(p.Legs) - 1; i >= 0; i-- {
		if b := p.Legs[i].Bank; b != nil {
			return *b, true
		}
	}
	return 0, false
}

// Stake returns the first stake recorded on a leg, or def.
func (p Parlay) Stake(def float64) float64 {
	for _, leg := range p.Legs {
		if leg.Stake != nil {
			return *leg.Stake
		}
	}
	return def
}

// Profit is the bankroll change the parlay causes under stake accounting.
func (p Parlay) Profit(defaultStake float64) float64 {
	stake := p.Stake(defaultStake)
	switch p.Result() {
	case store.ResultWon:
		odds, ok := p.Odds()
		if !ok {
			return 0
		}
		return stake * (odds - 1)
	case store.ResultLost:
		return -stake
	default:
		return 0
	}
}

// PickCounts returns how many legs won and lost.
func (p Parlay) PickCounts() (wins, losses int) {
	for _, leg := range p.Legs {
		switch leg.PickResult {
		case store.ResultWon:
			wins++
		case store.ResultLost:
			losses++
		}
	}
	return wins, losses
}
