package ledger

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/parlaydesk/tracker/internal/store"
)

// BankPolicy decides how the bankroll is derived. Sheets disagree on what
// the Bank column means, so the policy is always chosen explicitly.
type BankPolicy string

const (
	// BankSnapshot treats Bank as an absolute bankroll: the latest recorded
	// value wins.
	BankSnapshot BankPolicy = "snapshot"

	// BankDelta ignores the Bank column and accumulates parlay profit on top
	// of the starting bank.
	BankDelta BankPolicy = "delta"
)

// Valid reports whether p is a known policy.
func (p BankPolicy) Valid() bool {
	return p == BankSnapshot || p == BankDelta
}

// BankConfig configures bankroll derivation.
type BankConfig struct {
	Policy       BankPolicy
	StartingBank float64
	DefaultStake float64
}

// Totals are the aggregate statistics of a set of parlays.
type Totals struct {
	Parlays      int
	ParlayWins   int
	ParlayLosses int
	Pending      int
	PickWins     int
	PickLosses   int

	OpeningBank float64
	Bank        float64
	Profit      float64
	Staked      float64
	AvgOdds     float64
}

// Aggregate computes totals over parlays, which must be in chronological
// order. opening is the bank before the first parlay.
func Aggregate(parlays []Parlay, opening float64, cfg BankConfig) Totals {
	t := Totals{
		Parlays:     len(parlays),
		OpeningBank: opening,
		Bank:        opening,
	}

	odds := make([]float64, 0, len(parlays))
	for _, p := range parlays {
		switch p.Result() {
		case store.ResultWon:
			t.ParlayWins++
		case store.ResultLost:
			t.ParlayLosses++
		default:
			t.Pending++
		}

		wins, losses := p.PickCounts()
		t.PickWins += wins
		t.PickLosses += losses

		if o, ok := p.Odds(); ok {
			odds = append(odds, o)
		}

		switch cfg.Policy {
		case BankDelta:
			t.Bank += p.Profit(cfg.DefaultStake)
			if p.Result().Resolved() {
				t.Staked += p.Stake(cfg.DefaultStake)
			}
		default:
			if b, ok := p.Bank(); ok {
				t.Bank = b
			}
		}
	}

	t.Profit = t.Bank - t.OpeningBank
	if len(odds) > 0 {
		t.AvgOdds = stat.Mean(odds, nil)
	}
	return t
}

// Month is the parlays of one calendar month.
type Month struct {
	Key     string
	Start   time.Time
	Parlays []Parlay
	Totals  Totals
}

// SeasonAggregate is the fully derived state of a season.
type SeasonAggregate struct {
	Season Season
	Months []Month
	Totals Totals

	// Undated are parlays whose date could not be resolved. They are
	// excluded from every total.
	Undated []Parlay
}

// Options configure the derivation pipeline.
type Options struct {
	Season Season
	Key    KeyPolicy
	Bank   BankConfig
}

// BuildSeason resolves parlay dates, orders parlays chronologically, buckets
// them by month and aggregates each month with the bank carried over from the
// month before.
func BuildSeason(parlays []Parlay, opts Options) SeasonAggregate {
	agg := SeasonAggregate{Season: opts.Season}

	dated := make([]Parlay, 0, len(parlays))
	for _, p := range parlays {
		when, ok := opts.Season.Resolve(p.Date)
		if !ok {
			agg.Undated = append(agg.Undated, p)
			continue
		}
		p.When = when
		dated = append(dated, p)
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].When.Before(dated[j].When)
	})

	for _, p := range dated {
		key := MonthKey(p.When)
		n := len(agg.Months)
		if n == 0 || agg.Months[n-1].Key != key {
			agg.Months = append(agg.Months, Month{
				Key:   key,
				Start: time.Date(p.When.Year(), p.When.Month(), 1, 0, 0, 0, 0, time.UTC),
			})
			n++
		}
		agg.Months[n-1].Parlays = append(agg.Months[n-1].Parlays, p)
	}

	running := opts.Bank.StartingBank
	for i := range agg.Months {
		agg.Months[i].Totals = Aggregate(agg.Months[i].Parlays, running, opts.Bank)
		running = agg.Months[i].Totals.Bank
	}

	agg.Totals = Aggregate(dated, opts.Bank.StartingBank, opts.Bank)
	return agg
}

// Month returns the bucket with the given key.
func (s SeasonAggregate) Month(key string) (Month, bool) {
	for _, m := range s.Months {
		if m.Key == key {
			return m, true
		}
	}
	return Month{}, false
}

// Parlay returns the parlay with the given grouping key, dated or not.
func (s SeasonAggregate) Parlay(key string) (Parlay, bool) {
	for _, m := range s.Months {
		for _, p := range m.Parlays {
			if p.Key == key {
				return p, true
			}
		}
	}
	for _, p := range s.Undated {
		if p.Key == key {
			return p, true
		}
	}
	return Parlay{}, false
}
