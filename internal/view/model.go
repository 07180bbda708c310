// Package view maps derived season state to a render-ready model shared by
// the terminal dashboard and the HTTP API.
package view

import (
	"github.com/parlaydesk/tracker/internal/ledger"
)

// Totals are display-ready aggregate statistics.
type Totals struct {
	Parlays     int     `json:"parlays"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pending     int     `json:"pending"`
	PickWins    int     `json:"pickWins"`
	PickLosses  int     `json:"pickLosses"`
	HitRate     float64 `json:"hitRate"`
	OpeningBank float64 `json:"openingBank"`
	Bank        float64 `json:"bank"`
	Profit      float64 `json:"profit"`
	Staked      float64 `json:"staked"`
	AvgOdds     float64 `json:"avgOdds"`
}

// Leg is one selection of a parlay.
type Leg struct {
	Match       string  `json:"match"`
	MatchResult string  `json:"matchResult"`
	Pick        string  `json:"pick"`
	PickResult  string  `json:"pickResult"`
	Odds        float64 `json:"odds"`
}

// Parlay summarises one parlay. Legs are omitted from summaries and loaded
// on demand.
type Parlay struct {
	Key      string   `json:"key"`
	Date     string   `json:"date"`
	Odds     string   `json:"odds"`
	Result   string   `json:"result"`
	Bank     *float64 `json:"bank,omitempty"`
	Stake    float64  `json:"stake"`
	Profit   float64  `json:"profit"`
	LegCount int      `json:"legCount"`
	Legs     []Leg    `json:"legs,omitempty"`
}

// Month is one calendar month of the season.
type Month struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Totals  Totals   `json:"totals"`
	Parlays []Parlay `json:"parlays"`
}

// Model is the whole season as the UI shows it.
type Model struct {
	Season     string   `json:"season"`
	BankPolicy string   `json:"bankPolicy"`
	Rows       int      `json:"rows"`
	Dropped    int      `json:"dropped"`
	Totals     Totals   `json:"totals"`
	Months     []Month  `json:"months"`
	Undated    []Parlay `json:"undated,omitempty"`
}

// Build maps derived state to a Model. It is a pure function.
func Build(state ledger.State, bank ledger.BankConfig) Model {
	season := state.Season

	m := Model{
		Season:     season.Season.Label(),
		BankPolicy: string(bank.Policy),
		Rows:       state.Rows,
		Dropped:    state.Dropped,
		Totals:     buildTotals(season.Totals),
		Months:     make([]Month, 0, len(season.Months)),
	}

	for _, month := range season.Months {
		vm := Month{
			Key:     month.Key,
			Label:   month.Start.Format("January 2006"),
			Totals:  buildTotals(month.Totals),
			Parlays: make([]Parlay, 0, len(month.Parlays)),
		}
		for _, p := range month.Parlays {
			vm.Parlays = append(vm.Parlays, buildParlay(p, bank.DefaultStake))
		}
		m.Months = append(m.Months, vm)
	}

	for _, p := range season.Undated {
		m.Undated = append(m.Undated, buildParlay(p, bank.DefaultStake))
	}

	return m
}

// Summary returns a copy of m without leg detail.
func (m Model) Summary() Model {
	out := m
	out.Months = make([]Month, len(m.Months))
	for i, month := range m.Months {
		month.Parlays = stripLegs(month.Parlays)
		out.Months[i] = month
	}
	out.Undated = stripLegs(m.Undated)
	return out
}

// Month returns the month with the given key.
func (m Model) Month(key string) (Month, bool) {
	for _, month := range m.Months {
		if month.Key == key {
			return month, true
		}
	}
	return Month{}, false
}

// Parlay returns the parlay with the given key, including its legs.
func (m Model) Parlay(key string) (Parlay, bool) {
	for _, month := range m.Months {
		for _, p := range month.Parlays {
			if p.Key == key {
				return p, true
			}
		}
	}
	for _, p := range m.Undated {
		if p.Key == key {
			return p, true
		}
	}
	return Parlay{}, false
}

func stripLegs(parlays []Parlay) []Parlay {
	if parlays == nil {
		return nil
	}
	out := make([]Parlay, len(parlays))
	for i, p := range parlays {
		p.Legs = nil
		out[i] = p
	}
	return out
}

func buildTotals(t ledger.Totals) Totals {
	out := Totals{
		Parlays:     t.Parlays,
		Wins:        t.ParlayWins,
		Losses:      t.ParlayLosses,
		Pending:     t.Pending,
		PickWins:    t.PickWins,
		PickLosses:  t.PickLosses,
		OpeningBank: t.OpeningBank,
		Bank:        t.Bank,
		Profit:      t.Profit,
		Staked:      t.Staked,
		AvgOdds:     t.AvgOdds,
	}
	if settled := t.ParlayWins + t.ParlayLosses; settled > 0 {
		out.HitRate = float64(t.ParlayWins) / float64(settled)
	}
	return out
}

func buildParlay(p ledger.Parlay, defaultStake float64) Parlay {
	out := Parlay{
		Key:      p.Key,
		Date:     p.Date,
		Odds:     p.ParlayOdds,
		Result:   p.Result().String(),
		Stake:    p.Stake(defaultStake),
		Profit:   p.Profit(defaultStake),
		LegCount: len(p.Legs),
		Legs:     make([]Leg, 0, len(p.Legs)),
	}
	if b, ok := p.Bank(); ok {
		out.Bank = &b
	}
	if out.Odds == "" {
		if o, ok := p.Odds(); ok {
			out.Odds = formatOdds(o)
		}
	}

	for _, leg := range p.Legs {
		out.Legs = append(out.Legs, Leg{
			Match:       leg.Match,
			MatchResult: leg.MatchResult,
			Pick:        leg.Pick,
			PickResult:  leg.PickResult.String(),
			Odds:        leg.Odds,
		})
	}
	return out
}
