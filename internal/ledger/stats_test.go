package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlaydesk/tracker/internal/store"
)

var season2025 = Season{StartYear: 2025, StartMonth: time.August}

func parlay(date, odds string, result store.Result, bank *float64) Parlay {
	return Parlay{
		Key:        date + "|" + odds,
		Date:       date,
		ParlayOdds: odds,
		Legs: []store.Leg{
			{Date: date, Match: "A v B", Pick: "A", PickResult: result, Odds: 1.5, ParlayOdds: odds, ParlayResult: result},
			{Date: date, Match: "C v D", Pick: "C", PickResult: result, Odds: 2, ParlayOdds: odds, Bank: bank},
		},
	}
}

func bank(f float64) *float64 { return &f }

func TestAggregateDeltaAccumulation(t *testing.T) {
	cfg := BankConfig{Policy: BankDelta, StartingBank: 500, DefaultStake: 10}

	won := parlay("01/09", "3.0", store.ResultWon, nil)
	totals := Aggregate([]Parlay{won}, 500, cfg)
	assert.Equal(t, 520.0, totals.Bank)

	lost := parlay("02/09", "2.5", store.ResultLost, nil)
	totals = Aggregate([]Parlay{won, lost}, 500, cfg)
	assert.Equal(t, 510.0, totals.Bank)
	assert.Equal(t, 10.0, totals.Profit)
	assert.Equal(t, 20.0, totals.Staked)
	assert.Equal(t, 1, totals.ParlayWins)
	assert.Equal(t, 1, totals.ParlayLosses)
	assert.Equal(t, 2, totals.PickWins)
	assert.Equal(t, 2, totals.PickLosses)
	assert.InDelta(t, 2.75, totals.AvgOdds, 1e-9)
}

func TestAggregateSnapshotUsesLatestBank(t *testing.T) {
	cfg := BankConfig{Policy: BankSnapshot}

	parlays := []Parlay{
		parlay("01/09", "3.0", store.ResultWon, bank(530)),
		parlay("02/09", "2.5", store.ResultLost, bank(520)),
		parlay("03/09", "2.0", store.ResultPending, nil),
	}

	totals := Aggregate(parlays, 500, cfg)
	assert.Equal(t, 520.0, totals.Bank)
	assert.Equal(t, 1, totals.Pending)
	assert.Equal(t, 20.0, totals.Profit)
}

func TestAggregateCountsOnlyKnownResults(t *testing.T) {
	p := parlay("01/09", "3.0", store.ResultPending, nil)
	p.Legs[0].ParlayResult = store.ParseResult("void")
	p.Legs[0].PickResult = store.ResultPending
	p.Legs[1].PickResult = store.ResultWon

	totals := Aggregate([]Parlay{p}, 0, BankConfig{Policy: BankSnapshot})
	assert.Zero(t, totals.ParlayWins)
	assert.Zero(t, totals.ParlayLosses)
	assert.Equal(t, 1, totals.PickWins)
}

func TestBuildSeasonMonthBuckets(t *testing.T) {
	parlays := []Parlay{
		parlay("03/01", "2.0", store.ResultWon, nil),
		parlay("05/08", "3.0", store.ResultWon, nil),
		parlay("20/08", "2.5", store.ResultLost, nil),
		parlay("bad", "2.0", store.ResultWon, nil),
	}

	opts := Options{Season: season2025, Key: KeyDateOdds, Bank: BankConfig{Policy: BankDelta, StartingBank: 500, DefaultStake: 10}}
	agg := BuildSeason(parlays, opts)

	require.Len(t, agg.Months, 2)
	assert.Equal(t, "2025-08", agg.Months[0].Key)
	assert.Equal(t, "2026-01", agg.Months[1].Key)
	assert.True(t, agg.Months[0].Start.Before(agg.Months[1].Start))
	require.Len(t, agg.Months[0].Parlays, 2)
	assert.Equal(t, "05/08", agg.Months[0].Parlays[0].Date)

	// bank carries across months
	assert.Equal(t, 500.0, agg.Months[0].Totals.OpeningBank)
	assert.Equal(t, 510.0, agg.Months[0].Totals.Bank)
	assert.Equal(t, 510.0, agg.Months[1].Totals.OpeningBank)
	assert.Equal(t, 520.0, agg.Months[1].Totals.Bank)

	assert.Equal(t, 520.0, agg.Totals.Bank)
	assert.Equal(t, 2, agg.Totals.ParlayWins)
	assert.Equal(t, 1, agg.Totals.ParlayLosses)

	require.Len(t, agg.Undated, 1)
	assert.Equal(t, "bad", agg.Undated[0].Date)
}

func TestBuildSeasonSnapshotCarriesBankIntoQuietMonth(t *testing.T) {
	parlays := []Parlay{
		parlay("05/08", "3.0", store.ResultWon, bank(540)),
		parlay("10/09", "2.0", store.ResultPending, nil),
	}

	agg := BuildSeason(parlays, Options{Season: season2025, Bank: BankConfig{Policy: BankSnapshot, StartingBank: 500}})
	require.Len(t, agg.Months, 2)
	assert.Equal(t, 540.0, agg.Months[0].Totals.Bank)
	assert.Equal(t, 540.0, agg.Months[1].Totals.Bank)
	assert.Equal(t, 540.0, agg.Totals.Bank)
}

func TestSeasonLookup(t *testing.T) {
	parlays := []Parlay{
		parlay("05/08", "3.0", store.ResultWon, nil),
		parlay("??", "2.0", store.ResultWon, nil),
	}
	agg := BuildSeason(parlays, Options{Season: season2025, Bank: BankConfig{Policy: BankSnapshot}})

	m, ok := agg.Month("2025-08")
	require.True(t, ok)
	assert.Len(t, m.Parlays, 1)

	_, ok = agg.Month("2025-09")
	assert.False(t, ok)

	p, ok := agg.Parlay("05/08|3.0")
	require.True(t, ok)
	assert.False(t, p.When.IsZero())

	_, ok = agg.Parlay("??|2.0")
	assert.True(t, ok)
}

func TestComputeDerivedState(t *testing.T) {
	records := []store.RawRecord{
		{"Date": "24/08", "Match": "A v B", "Pick": "A", "Pick Result": "won", "Odds": "1.5", "Parlay Odds": "3.0", "Parlay Result": "won", "Bank": "520"},
		{"Match": "C v D", "Pick": "C", "Pick Result": "won", "Odds": "2.0"},
		{"Date": "15/01", "Match": "E v F", "Pick": "E", "Pick Result": "lost", "Odds": "2.0", "Parlay Odds": "4.0", "Parlay Result": "lost", "Bank": "510"},
		{"Pick": "G", "Odds": "2.0"},
	}

	state := ComputeDerivedState(records, Options{Season: season2025, Bank: BankConfig{Policy: BankSnapshot}})
	assert.Equal(t, 4, state.Rows)
	assert.Equal(t, 1, state.Dropped)
	assert.Len(t, state.Legs, 3)
	require.Len(t, state.Parlays, 2)
	assert.Len(t, state.Parlays[0].Legs, 2)
	require.Len(t, state.Season.Months, 2)
	assert.Equal(t, 510.0, state.Season.Totals.Bank)
	assert.Equal(t, 1, state.Season.Totals.ParlayWins)
	assert.Equal(t, 1, state.Season.Totals.ParlayLosses)
}

func TestComputeDerivedStateIgnoresNonFiniteNumbers(t *testing.T) {
	records := []store.RawRecord{
		{"Date": "24/08", "Match": "A v B", "Pick": "A", "Pick Result": "won", "Odds": "NaN", "Parlay Odds": "3.0", "Parlay Result": "won"},
		{"Date": "25/08", "Match": "C v D", "Pick": "C", "Pick Result": "won", "Odds": "inf", "Parlay Odds": "2.0", "Parlay Result": "won"},
		{"Date": "26/08", "Match": "E v F", "Pick": "E", "Pick Result": "won", "Odds": "2.0", "Parlay Odds": "2.0", "Parlay Result": "won", "Bank": "Infinity"},
	}

	opts := Options{Season: season2025, Bank: BankConfig{Policy: BankDelta, StartingBank: 500, DefaultStake: 10}}
	state := ComputeDerivedState(records, opts)
	assert.Equal(t, 2, state.Dropped)
	require.Len(t, state.Legs, 1)
	assert.Nil(t, state.Legs[0].Bank)

	totals := state.Season.Totals
	assert.False(t, math.IsNaN(totals.Bank) || math.IsInf(totals.Bank, 0))
	assert.False(t, math.IsNaN(totals.AvgOdds))
	assert.Equal(t, 510.0, totals.Bank)
}
