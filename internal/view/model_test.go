package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlaydesk/tracker/internal/ledger"
	"github.com/parlaydesk/tracker/internal/store"
)

func sampleState() (ledger.State, ledger.BankConfig) {
	records := []store.RawRecord{
		{"Date": "03/01", "Match": "E v F", "Pick": "E", "Pick Result": "lost", "Odds": "1.5", "Parlay Odds": ""},
		{"Date": "05/08", "Match": "A v B", "Pick": "A", "Pick Result": "won", "Odds": "1.5", "Parlay Odds": "3.0", "Parlay Result": "won"},
		{"Match": "C v D", "Pick": "C", "Pick Result": "won", "Odds": "2.0"},
		{"Date": "32/13", "Match": "G v H", "Pick": "G", "Odds": "2.0", "Parlay Odds": "2.0"},
	}
	bank := ledger.BankConfig{Policy: ledger.BankDelta, StartingBank: 500, DefaultStake: 10}
	opts := ledger.Options{
		Season: ledger.Season{StartYear: 2025, StartMonth: time.August},
		Key:    ledger.KeyDateOdds,
		Bank:   bank,
	}
	return ledger.ComputeDerivedState(records, opts), bank
}

func TestBuild(t *testing.T) {
	state, bank := sampleState()
	m := Build(state, bank)

	assert.Equal(t, "2025/2026", m.Season)
	assert.Equal(t, "delta", m.BankPolicy)
	assert.Equal(t, 4, m.Rows)
	assert.Equal(t, 1, m.Totals.Wins)
	assert.Equal(t, 1, m.Totals.Losses)
	assert.Equal(t, 0.5, m.Totals.HitRate)
	assert.Equal(t, 510.0, m.Totals.Bank)

	require.Len(t, m.Months, 2)
	assert.Equal(t, "August 2025", m.Months[0].Label)
	assert.Equal(t, "January 2026", m.Months[1].Label)

	aug := m.Months[0].Parlays[0]
	assert.Equal(t, "won", aug.Result)
	assert.Equal(t, 20.0, aug.Profit)
	assert.Equal(t, 2, aug.LegCount)
	require.Len(t, aug.Legs, 2)
	assert.Equal(t, "C v D", aug.Legs[1].Match)

	jan := m.Months[1].Parlays[0]
	assert.Equal(t, "1.50", jan.Odds)
	assert.Equal(t, "lost", jan.Result)

	require.Len(t, m.Undated, 1)
	assert.Equal(t, "pending", m.Undated[0].Result)
}

func TestSummaryStripsLegsWithoutTouchingModel(t *testing.T) {
	state, bank := sampleState()
	m := Build(state, bank)

	s := m.Summary()
	for _, month := range s.Months {
		for _, p := range month.Parlays {
			assert.Nil(t, p.Legs)
			assert.NotZero(t, p.LegCount)
		}
	}
	assert.Nil(t, s.Undated[0].Legs)

	assert.Len(t, m.Months[0].Parlays[0].Legs, 2)
}

func TestModelLookup(t *testing.T) {
	state, bank := sampleState()
	m := Build(state, bank)

	month, ok := m.Month("2026-01")
	require.True(t, ok)
	assert.Len(t, month.Parlays, 1)

	p, ok := m.Parlay("05/08|3.0")
	require.True(t, ok)
	assert.Len(t, p.Legs, 2)

	_, ok = m.Parlay("32/13|2.0")
	assert.True(t, ok)

	_, ok = m.Parlay("missing")
	assert.False(t, ok)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "510.00", Money(510))
	assert.Equal(t, "-10.00", SignedMoney(-10))
	assert.Equal(t, "+20.50", SignedMoney(20.5))
	assert.Equal(t, "62.5%", Percent(0.625))
}
