// Package store provides data models and bet persistence.
package store

import (
	"math"
	"strconv"
	"strings"
)

// RawRecord is one row of the bet sheet as column name -> cell value.
// Cells may be blank where the sheet merges them across the legs of a parlay.
type RawRecord map[string]string

// Result is the outcome of a pick or a parlay.
type Result string

// Recognised outcomes. Anything else is treated as pending.
const (
	ResultPending Result = ""
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
)

// ParseResult maps a free-text outcome to a Result, ignoring case and padding.
// Only "won" and "lost" are final.
func ParseResult(s string) Result {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "won":
		return ResultWon
	case "lost":
		return ResultLost
	default:
		return ResultPending
	}
}

// Resolved reports whether the outcome is final.
func (r Result) Resolved() bool {
	return r == ResultWon || r == ResultLost
}

// String returns the display form, "pending" for unresolved outcomes.
func (r Result) String() string {
	if r == ResultPending {
		return "pending"
	}
	return string(r)
}

// Leg is a single selection within a parlay, one row of the sheet after
// merged cells have been filled in.
type Leg struct {
	// Date is the day/month string as written in the sheet
	Date string `json:"date"`

	// Match identifies the event
	Match string `json:"match"`

	// MatchResult is the final score or outcome text of the event
	MatchResult string `json:"matchResult"`

	// Pick is the selection made on the event
	Pick string `json:"pick"`

	// PickResult is the outcome of this selection
	PickResult Result `json:"pickResult"`

	// Odds is the decimal price of this selection
	Odds float64 `json:"odds"`

	// ParlayOdds is the combined price of the enclosing parlay, kept verbatim
	// because it is part of the grouping key
	ParlayOdds string `json:"parlayOdds"`

	// ParlayResult is the outcome recorded for the whole parlay
	ParlayResult Result `json:"parlayResult"`

	// Bank is the bankroll recorded on this row, if any
	Bank *float64 `json:"bank,omitempty"`

	// Stake is the amount wagered on the parlay, if tracked
	Stake *float64 `json:"stake,omitempty"`
}

// ParlayOddsValue parses ParlayOdds, returning false when it is blank or not a number.
func (l Leg) ParlayOddsValue() (float64, bool) {
	return ParseDecimal(l.ParlayOdds)
}

// Bet is a persisted leg with a stable identifier.
type Bet struct {
	ID string `json:"id"`
	Leg
}

// Record converts the bet into the same shape a sheet row has, so stored bets
// run through the same pipeline as fetched ones.
func (b Bet) Record() RawRecord {
	rec := RawRecord{
		"Date":          b.Date,
		"Match":         b.Match,
		"Match Result":  b.MatchResult,
		"Pick":          b.Pick,
		"Pick Result":   string(b.PickResult),
		"Odds":          FormatDecimal(b.Odds),
		"Parlay Odds":   b.ParlayOdds,
		"Parlay Result": string(b.ParlayResult),
	}
	if b.Bank != nil {
		rec["Bank"] = FormatDecimal(*b.Bank)
	}
	if b.Stake != nil {
		rec["Stake"] = FormatDecimal(*b.Stake)
	}
	return rec
}

// ParseDecimal parses a finite decimal number, accepting a comma as the
// decimal separator and ignoring a leading currency sign. NaN, infinities and
// hex floats are rejected.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && !strings.ContainsRune(".+-eE", r) {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatDecimal renders f with the fewest digits that round-trip.
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
