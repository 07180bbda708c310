// Package ledger rebuilds parlays from flat sheet rows and derives
// win/loss and bankroll statistics from them.
package ledger

import (
	"sort"
	"strings"

	"github.com/parlaydesk/tracker/internal/store"
)

// field is a recognised sheet column.
type field int

const (
	fieldDate field = iota
	fieldMatch
	fieldMatchResult
	fieldPick
	fieldPickResult
	fieldOdds
	fieldParlayOdds
	fieldParlayResult
	fieldBank
	fieldStake
	numFields
)

// fieldAliases maps squashed column names (lowercase, no spaces,
// underscores or dashes) to fields.
var fieldAliases = map[string]field{
	"date":             fieldDate,
	"day":              fieldDate,
	"match":            fieldMatch,
	"event":            fieldMatch,
	"game":             fieldMatch,
	"matchresult":      fieldMatchResult,
	"score":            fieldMatchResult,
	"pick":             fieldPick,
	"prediction":       fieldPick,
	"pickresult":       fieldPickResult,
	"predictionresult": fieldPickResult,
	"odds":             fieldOdds,
	"parlayodds":       fieldParlayOdds,
	"totalodds":        fieldParlayOdds,
	"parlayresult":     fieldParlayResult,
	"bank":             fieldBank,
	"bankroll":         fieldBank,
	"stake":            fieldStake,
}

// carriedFields are the columns a sheet merges across the legs of a parlay.
var carriedFields = []field{fieldDate, fieldParlayOdds, fieldParlayResult, fieldBank, fieldStake}

// parlayScoped fields belong to one parlay and must not leak into the next.
var parlayScoped = []field{fieldParlayResult, fieldBank, fieldStake}

// row holds the trimmed cell of every recognised field, "" when blank.
type row [numFields]string

// carry is the last non-empty value seen for each carried field.
// It is passed by value through the fold and never mutated in place.
type carry struct {
	values row
}

// NormalizeResult is the output of Normalize.
type NormalizeResult struct {
	// Legs are the complete rows in input order
	Legs []store.Leg

	// Dropped counts rows rejected for missing date, match, pick or odds
	Dropped int
}

// Normalize fills merged cells forward and converts the records into legs.
// Input order matters: a blank cell takes the value of the nearest earlier
// row that populated it. When a row starts a new parlay (it populates the
// date or the parlay odds) the parlay result, bank and stake carried from the
// previous parlay are cleared.
func Normalize(records []store.RawRecord) NormalizeResult {
	res := NormalizeResult{Legs: make([]store.Leg, 0, len(records))}

	var c carry
	for _, rec := range records {
		filled, next := fill(c, extract(rec))
		c = next

		leg, ok := toLeg(filled)
		if !ok {
			res.Dropped++
			continue
		}
		res.Legs = append(res.Legs, leg)
	}

	return res
}

// fill applies the carry to r and returns the filled row with the next carry.
func fill(c carry, r row) (row, carry) {
	next := c
	if r[fieldDate] != "" || r[fieldParlayOdds] != "" {
		for _, f := range parlayScoped {
			next.values[f] = ""
		}
	}

	filled := r
	for _, f := range carriedFields {
		if r[f] != "" {
			next.values[f] = r[f]
		} else {
			filled[f] = next.values[f]
		}
	}
	return filled, next
}

// extract picks the recognised fields out of a record. Columns are visited in
// sorted order so that duplicate aliases resolve deterministically.
func extract(rec store.RawRecord) row {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var r row
	for _, k := range keys {
		f, ok := lookupField(k)
		if !ok || r[f] != "" {
			continue
		}
		r[f] = strings.TrimSpace(rec[k])
	}
	return r
}

// KnownColumn reports whether header names a recognised sheet column.
func KnownColumn(header string) bool {
	_, ok := lookupField(header)
	return ok
}

// lookupField resolves a column header to a field.
func lookupField(header string) (field, bool) {
	squashed := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(header)))

	f, ok := fieldAliases[squashed]
	return f, ok
}

// toLeg converts a filled row, rejecting rows without date, match, pick or odds.
func toLeg(r row) (store.Leg, bool) {
	if r[fieldDate] == "" || r[fieldMatch] == "" || r[fieldPick] == "" {
		return store.Leg{}, false
	}
	odds, ok := store.ParseDecimal(r[fieldOdds])
	if !ok {
		return store.Leg{}, false
	}

	leg := store.Leg{
		Date:         r[fieldDate],
		Match:        r[fieldMatch],
		MatchResult:  r[fieldMatchResult],
		Pick:         r[fieldPick],
		PickResult:   store.ParseResult(r[fieldPickResult]),
		Odds:         odds,
		ParlayOdds:   r[fieldParlayOdds],
		ParlayResult: store.ParseResult(r[fieldParlayResult]),
	}
	if bank, ok := store.ParseDecimal(r[fieldBank]); ok {
		leg.Bank = &bank
	}
	if stake, ok := store.ParseDecimal(r[fieldStake]); ok {
		leg.Stake = &stake
	}
	return leg, true
}
