package ledger

import (
	"strconv"
	"strings"
	"time"
)

// Season anchors year-less sheet dates. A season runs from StartMonth of
// StartYear through the month before StartMonth of the following year.
type Season struct {
	StartYear  int
	StartMonth time.Month
}

// Resolve converts "day/month" (or "day/month/year") into a calendar date.
// Months at or after StartMonth fall in StartYear, earlier months in the year
// after. It returns false for blank, malformed or impossible dates.
func (s Season) Resolve(date string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(date), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}

	year := s.StartYear
	if len(parts) == 3 {
		year, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || year < 0 {
			return time.Time{}, false
		}
		if year < 100 {
			year += 2000
		}
	} else if time.Month(month) < s.StartMonth {
		year++
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// Label is the display name of the season, e.g. "2025/2026".
func (s Season) Label() string {
	if s.StartMonth <= time.January {
		return strconv.Itoa(s.StartYear)
	}
	return strconv.Itoa(s.StartYear) + "/" + strconv.Itoa(s.StartYear+1)
}

// MonthKey is the bucket key of t, e.g. "2025-08".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
