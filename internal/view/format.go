package view

import (
	"fmt"
	"strconv"
)

// formatOdds renders odds with two decimals.
func formatOdds(o float64) string {
	return strconv.FormatFloat(o, 'f', 2, 64)
}

// Money renders a bank or profit amount.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// SignedMoney renders a profit with an explicit sign.
func SignedMoney(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// Percent renders a ratio as a percentage.
func Percent(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}
