package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/parlaydesk/tracker/internal/metrics"
	"github.com/parlaydesk/tracker/internal/view"
)

// StatsDashboardView displays season-wide totals.
type StatsDashboardView struct {
	textView *tview.TextView
}

// NewStatsDashboardView creates a new stats dashboard view.
func NewStatsDashboardView() *StatsDashboardView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Season ").SetBorder(true)

	return &StatsDashboardView{
		textView: textView,
	}
}

// Widget returns the tview primitive.
func (v *StatsDashboardView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the stats display.
func (v *StatsDashboardView) Update(snapshot metrics.Snapshot) {
	v.textView.Clear()

	if !snapshot.HasData {
		fmt.Fprint(v.textView, "[gray]Waiting for the first refresh...[-]")
		return
	}

	m := snapshot.Model
	t := m.Totals
	v.textView.SetTitle(fmt.Sprintf(" Season %s ", m.Season))

	text := fmt.Sprintf(`[yellow]Bank[-] (%s)
Opening: %s
Current: [%s]%s[-]
Profit:  [%s]%s[-]

[yellow]Parlays[-]
Total:   %d
Won:     [green]%d[-]
Lost:    [red]%d[-]
Pending: %d
Hit rate: %s

[yellow]Picks[-]
Won/Lost: %d/%d
Avg odds: %.2f
`,
		m.BankPolicy,
		view.Money(t.OpeningBank),
		moneyColor(t.Bank-t.OpeningBank), view.Money(t.Bank),
		moneyColor(t.Profit), view.SignedMoney(t.Profit),
		t.Parlays,
		t.Wins,
		t.Losses,
		t.Pending,
		view.Percent(t.HitRate),
		t.PickWins, t.PickLosses,
		t.AvgOdds,
	)

	if m.Dropped > 0 || len(m.Undated) > 0 {
		text += fmt.Sprintf("\n[gray]%d rows skipped, %d undated parlays[-]\n", m.Dropped, len(m.Undated))
	}

	fmt.Fprint(v.textView, text)
}

// moneyColor picks a color tag for a signed amount.
func moneyColor(v float64) string {
	switch {
	case v > 0:
		return "green"
	case v < 0:
		return "red"
	default:
		return "white"
	}
}

// resultColor picks a color tag for a result string.
func resultColor(result string) string {
	switch result {
	case "won":
		return "green"
	case "lost":
		return "red"
	default:
		return "yellow"
	}
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%.0fh ago", elapsed.Hours())
	}
	return fmt.Sprintf("%.0fd ago", elapsed.Hours()/24)
}
