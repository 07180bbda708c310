package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/parlaydesk/tracker/internal/metrics"
)

// refreshEvent is one completed refresh attempt.
type refreshEvent struct {
	at  time.Time
	ok  bool
	err string
}

// RefreshLogView shows the refresh status and the most recent attempts.
type RefreshLogView struct {
	list     *tview.List
	events   []refreshEvent
	maxItems int

	// counters seen on the previous snapshot
	refreshes int64
	failures  int64
}

// NewRefreshLogView creates a new refresh log view.
func NewRefreshLogView() *RefreshLogView {
	list := tview.NewList().
		ShowSecondaryText(true)

	list.SetTitle(" Refresh ").SetBorder(true)

	return &RefreshLogView{
		list:     list,
		events:   make([]refreshEvent, 0, 20),
		maxItems: 20,
	}
}

// Widget returns the tview primitive.
func (v *RefreshLogView) Widget() tview.Primitive {
	return v.list
}

// Update records any attempts completed since the last snapshot and redraws.
func (v *RefreshLogView) Update(snapshot metrics.Snapshot) {
	if snapshot.Refreshes > v.refreshes {
		v.add(refreshEvent{at: snapshot.LastSuccess, ok: true})
	}
	if snapshot.Failures > v.failures {
		v.add(refreshEvent{at: snapshot.LastAttempt, err: snapshot.LastError})
	}
	v.refreshes = snapshot.Refreshes
	v.failures = snapshot.Failures

	v.rebuildList(snapshot)
}

func (v *RefreshLogView) add(ev refreshEvent) {
	v.events = append([]refreshEvent{ev}, v.events...)
	if len(v.events) > v.maxItems {
		v.events = v.events[:v.maxItems]
	}
}

func (v *RefreshLogView) rebuildList(snapshot metrics.Snapshot) {
	v.list.Clear()

	statusColor := "yellow"
	switch snapshot.Status {
	case metrics.StatusOK:
		statusColor = "green"
	case metrics.StatusError:
		statusColor = "red"
	}

	v.list.AddItem(
		fmt.Sprintf("[%s]%s[-] from %s", statusColor, snapshot.Status, snapshot.Source),
		fmt.Sprintf("Last success: %s | Uptime: %s", formatTimeAgo(snapshot.LastSuccess), formatDuration(snapshot.Uptime)),
		0, nil,
	)

	for _, ev := range v.events {
		mainText, secondary := formatRefreshEvent(ev)
		v.list.AddItem(mainText, secondary, 0, nil)
	}

	v.list.SetTitle(fmt.Sprintf(" Refresh (%d ok, %d failed) ", snapshot.Refreshes, snapshot.Failures))
}

func formatRefreshEvent(ev refreshEvent) (string, string) {
	ts := ev.at.Format("15:04:05")
	if ev.ok {
		return fmt.Sprintf("%s [green]updated[-]", ts), ""
	}
	return fmt.Sprintf("%s [red]failed[-]", ts), truncate(ev.err, 60)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
