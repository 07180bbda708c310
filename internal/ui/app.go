// Package ui provides terminal user interface components.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/parlaydesk/tracker/internal/metrics"
	"github.com/parlaydesk/tracker/internal/view"
)

// Refresher runs one refresh cycle on demand.
type Refresher interface {
	RunOnce(ctx context.Context) error
}

// App is the main TUI application.
type App struct {
	app    *tview.Application
	layout *tview.Flex

	// Views
	statsDashboard *StatsDashboardView
	monthOverview  *MonthOverviewView
	refreshLog     *RefreshLogView
	seasonTree     *SeasonTreeView
	parlayDetail   *ParlayDetailView

	tracker     *metrics.Tracker
	refresher   Refresher
	refreshRate time.Duration

	// refreshes count of the model currently in the tree
	shownRefreshes int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new TUI application.
func NewApp(tracker *metrics.Tracker, refresher Refresher, refreshRate time.Duration) *App {
	ctx, cancel := context.WithCancel(context.Background())

	if refreshRate <= 0 {
		refreshRate = 500 * time.Millisecond
	}

	app := &App{
		app:         tview.NewApplication(),
		tracker:     tracker,
		refresher:   refresher,
		refreshRate: refreshRate,
		ctx:         ctx,
		cancel:      cancel,
	}

	app.statsDashboard = NewStatsDashboardView()
	app.monthOverview = NewMonthOverviewView()
	app.refreshLog = NewRefreshLogView()
	app.parlayDetail = NewParlayDetailView()
	app.seasonTree = NewSeasonTreeView(app.parlayDetail.Show)

	app.setupLayout()
	app.setupKeyboard()

	return app
}

// setupLayout creates the 5-panel layout.
func (a *App) setupLayout() {
	// Top row: Season totals | Months | Refresh log
	topRow := tview.NewFlex().
		AddItem(a.statsDashboard.Widget(), 0, 1, false).
		AddItem(a.monthOverview.Widget(), 0, 2, false).
		AddItem(a.refreshLog.Widget(), 0, 1, false)

	// Bottom row: Parlay tree | Parlay detail
	bottomRow := tview.NewFlex().
		AddItem(a.seasonTree.Widget(), 0, 1, true).
		AddItem(a.parlayDetail.Widget(), 0, 1, false)

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 2, false).
		AddItem(bottomRow, 0, 3, true)

	a.app.SetRoot(a.layout, true).SetFocus(a.seasonTree.Widget())
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				a.Stop()
				return nil
			case 'r', 'R':
				go a.refreshNow()
				return nil
			}
		}
		return event
	})
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	a.parlayDetail.Show(view.Parlay{}, false)
	go a.updateLoop()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// Done is closed once the application has been stopped.
func (a *App) Done() <-chan struct{} {
	return a.ctx.Done()
}

// updateLoop periodically refreshes views from the tracker.
func (a *App) updateLoop() {
	ticker := time.NewTicker(a.refreshRate)
	defer ticker.Stop()

	a.redraw()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.redraw()
		}
	}
}

func (a *App) redraw() {
	snapshot := a.tracker.Snapshot()
	a.app.QueueUpdateDraw(func() {
		a.apply(snapshot)
	})
}

// apply updates every view. The tree is only rebuilt when a new model has
// been swapped in, so the cursor is not reset on every tick.
func (a *App) apply(snapshot metrics.Snapshot) {
	a.statsDashboard.Update(snapshot)
	a.monthOverview.Update(snapshot)
	a.refreshLog.Update(snapshot)

	if snapshot.HasData && snapshot.Refreshes != a.shownRefreshes {
		a.shownRefreshes = snapshot.Refreshes
		a.seasonTree.Update(snapshot.Model)
	}
}

// refreshNow runs a refresh cycle outside the schedule.
func (a *App) refreshNow() {
	if err := a.refresher.RunOnce(a.ctx); err != nil {
		slog.Debug("manual_refresh_failed", "error", err)
	}
	a.redraw()
}
