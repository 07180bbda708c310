// Package refresh runs one fetch -> derive -> swap cycle.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/parlaydesk/tracker/internal/ledger"
	"github.com/parlaydesk/tracker/internal/metrics"
	"github.com/parlaydesk/tracker/internal/store"
	"github.com/parlaydesk/tracker/internal/view"
)

// DefaultTimeout bounds one refresh cycle.
const DefaultTimeout = 30 * time.Second

// Source provides the raw bet rows.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]store.RawRecord, error)
}

// Refresher recomputes the season from its source and hands the result to
// the tracker. Cycles never overlap.
type Refresher struct {
	ctx     context.Context
	source  Source
	opts    ledger.Options
	tracker *metrics.Tracker
	timeout time.Duration
	now     func() time.Time

	mu sync.Mutex
}

// New creates a Refresher. ctx bounds scheduled runs started through Run.
func New(ctx context.Context, source Source, opts ledger.Options, tracker *metrics.Tracker, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Refresher{
		ctx:     ctx,
		source:  source,
		opts:    opts,
		tracker: tracker,
		timeout: timeout,
		now:     time.Now,
	}
}

// Name identifies the job in scheduler logs.
func (r *Refresher) Name() string {
	return "refresh_" + r.source.Name()
}

// Run performs one cycle with the refresher's own context.
func (r *Refresher) Run() error {
	return r.RunOnce(r.ctx)
}

// RunOnce fetches, derives and swaps in a new season. On a fetch failure the
// previous season stays in place and the tracker is marked as failed.
func (r *Refresher) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := r.now()
	records, err := r.source.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", r.source.Name(), err)
		r.tracker.RecordFailure(err, start)
		slog.Warn("refresh_failed", "source", r.source.Name(), "error", err)
		return err
	}

	state := ledger.ComputeDerivedState(records, r.opts)
	model := view.Build(state, r.opts.Bank)
	r.tracker.RecordSuccess(model, r.now())

	slog.Info("refresh_complete",
		"source", r.source.Name(),
		"rows", state.Rows,
		"legs", len(state.Legs),
		"dropped", state.Dropped,
		"parlays", len(state.Parlays),
		"months", len(state.Season.Months),
		"undated", len(state.Season.Undated),
		"bank", state.Season.Totals.Bank,
		"duration", time.Since(start),
	)
	return nil
}
