// Package metrics holds the latest derived season and the health of the
// refresh cycle.
package metrics

import (
	"sync"
	"time"

	"github.com/parlaydesk/tracker/internal/view"
)

// Status is the outcome of the most recent refresh attempt.
type Status string

const (
	StatusNever Status = "never"
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Snapshot is a point-in-time view of the tracker.
type Snapshot struct {
	Status      Status
	Source      string
	LastAttempt time.Time
	LastSuccess time.Time
	LastError   string
	Refreshes   int64
	Failures    int64
	Uptime      time.Duration

	// HasData is false until the first successful refresh
	HasData bool
	Model   view.Model
}

// Tracker provides thread-safe access to the current season model.
// A successful refresh replaces the model wholesale; a failed one keeps the
// previous model and only marks the status.
type Tracker struct {
	mu          sync.RWMutex
	status      Status
	source      string
	lastAttempt time.Time
	lastSuccess time.Time
	lastError   string
	refreshes   int64
	failures    int64
	startTime   time.Time
	hasData     bool
	model       view.Model
	listeners   []func(view.Model)
}

// NewTracker creates a new Tracker.
func NewTracker(source string) *Tracker {
	return &Tracker{
		status:    StatusNever,
		source:    source,
		startTime: time.Now(),
	}
}

// Subscribe registers fn to be called with every newly swapped-in model.
func (t *Tracker) Subscribe(fn func(view.Model)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// RecordSuccess swaps in a freshly computed model.
func (t *Tracker) RecordSuccess(model view.Model, at time.Time) {
	t.mu.Lock()
	t.status = StatusOK
	t.lastAttempt = at
	t.lastSuccess = at
	t.lastError = ""
	t.refreshes++
	t.hasData = true
	t.model = model
	listeners := append([]func(view.Model){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(model)
	}
}

// RecordFailure marks the last refresh as failed, keeping the previous model.
func (t *Tracker) RecordFailure(err error, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = StatusError
	t.lastAttempt = at
	t.lastError = err.Error()
	t.failures++
}

// Model returns the current model and whether one has been computed yet.
func (t *Tracker) Model() (view.Model, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.model, t.hasData
}

// Snapshot returns a point-in-time snapshot. The model is shared, not
// copied: models are never mutated after RecordSuccess.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Snapshot{
		Status:      t.status,
		Source:      t.source,
		LastAttempt: t.lastAttempt,
		LastSuccess: t.lastSuccess,
		LastError:   t.lastError,
		Refreshes:   t.refreshes,
		Failures:    t.failures,
		Uptime:      time.Since(t.startTime),
		HasData:     t.hasData,
		Model:       t.model,
	}
}
