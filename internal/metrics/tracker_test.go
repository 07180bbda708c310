package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlaydesk/tracker/internal/view"
)

func TestTrackerInitialState(t *testing.T) {
	tr := NewTracker("sheet")

	snap := tr.Snapshot()
	assert.Equal(t, StatusNever, snap.Status)
	assert.Equal(t, "sheet", snap.Source)
	assert.False(t, snap.HasData)

	_, ok := tr.Model()
	assert.False(t, ok)
}

func TestTrackerFailureKeepsPreviousModel(t *testing.T) {
	tr := NewTracker("sheet")
	t0 := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	tr.RecordSuccess(view.Model{Season: "2025/2026", Rows: 12}, t0)
	tr.RecordFailure(errors.New("unexpected status: 500"), t0.Add(time.Minute))

	snap := tr.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "unexpected status: 500", snap.LastError)
	assert.Equal(t, t0, snap.LastSuccess)
	assert.Equal(t, t0.Add(time.Minute), snap.LastAttempt)
	assert.Equal(t, int64(1), snap.Refreshes)
	assert.Equal(t, int64(1), snap.Failures)
	assert.True(t, snap.HasData)
	assert.Equal(t, 12, snap.Model.Rows)

	tr.RecordSuccess(view.Model{Season: "2025/2026", Rows: 13}, t0.Add(2*time.Minute))
	snap = tr.Snapshot()
	assert.Equal(t, StatusOK, snap.Status)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, 13, snap.Model.Rows)
}

func TestTrackerNotifiesSubscribers(t *testing.T) {
	tr := NewTracker("local")

	var mu sync.Mutex
	var got []int
	tr.Subscribe(func(m view.Model) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, m.Rows)
	})

	tr.RecordFailure(errors.New("boom"), time.Now())
	tr.RecordSuccess(view.Model{Rows: 3}, time.Now())
	tr.RecordSuccess(view.Model{Rows: 4}, time.Now())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, []int{3, 4}, got)
}
