package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
	done chan struct{}
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	if j.runs.Add(1) == 1 && j.done != nil {
		close(j.done)
	}
	return j.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvery(t *testing.T) {
	assert.Equal(t, "@every 1m0s", Every(time.Minute))
	assert.Equal(t, "@every 30s", Every(30*time.Second))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(quietLogger())
	err := s.AddJob("every now and then", &countingJob{})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := New(quietLogger())
	job := &countingJob{err: errors.New("fetch failed")}

	err := s.RunNow(job)
	assert.EqualError(t, err, "fetch failed")
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(quietLogger())
	job := &countingJob{done: make(chan struct{})}

	require.NoError(t, s.AddJob(Every(time.Second), job))
	s.Start()
	defer s.Stop()

	select {
	case <-job.done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
