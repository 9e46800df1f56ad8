package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReaper struct {
	calls atomic.Int32
}

func (r *countingReaper) Reap() int {
	r.calls.Add(1)
	return 1
}

func TestSchedulerRunsReaper(t *testing.T) {
	reaper := &countingReaper{}
	s, err := NewScheduler(reaper, 10*time.Millisecond)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return reaper.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())

	stopped := reaper.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, reaper.calls.Load())
}

func TestSchedulerNotStarted(t *testing.T) {
	reaper := &countingReaper{}
	s, err := NewScheduler(reaper, 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, reaper.calls.Load())
	require.NoError(t, s.Stop())
}

func TestSchedulerRejectsBadInterval(t *testing.T) {
	_, err := NewScheduler(&countingReaper{}, 0)
	assert.Error(t, err)
}
