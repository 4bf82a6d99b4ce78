package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetapp/duet-bot/internal/scheduler"
)

func TestScheduleAfterFires(t *testing.T) {
	timer := scheduler.NewSimpleTimer()
	defer timer.Stop()

	fired := make(chan struct{})
	_, err := timer.ScheduleAfter(10*time.Millisecond, func() { close(fired) })
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled function did not fire")
	}

	// fired tasks clean themselves up
	assert.Eventually(t, func() bool { return timer.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCancelPreventsFiring(t *testing.T) {
	timer := scheduler.NewSimpleTimer()
	defer timer.Stop()

	var fired atomic.Bool
	id, err := timer.ScheduleAfter(50*time.Millisecond, func() { fired.Store(true) })
	require.NoError(t, err)

	require.NoError(t, timer.Cancel(id))
	assert.Equal(t, 0, timer.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())

	// cancelling again is a no-op
	assert.NoError(t, timer.Cancel(id))
}

func TestStopDropsAllPending(t *testing.T) {
	timer := scheduler.NewSimpleTimer()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		_, err := timer.ScheduleAfter(50*time.Millisecond, func() { fired.Add(1) })
		require.NoError(t, err)
	}
	require.Equal(t, 5, timer.Pending())

	timer.Stop()
	assert.Equal(t, 0, timer.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
