// Package scheduler provides the delayed-task runner used for paced
// follow-up sends (the prompt that trails a carousel, the "see another"
// nudge after an acknowledgement).
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler schedules functions to run after a delay. Pending tasks can
// be cancelled individually or dropped wholesale at shutdown.
type Scheduler interface {
	ScheduleAfter(delay time.Duration, fn func()) (string, error)
	Cancel(id string) error
	Stop()
}

type timerEntry struct {
	timer     *time.Timer
	expiresAt time.Time
}

// SimpleTimer implements Scheduler on top of time.AfterFunc.
type SimpleTimer struct {
	timers map[string]*timerEntry
	mu     sync.Mutex
}

// NewSimpleTimer creates a new SimpleTimer.
func NewSimpleTimer() *SimpleTimer {
	return &SimpleTimer{
		timers: make(map[string]*timerEntry),
	}
}

// ScheduleAfter schedules fn to run after delay and returns the task id.
func (t *SimpleTimer) ScheduleAfter(delay time.Duration, fn func()) (string, error) {
	id := uuid.NewString()

	timer := time.AfterFunc(delay, func() {
		fn()
		// clean up the fired timer's registry entry
		t.mu.Lock()
		delete(t.timers, id)
		t.mu.Unlock()
	})

	t.mu.Lock()
	t.timers[id] = &timerEntry{
		timer:     timer,
		expiresAt: time.Now().Add(delay),
	}
	t.mu.Unlock()

	slog.Debug("scheduled follow-up task", "id", id, "delay", delay)
	return id, nil
}

// Cancel stops a pending task. Cancelling an unknown or already-fired id
// is a no-op.
func (t *SimpleTimer) Cancel(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, exists := t.timers[id]; exists {
		entry.timer.Stop()
		delete(t.timers, id)
		slog.Debug("cancelled follow-up task", "id", id)
	}
	return nil
}

// Stop cancels every pending task. Follow-ups are pacing messages, not
// state transitions, so dropping them at shutdown loses nothing durable.
func (t *SimpleTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, entry := range t.timers {
		entry.timer.Stop()
	}
	slog.Info("dropped pending follow-up tasks", "count", len(t.timers))
	t.timers = make(map[string]*timerEntry)
}

// Pending reports how many tasks are currently scheduled.
func (t *SimpleTimer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
