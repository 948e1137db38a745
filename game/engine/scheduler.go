package engine

import (
	"sync"
	"time"
)

// Scheduler defers work by a delay. The engine uses it for the staged enemy
// turn and for timed echo expiry; injecting one lets tests advance game time
// deterministically instead of sleeping.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// TimerScheduler runs callbacks on real timers.
type TimerScheduler struct{}

// Schedule fires fn after delay on a timer goroutine.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// ManualScheduler queues callbacks and runs them only when told to, in
// scheduling order. Intended for tests.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewManualScheduler returns an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule queues fn, ignoring the delay.
func (s *ManualScheduler) Schedule(_ time.Duration, fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Fire runs the oldest queued callback. It reports whether one ran.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	fn := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	fn()
	return true
}

// FireAll drains the queue, including callbacks scheduled by earlier
// callbacks, and returns how many ran.
func (s *ManualScheduler) FireAll() int {
	n := 0
	for s.Fire() {
		n++
	}
	return n
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
