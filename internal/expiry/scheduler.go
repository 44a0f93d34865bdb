// Package expiry runs the delayed payment-window checks. One timer exists
// per user; scheduling again replaces the previous timer. The scheduler only
// delivers (userID, version) pairs — whether the firing is still relevant is
// decided by the callback against the live session.
package expiry

import (
	"sync"
	"time"

	"premiumbot/core/logger"
	"log/slog"
)

// FireFunc receives the user and the session version captured at schedule
// time. Implementations must treat a stale version as a no-op.
type FireFunc func(userID int64, version string)

type entry struct {
	version string
	timer   *time.Timer
}

// Scheduler owns the per-user one-shot timers.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[int64]*entry
	fire    FireFunc
	closed  bool
	pending sync.WaitGroup
}

// NewScheduler builds a Scheduler delivering firings to fire.
func NewScheduler(fire FireFunc) *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*entry),
		fire:   fire,
	}
}

// Schedule arms (or re-arms) the user's window timer. Any previously armed
// timer for the same user is stopped; its version is dead either way because
// the caller regenerated it.
func (s *Scheduler) Schedule(userID int64, version string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if prev, ok := s.timers[userID]; ok {
		prev.timer.Stop()
	}

	e := &entry{version: version}
	e.timer = time.AfterFunc(d, func() {
		s.fired(userID, version)
	})
	s.timers[userID] = e

	logger.L.LogAttrs(logger.Background(), slog.LevelDebug, "expiry.scheduled",
		slog.Int64("user_id", userID),
		slog.String("version", version),
		slog.Int64("window_s", int64(d/time.Second)),
	)
}

// Cancel disarms the user's timer if one is armed. A timer that already
// fired is harmless: the version check in the callback absorbs it.
func (s *Scheduler) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.timers[userID]; ok {
		e.timer.Stop()
		delete(s.timers, userID)
	}
}

func (s *Scheduler) fired(userID int64, version string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if e, ok := s.timers[userID]; ok && e.version == version {
		delete(s.timers, userID)
	}
	s.pending.Add(1)
	s.mu.Unlock()

	defer s.pending.Done()
	if s.fire != nil {
		s.fire(userID, version)
	}
}

// Close stops all timers and waits for in-flight firings to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.pending.Wait()
}

// Armed returns the number of armed timers (for diagnostics).
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
