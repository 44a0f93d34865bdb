// Package sweeper periodically clears sessions that have sat idle in the
// plan picker or a payment state far beyond the window, so abandoned flows
// don't accumulate in memory. Locale is preserved by the reset.
package sweeper

import (
	"time"

	"github.com/robfig/cron/v3"

	"premiumbot/core/logger"
	"premiumbot/internal/session"
	"log/slog"
)

// Options controls sweep cadence and the idle threshold.
type Options struct {
	Interval time.Duration
	MaxIdle  time.Duration
}

// Sweeper owns the cron schedule.
type Sweeper struct {
	store *session.Store
	opts  Options
	cron  *cron.Cron
}

// New builds a Sweeper over the given store.
func New(store *session.Store, opts Options) *Sweeper {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = time.Hour
	}
	return &Sweeper{store: store, opts: opts}
}

// Start begins periodic sweeping.
func (sw *Sweeper) Start() {
	sw.cron = cron.New()
	_, err := sw.cron.AddFunc("@every "+sw.opts.Interval.String(), sw.Sweep)
	if err != nil {
		logger.L.LogAttrs(logger.Background(), slog.LevelError, "sweep.schedule.failed",
			slog.String("err", err.Error()),
		)
		return
	}
	sw.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (sw *Sweeper) Stop() {
	if sw.cron != nil {
		<-sw.cron.Stop().Done()
	}
}

// Sweep resets every non-idle session older than MaxIdle. Sessions pending
// approval are left alone: the operator still owes them a decision.
func (sw *Sweeper) Sweep() {
	cutoff := time.Now().Add(-sw.opts.MaxIdle)
	var stale []int64
	sw.store.Range(func(s session.Session) bool {
		if s.State == session.StateIdle || s.State == session.StatePendingApproval {
			return true
		}
		if s.EnteredAt.Before(cutoff) {
			stale = append(stale, s.UserID)
		}
		return true
	})

	for _, id := range stale {
		sw.store.Reset(id)
	}

	if len(stale) > 0 {
		logger.L.LogAttrs(logger.Background(), slog.LevelInfo, "sweep.done",
			slog.Int("swept", len(stale)),
		)
	}
}
