// Package sched drives the repeating scheduled sends: first send one
// minute after startup, then one send per interval, skipping any tick
// that falls outside the configured working hours.
//
// The interval can be changed while the scheduler runs (the bot's
// «⚙️ Интервал» keyboard does exactly that). The new value is read when
// the next timer is armed, so a change takes effect for the very next
// send rather than whenever the old schedule happens to drain.
package sched

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInitialDelay is how long after startup the first send fires.
const DefaultInitialDelay = time.Minute

// SendFunc performs one scheduled send. Errors are handled (and
// logged) by the callback itself; the scheduler keeps ticking no
// matter what a single send did.
type SendFunc func(ctx context.Context)

// Options configure a Scheduler.
type Options struct {
	// Interval between sends. Must be positive.
	Interval time.Duration

	// StartHour/EndHour bound the sending window: a tick is acted on
	// only when StartHour <= local hour < EndHour.
	StartHour int
	EndHour   int

	// InitialDelay before the first send. Zero means DefaultInitialDelay.
	InitialDelay time.Duration

	// Send is called on every in-window tick.
	Send SendFunc

	// Logger receives skip/fire logging. Required.
	Logger *log.Logger

	// Now overrides the clock, for tests. Zero value means time.Now.
	Now func() time.Time
}

// Scheduler fires the send callback on the configured cadence.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration

	startHour    int
	endHour      int
	initialDelay time.Duration
	send         SendFunc
	logger       *log.Logger
	now          func() time.Time
}

// New creates a Scheduler from the given options.
func New(opts Options) *Scheduler {
	if opts.InitialDelay == 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		interval:     opts.Interval,
		startHour:    opts.StartHour,
		endHour:      opts.EndHour,
		initialDelay: opts.InitialDelay,
		send:         opts.Send,
		logger:       opts.Logger,
		now:          opts.Now,
	}
}

// Interval returns the current send interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the send interval. Non-positive values are
// ignored. The change applies when the next timer is armed — i.e. the
// send after the one currently pending.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	s.logger.Info("send interval changed", "interval", d)
}

// InWindow reports whether t falls inside the sending window.
func (s *Scheduler) InWindow(t time.Time) bool {
	hour := t.Hour()
	return hour >= s.startHour && hour < s.endHour
}

// Run ticks until the context is cancelled. It always returns the
// context's error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"interval", s.Interval(),
		"window", windowString(s.startHour, s.endHour),
		"first_send_in", s.initialDelay)

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()

		case <-timer.C:
			if now := s.now(); s.InWindow(now) {
				s.send(ctx)
			} else {
				s.logger.Info("outside working hours, skipping send",
					"hour", now.Hour(),
					"window", windowString(s.startHour, s.endHour))
			}
			// Re-read the interval so runtime changes take effect on
			// the next send.
			timer.Reset(s.Interval())
		}
	}
}

// windowString formats the sending window for logs ("9:00 - 21:00").
func windowString(start, end int) string {
	return time.Date(0, 1, 1, start, 0, 0, 0, time.UTC).Format("15:04") +
		" - " +
		time.Date(0, 1, 1, end, 0, 0, 0, time.UTC).Format("15:04")
}
