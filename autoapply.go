package translay

import (
	"sync"
	"time"
)

const (
	defaultDebounce = 120 * time.Millisecond
	defaultCooldown = 80 * time.Millisecond
)

// Scheduler coalesces bursts of mutation/scroll/resize signals into single
// re-application passes. A suppression flag, set before any programmatic
// mutation and cleared after a short cooldown, keeps the engine's own DOM
// writes from feeding back into it.
type Scheduler struct {
	mu         sync.Mutex
	fn         func()
	debounce   time.Duration
	cooldown   time.Duration
	timer      *time.Timer
	resume     *time.Timer
	suppressed bool
	stopped    bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.debounce = d }
}

// WithCooldown overrides the suppression cooldown.
func WithCooldown(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.cooldown = d }
}

// NewScheduler creates a scheduler invoking fn after each settled burst of
// signals.
func NewScheduler(fn func(), opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		fn:       fn,
		debounce: defaultDebounce,
		cooldown: defaultCooldown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify records a host signal (DOM mutation, scroll, resize). Signals
// arriving while suppressed are dropped; others reset the trailing-edge
// debounce timer.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suppressed || s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// Schedule arms the debounce timer regardless of suppression. The engine
// uses it to deliver the follow-up pass promised to requests that arrived
// while a pass was in flight, which would otherwise land inside the
// post-pass cooldown and be dropped.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	fn := s.fn
	s.mu.Unlock()
	fn()
}

// Suppress must be called immediately before any programmatic mutation.
// Signals are ignored until Resume's cooldown elapses.
func (s *Scheduler) Suppress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressed = true
	if s.resume != nil {
		s.resume.Stop()
		s.resume = nil
	}
}

// Resume lifts suppression after the cooldown, letting late echoes of the
// engine's own writes settle first.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resume != nil {
		s.resume.Stop()
	}
	s.resume = time.AfterFunc(s.cooldown, func() {
		s.mu.Lock()
		s.suppressed = false
		s.resume = nil
		s.mu.Unlock()
	})
}

// Suppressed reports whether signals are currently ignored.
func (s *Scheduler) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// Stop cancels all timers. The scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.resume != nil {
		s.resume.Stop()
		s.resume = nil
	}
}
