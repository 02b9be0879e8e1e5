package playback

import (
	"sync"
	"time"

	"github.com/proofdeck/proofdeck/pkg/debug"
)

// DefaultDwell is the fallback advance interval used when no playback source
// is available or the clip has already finished.
const DefaultDwell = 2 * time.Second

// Source is the current playback source handle: whatever is showing the
// active section's clip. The scheduler prefers the ended signal and falls
// back to a dwell timer when none is forthcoming.
type Source interface {
	// Ended reports whether the clip has already finished.
	Ended() bool
	// Playing reports whether the clip is currently playing.
	Playing() bool
	// Play asks the clip to start. Failures are the caller's to ignore.
	Play() error
	// OnEnded registers fn to run once when the clip finishes and returns a
	// cancel func. Cancel must be safe to call after the signal fired.
	OnEnded(fn func()) (cancel func())
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDwell sets the fallback advance interval.
func WithDwell(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.dwell = d
	}
}

// withAfterFunc replaces the timer constructor. Test seam.
func withAfterFunc(fn func(time.Duration, func()) *time.Timer) SchedulerOption {
	return func(s *Scheduler) {
		s.afterFunc = fn
	}
}

// Scheduler advances playback step-by-step while running. The view is
// rebuilt on every state change, so the owner must call Bind again after
// each render with the then-current source; every bind tears down the
// previous timer or ended-subscription first, keeping exactly one pending
// advance source alive at any instant.
type Scheduler struct {
	st    *State
	dwell time.Duration

	afterFunc func(time.Duration, func()) *time.Timer

	mu          sync.Mutex
	running     bool
	timer       *time.Timer
	cancelEnded func()
	gen         uint64
}

// NewScheduler creates an idle scheduler driving the given state.
func NewScheduler(st *State, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		st:        st,
		dwell:     DefaultDwell,
		afterFunc: time.AfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether autoplay is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start transitions Idle -> Running. It requires at least one playable step;
// if playback has not started yet it starts at index 0. Starting at the last
// index is allowed and stops on the first advance attempt without moving.
// Returns false when there is nothing to play.
func (s *Scheduler) Start() bool {
	if s.st.Count() == 0 {
		return false
	}
	if !s.st.Started() {
		s.st.Start(0)
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.st.setAutoplay(true)
	return true
}

// Stop transitions Running -> Idle, tearing down any pending timer or ended
// subscription. Safe to call when already idle; manual navigation calls it
// unconditionally.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.running = false
	s.clearPendingLocked()
	s.mu.Unlock()
	s.st.setAutoplay(false)
}

// Bind attaches the scheduler to the source currently displaying the active
// clip. Must be called after every render while running: the old binding
// always targets an element instance that is about to be replaced. A nil
// source (no clip available) arms the dwell-timer fallback.
func (s *Scheduler) Bind(src Source) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.clearPendingLocked()
	gen := s.gen

	if src == nil || src.Ended() {
		s.timer = s.afterFunc(s.dwell, func() { s.advance(gen) })
		s.mu.Unlock()
		return
	}

	s.cancelEnded = src.OnEnded(func() { s.advance(gen) })
	s.mu.Unlock()

	if src.Playing() {
		return
	}
	if err := src.Play(); err != nil {
		debug.Log("scheduler: play failed: %v", err)
		// A clip that never starts never ends. Swap the dead subscription
		// for the dwell timer so autoplay still advances.
		s.mu.Lock()
		if s.running && gen == s.gen {
			if s.cancelEnded != nil {
				s.cancelEnded()
				s.cancelEnded = nil
			}
			s.timer = s.afterFunc(s.dwell, func() { s.advance(gen) })
		}
		s.mu.Unlock()
	}
}

// advance is the single advance path, reached from a fired timer or an ended
// signal. Stale generations are no-ops: a timer that fires after its binding
// was torn down must not cause a duplicate advance.
func (s *Scheduler) advance(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.clearPendingLocked()
	last := s.st.AtLast()
	if last {
		s.running = false
	}
	s.mu.Unlock()

	if last {
		s.st.setAutoplay(false)
		return
	}
	s.st.StepBy(1)
}

// clearPendingLocked cancels the outstanding advance source, if any, and
// bumps the generation so late callbacks from the old binding are ignored.
func (s *Scheduler) clearPendingLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelEnded != nil {
		s.cancelEnded()
		s.cancelEnded = nil
	}
}
