// Package playback owns the walkthrough position for one proof: the current
// step index, the autoplay machine that advances it, and the pure projection
// from position to view values.
//
// A State is created when a proof is opened and discarded when the user
// leaves it; it is never shared between two proofs. Mutations can arrive
// from the UI loop, from the autoplay scheduler's timer goroutine, and from
// the router bridge, so State serializes them internally. Change
// notifications are delivered both to a registered callback (the router
// bridge) and over a channel sized for the Bubble Tea wait-for-message
// pattern.
package playback

import (
	"sync"

	"github.com/proofdeck/proofdeck/pkg/align"
)

// Change describes a step-position notification. Started is false after a
// restart, telling listeners to drop the persisted step marker entirely.
type Change struct {
	Index   int
	Started bool
}

// State is the mutable playback position for one proof.
type State struct {
	mu      sync.Mutex
	proofID string

	count   int // effective step count, set once alignment is known
	index   int
	started bool

	autoplay      bool
	activeClaimID string

	// pending is a router-requested index waiting for data to load. -1 when
	// none.
	pending int

	// claimTargets maps claim id -> target proof id, from the manifest.
	claimTargets map[string]string

	notify   func(Change)
	claimNav func(targetProofID string)
	changes  chan Change
}

// New creates the playback state for one proof. The effective step count is
// supplied later via SetCount once the alignment is computed.
func New(proofID string) *State {
	return &State{
		proofID: proofID,
		pending: -1,
		changes: make(chan Change, 8),
	}
}

// ProofID returns the identifier of the proof this state belongs to.
func (s *State) ProofID() string {
	return s.proofID
}

// SetNotify registers the step-changed callback. Intended for the router
// bridge; the view layer should consume Changes instead.
func (s *State) SetNotify(fn func(Change)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// SetClaimNav registers the callback fired when a claim resolves to a
// different proof and that proof must be loaded instead.
func (s *State) SetClaimNav(fn func(targetProofID string)) {
	s.mu.Lock()
	s.claimNav = fn
	s.mu.Unlock()
}

// Changes returns the channel step notifications are fanned out on. Sends
// never block; if the consumer lags, intermediate positions are dropped in
// favor of newer ones.
func (s *State) Changes() <-chan Change {
	return s.changes
}

// SetCount installs the effective step count once proof data is aligned.
// An already-started position past the new count is clamped silently; a
// count too small for autoplay forces autoplay off.
func (s *State) SetCount(count int) {
	s.mu.Lock()
	if count < 0 {
		count = 0
	}
	s.count = count
	if s.started && count > 0 {
		s.index = align.Clamp(s.index, count)
	}
	if count <= 1 {
		s.autoplay = false
	}
	s.mu.Unlock()
}

// Count returns the effective step count.
func (s *State) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Index returns the current step index. Meaningful only while Started.
func (s *State) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Started reports whether the walkthrough has left the intro screen.
func (s *State) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// AtLast reports whether the current index is the final playable step.
func (s *State) AtLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && s.count > 0 && s.index >= s.count-1
}

// Autoplay reports whether the autoplay scheduler is running.
func (s *State) Autoplay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoplay
}

func (s *State) setAutoplay(on bool) {
	s.mu.Lock()
	// Autoplay needs somewhere to advance to.
	s.autoplay = on && s.count > 1
	s.mu.Unlock()
}

// ActiveClaimID returns the active claim pointer, or "".
func (s *State) ActiveClaimID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeClaimID
}

// SetClaims installs the claim table for SelectClaim resolution and the
// initially active claim.
func (s *State) SetClaims(active string, targets map[string]string) {
	s.mu.Lock()
	s.activeClaimID = active
	s.claimTargets = targets
	s.mu.Unlock()
}

// Start begins the walkthrough at the given index (clamped). Calling Start
// again with the same effective index is a no-op.
func (s *State) Start(index int) {
	s.GoTo(index, false)
}

// GoTo moves to the given index, clamped to the playable range. If the
// walkthrough has not started it starts now. Moving to the index already
// shown is a no-op. When silent, the change notification is suppressed so
// router-driven updates do not echo back outward.
func (s *State) GoTo(index int, silent bool) {
	s.mu.Lock()
	clamped := align.Clamp(index, s.count)
	if s.started && clamped == s.index {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.index = clamped
	notify := s.notify
	s.mu.Unlock()

	if silent {
		return
	}
	s.emit(Change{Index: clamped, Started: true}, notify)
}

// StepBy moves relative to the current index.
func (s *State) StepBy(delta int) {
	s.mu.Lock()
	target := s.index + delta
	s.mu.Unlock()
	s.GoTo(target, false)
}

// Restart returns to the intro screen. The notification carries Started
// false so external state (the persisted route) drops its step marker.
func (s *State) Restart() {
	s.mu.Lock()
	s.started = false
	s.index = 0
	s.autoplay = false
	notify := s.notify
	s.mu.Unlock()

	s.emit(Change{Index: 0, Started: false}, notify)
}

// SetPending records a router-requested index to apply once data loads.
func (s *State) SetPending(index int) {
	s.mu.Lock()
	s.pending = index
	s.mu.Unlock()
}

// Pending returns the deferred index, or -1.
func (s *State) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// ApplyPending applies a deferred router index once the step count is known.
// The move is silent (the value originated externally). The pending slot is
// consumed only on application; before data loads it survives, so the value
// is still there when DataLoaded fires. A newer SetPending overwrites an
// older one, so the latest external navigation always wins.
func (s *State) ApplyPending() bool {
	s.mu.Lock()
	idx := s.pending
	if idx < 0 || s.count == 0 {
		s.mu.Unlock()
		return false
	}
	s.pending = -1
	s.mu.Unlock()

	s.GoTo(idx, true)
	return true
}

// SelectClaim activates a claim. A claim backed by the current proof only
// moves the claim pointer and preserves the step position. A claim backed by
// a different proof mutates nothing locally and instead fires the claim-nav
// callback so the owner loads that proof and restarts playback there.
func (s *State) SelectClaim(claimID string) {
	s.mu.Lock()
	target, known := s.claimTargets[claimID]
	if !known || target == "" || target == s.proofID {
		s.activeClaimID = claimID
		s.mu.Unlock()
		return
	}
	nav := s.claimNav
	s.mu.Unlock()

	if nav != nil {
		nav(target)
	}
}

// emit delivers a change to the callback and the channel. The channel send
// drops the oldest queued change rather than block a mutating goroutine.
func (s *State) emit(c Change, notify func(Change)) {
	if notify != nil {
		notify(c)
	}
	for {
		select {
		case s.changes <- c:
			return
		default:
			select {
			case <-s.changes:
			default:
			}
		}
	}
}
