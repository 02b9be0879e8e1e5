// Package route maps playback state to and from a persisted route so a
// position survives restarts, back/forward navigation, and deep links.
//
// A route is a (proof id, 1-based step) pair; step 0 means the walkthrough
// has not started. The route store is an explicit value store with history
// semantics, not an ambient global: pv backs it with sqlite, tests with the
// in-memory store.
package route

import (
	"sync"

	"github.com/proofdeck/proofdeck/pkg/debug"
	"github.com/proofdeck/proofdeck/pkg/playback"
)

// Route is one persisted playback position.
type Route struct {
	ProofID string
	// Step is 1-based; 0 means not started.
	Step int
}

// IsZero reports whether the route names no proof.
func (r Route) IsZero() bool {
	return r.ProofID == ""
}

// Store persists routes with browser-style history semantics. Push starts a
// new forward branch; Replace corrects the current entry in place.
type Store interface {
	Current() (Route, bool, error)
	Push(Route) error
	Replace(Route) error
	Back() (Route, bool, error)
	Forward() (Route, bool, error)
}

// Bridge connects one proof's playback state to the route store. Internal
// step changes publish outward; external routes flow back in through
// ApplyExternal, deferred until the proof's data has loaded.
type Bridge struct {
	store   Store
	st      *playback.State
	proofID string

	mu sync.Mutex
	// synced flips once state and store agree: after a successfully applied
	// external route, or after the first publish. Until then the first
	// publish is a startup sync that corrects the store's current entry
	// (replace) instead of recording a navigation (push). The correction
	// only applies to an entry already naming this proof; another proof's
	// position is never overwritten.
	synced bool
}

// NewBridge wires a bridge for the given proof and registers itself as the
// state's step-changed listener.
func NewBridge(store Store, st *playback.State) *Bridge {
	b := &Bridge{store: store, st: st, proofID: st.ProofID()}
	st.SetNotify(b.publish)
	return b
}

// ApplyExternal feeds an externally persisted route back into playback.
// A route naming a different proof is not applied: the caller must load
// that proof and bridge it, then re-apply. The requested step is parked as
// the pending index and applied silently once the step count is known, so
// the externally sourced value is not echoed back out.
func (b *Bridge) ApplyExternal(r Route) (needProofID string, applied bool) {
	if r.ProofID != "" && r.ProofID != b.proofID {
		return r.ProofID, false
	}
	if r.Step <= 0 {
		// Route without a step marker: back on the intro screen.
		if b.st.Started() {
			b.st.Restart()
		}
		return "", true
	}
	b.st.SetPending(r.Step - 1)
	if b.st.ApplyPending() {
		b.markSynced()
		return "", true
	}
	return "", false
}

// DataLoaded applies a parked external step once the proof's alignment is
// known and the effective step count is non-zero.
func (b *Bridge) DataLoaded() {
	if b.st.ApplyPending() {
		b.markSynced()
	}
}

func (b *Bridge) markSynced() {
	b.mu.Lock()
	b.synced = true
	b.mu.Unlock()
}

// PublishClaimNav records navigation to a claim backed by a different
// proof. Step semantics are independent between proofs, so the target
// always starts at step 1 rather than inheriting the current number.
func (b *Bridge) PublishClaimNav(targetProofID string) {
	if err := b.store.Push(Route{ProofID: targetProofID, Step: 1}); err != nil {
		debug.Log("route: push claim nav: %v", err)
	}
}

// publish mirrors an internal step change into the store. Restart clears
// the step marker (step 0) so deep links reproduce the intro screen.
func (b *Bridge) publish(c playback.Change) {
	r := Route{ProofID: b.proofID}
	if c.Started {
		r.Step = c.Index + 1
	}

	b.mu.Lock()
	first := !b.synced
	b.synced = true
	b.mu.Unlock()

	replace := false
	if first {
		cur, ok, err := b.store.Current()
		if err != nil {
			debug.Log("route: current: %v", err)
		}
		replace = !ok || cur.ProofID == b.proofID
	}

	var err error
	if replace {
		err = b.store.Replace(r)
	} else {
		err = b.store.Push(r)
	}
	if err != nil {
		debug.Log("route: publish %s step %d: %v", r.ProofID, r.Step, err)
	}
}
