package route

import (
	"testing"

	"github.com/proofdeck/proofdeck/pkg/playback"
)

func newBridge(proofID string, count int) (*Bridge, *playback.State, *MemoryStore) {
	st := playback.New(proofID)
	store := NewMemoryStore()
	b := NewBridge(store, st)
	st.SetCount(count)
	return b, st, store
}

func mustCurrent(t *testing.T, store Store) Route {
	t.Helper()
	r, ok, err := store.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !ok {
		t.Fatal("store is empty")
	}
	return r
}

func TestBridge_FirstPublishReplaces(t *testing.T) {
	_, st, store := newBridge("thm1", 3)

	st.Start(0)
	if got := mustCurrent(t, store); got != (Route{ProofID: "thm1", Step: 1}) {
		t.Fatalf("unexpected route: %+v", got)
	}
	if store.Len() != 1 {
		t.Fatalf("first publish must replace, history len %d", store.Len())
	}

	st.StepBy(1)
	if got := mustCurrent(t, store); got.Step != 2 {
		t.Fatalf("expected step 2, got %+v", got)
	}
	if store.Len() != 2 {
		t.Fatalf("later steps must push, history len %d", store.Len())
	}
}

func TestBridge_RestartClearsStepMarker(t *testing.T) {
	_, st, store := newBridge("thm1", 3)
	st.Start(2)

	st.Restart()
	if got := mustCurrent(t, store); got != (Route{ProofID: "thm1", Step: 0}) {
		t.Fatalf("restart should persist step 0, got %+v", got)
	}
}

func TestBridge_PendingStepBeforeLoad(t *testing.T) {
	// The route arrives before the proof's data: step parked, then applied
	// silently once the count is known.
	st := playback.New("thm1")
	store := NewMemoryStore()
	b := NewBridge(store, st)

	need, applied := b.ApplyExternal(Route{ProofID: "thm1", Step: 3})
	if need != "" || applied {
		t.Fatalf("apply before load: need=%q applied=%v", need, applied)
	}
	if st.Started() {
		t.Fatal("must not start before the count is known")
	}

	st.SetCount(5)
	b.DataLoaded()
	if !st.Started() || st.Index() != 2 {
		t.Fatalf("expected silent jump to index 2, got started=%v index=%d", st.Started(), st.Index())
	}
	if store.Len() != 0 {
		t.Fatalf("externally sourced step must not be echoed back, history len %d", store.Len())
	}
}

func TestBridge_ExternalStepClamped(t *testing.T) {
	b, st, store := newBridge("thm1", 3)

	if _, applied := b.ApplyExternal(Route{ProofID: "thm1", Step: 99}); !applied {
		t.Fatal("expected clamped application")
	}
	if st.Index() != 2 {
		t.Fatalf("expected clamp to last index 2, got %d", st.Index())
	}
	if store.Len() != 0 {
		t.Fatalf("clamped external step must stay silent, history len %d", store.Len())
	}
}

func TestBridge_ExternalOtherProof(t *testing.T) {
	b, st, _ := newBridge("thm1", 3)

	need, applied := b.ApplyExternal(Route{ProofID: "thm2", Step: 1})
	if need != "thm2" || applied {
		t.Fatalf("expected handoff to thm2, got need=%q applied=%v", need, applied)
	}
	if st.Started() {
		t.Fatal("foreign route must not touch local playback")
	}
}

func TestBridge_ExternalStepZeroRestarts(t *testing.T) {
	b, st, store := newBridge("thm1", 3)
	st.Start(1)

	if _, applied := b.ApplyExternal(Route{ProofID: "thm1", Step: 0}); !applied {
		t.Fatal("expected application")
	}
	if st.Started() {
		t.Fatal("step 0 should return to the intro screen")
	}
	// Restart publishes: the cleared marker lands in the store.
	if got := mustCurrent(t, store); got.Step != 0 {
		t.Fatalf("expected persisted step 0, got %+v", got)
	}
}

func TestBridge_NewProofFirstStepPushes(t *testing.T) {
	// Viewing thmA, then opening thmB: thmB's first step is a navigation and
	// must not overwrite thmA's position.
	store := NewMemoryStore()
	stA := playback.New("thmA")
	NewBridge(store, stA)
	stA.SetCount(3)
	stA.Start(1)

	stB := playback.New("thmB")
	NewBridge(store, stB)
	stB.SetCount(2)
	stB.Start(0)

	if got := mustCurrent(t, store); got != (Route{ProofID: "thmB", Step: 1}) {
		t.Fatalf("unexpected current: %+v", got)
	}
	if store.Len() != 2 {
		t.Fatalf("expected thmA's entry preserved, history len %d", store.Len())
	}
	r, ok, _ := store.Back()
	if !ok || r != (Route{ProofID: "thmA", Step: 2}) {
		t.Fatalf("back should return to thmA step 2, got %+v ok=%v", r, ok)
	}
}

func TestBridge_StepAfterExternalApplyPushes(t *testing.T) {
	// A silently applied external route counts as the startup sync; the next
	// user step is a real navigation.
	store := NewMemoryStore()
	store.Push(Route{ProofID: "thm1", Step: 2})
	st := playback.New("thm1")
	b := NewBridge(store, st)
	st.SetCount(5)

	if _, applied := b.ApplyExternal(Route{ProofID: "thm1", Step: 2}); !applied {
		t.Fatal("expected application")
	}
	if store.Len() != 1 {
		t.Fatalf("silent apply must not publish, history len %d", store.Len())
	}

	st.StepBy(1)
	if store.Len() != 2 {
		t.Fatalf("step after sync must push, history len %d", store.Len())
	}
	r, ok, _ := store.Back()
	if !ok || r.Step != 2 {
		t.Fatalf("back should return to the resumed position, got %+v ok=%v", r, ok)
	}
}

func TestBridge_ClaimNavPushesTargetAtStepOne(t *testing.T) {
	b, st, store := newBridge("thm1", 3)
	st.Start(2)

	b.PublishClaimNav("thm2")
	if got := mustCurrent(t, store); got != (Route{ProofID: "thm2", Step: 1}) {
		t.Fatalf("claim nav should push the target at step 1, got %+v", got)
	}
}

func TestMemoryStore_History(t *testing.T) {
	m := NewMemoryStore()

	if _, ok, _ := m.Current(); ok {
		t.Fatal("empty store reported a current entry")
	}
	if _, ok, _ := m.Back(); ok {
		t.Fatal("empty store allowed back")
	}

	m.Push(Route{ProofID: "a", Step: 1})
	m.Push(Route{ProofID: "a", Step: 2})
	m.Push(Route{ProofID: "a", Step: 3})

	r, ok, _ := m.Back()
	if !ok || r.Step != 2 {
		t.Fatalf("back: %+v ok=%v", r, ok)
	}
	r, ok, _ = m.Forward()
	if !ok || r.Step != 3 {
		t.Fatalf("forward: %+v ok=%v", r, ok)
	}
	if _, ok, _ = m.Forward(); ok {
		t.Fatal("forward past the end should fail")
	}

	// A push from the middle drops the forward branch.
	m.Back()
	m.Push(Route{ProofID: "b", Step: 1})
	if _, ok, _ := m.Forward(); ok {
		t.Fatal("push must truncate the forward branch")
	}
	if got := mustCurrent(t, m); got.ProofID != "b" {
		t.Fatalf("expected b current, got %+v", got)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", m.Len())
	}
}
