package history

import (
	"path/filepath"
	"testing"

	"github.com/proofdeck/proofdeck/pkg/route"
)

func open(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_EmptyDatabase(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "history.db"))

	if _, ok, err := s.Current(); err != nil || ok {
		t.Fatalf("empty current: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Back(); err != nil || ok {
		t.Fatalf("empty back: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Forward(); err != nil || ok {
		t.Fatalf("empty forward: ok=%v err=%v", ok, err)
	}
}

func TestStore_PushBackForward(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "history.db"))

	for step := 1; step <= 3; step++ {
		if err := s.Push(route.Route{ProofID: "thm1", Step: step}); err != nil {
			t.Fatalf("push %d: %v", step, err)
		}
	}

	r, ok, err := s.Current()
	if err != nil || !ok || r.Step != 3 {
		t.Fatalf("current: %+v ok=%v err=%v", r, ok, err)
	}
	r, ok, err = s.Back()
	if err != nil || !ok || r.Step != 2 {
		t.Fatalf("back: %+v ok=%v err=%v", r, ok, err)
	}
	r, ok, err = s.Back()
	if err != nil || !ok || r.Step != 1 {
		t.Fatalf("back: %+v ok=%v err=%v", r, ok, err)
	}
	if _, ok, _ = s.Back(); ok {
		t.Fatal("back past the first entry should fail")
	}
	r, ok, err = s.Forward()
	if err != nil || !ok || r.Step != 2 {
		t.Fatalf("forward: %+v ok=%v err=%v", r, ok, err)
	}
}

func TestStore_PushTruncatesForwardBranch(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "history.db"))

	s.Push(route.Route{ProofID: "thm1", Step: 1})
	s.Push(route.Route{ProofID: "thm1", Step: 2})
	s.Push(route.Route{ProofID: "thm1", Step: 3})
	if _, ok, err := s.Back(); err != nil || !ok {
		t.Fatalf("back: ok=%v err=%v", ok, err)
	}

	if err := s.Push(route.Route{ProofID: "thm2", Step: 1}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, ok, _ := s.Forward(); ok {
		t.Fatal("push must drop the forward branch")
	}
	r, ok, err := s.Current()
	if err != nil || !ok || r.ProofID != "thm2" {
		t.Fatalf("current after branch push: %+v ok=%v err=%v", r, ok, err)
	}
}

func TestStore_ReplaceRewritesInPlace(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "history.db"))

	// Replace on an empty database seeds it.
	if err := s.Replace(route.Route{ProofID: "thm1", Step: 0}); err != nil {
		t.Fatalf("seed replace: %v", err)
	}
	r, ok, err := s.Current()
	if err != nil || !ok || r != (route.Route{ProofID: "thm1", Step: 0}) {
		t.Fatalf("current: %+v ok=%v err=%v", r, ok, err)
	}

	if err := s.Replace(route.Route{ProofID: "thm1", Step: 2}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	r, _, _ = s.Current()
	if r.Step != 2 {
		t.Fatalf("replace did not rewrite, got %+v", r)
	}
	if _, ok, _ := s.Back(); ok {
		t.Fatal("replace must not grow the history")
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s := open(t, path)
	s.Push(route.Route{ProofID: "thm1", Step: 1})
	s.Push(route.Route{ProofID: "thm1", Step: 2})
	s.Back()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2 := open(t, path)
	r, ok, err := s2.Current()
	if err != nil || !ok || r.Step != 1 {
		t.Fatalf("cursor did not survive reopen: %+v ok=%v err=%v", r, ok, err)
	}
	r, ok, err = s2.Forward()
	if err != nil || !ok || r.Step != 2 {
		t.Fatalf("forward after reopen: %+v ok=%v err=%v", r, ok, err)
	}
}
