package playback

import (
	"strings"
	"testing"

	"github.com/proofdeck/proofdeck/pkg/align"
	"github.com/proofdeck/proofdeck/pkg/model"
)

func demoProof() (model.Proof, align.Alignment) {
	proof := model.Proof{
		Steps: []model.Step{
			{Statement: "Assume two limits. {{We argue toward a contradiction.}}"},
			{Statement: "Choose epsilon as half the gap."},
			{Statement: "Apply the triangle inequality."},
		},
	}
	sections := []model.Section{
		{Index: 0, ID: "intro", Name: "Intro"},
		{Index: 1, ID: "s1", Name: "Assume"},
		{Index: 2, ID: "s2", Name: "Epsilon"},
		{Index: 3, ID: "s3", Name: "Triangle"},
	}
	return proof, align.Align(proof.Steps, sections)
}

func TestProject_BeforeStart(t *testing.T) {
	proof, al := demoProof()
	st := New("thm")
	st.SetCount(al.EffectiveStepCount)

	v := Project(st, proof, al)
	if v.TranscriptText != "" {
		t.Fatalf("no transcript before start, got %q", v.TranscriptText)
	}
	if v.ActiveSection == nil || v.ActiveSection.ID != "intro" {
		t.Fatalf("intro should be active before start, got %+v", v.ActiveSection)
	}
	if v.ProgressPercent != 0 || v.PrevEnabled || v.NextEnabled {
		t.Fatalf("unexpected pre-start view: %+v", v)
	}
	if !v.AutoplayEnabled {
		t.Fatal("autoplay should be offered with multiple steps")
	}
}

func TestProject_ActiveOnlySpans(t *testing.T) {
	proof, al := demoProof()
	st := New("thm")
	st.SetCount(al.EffectiveStepCount)
	st.Start(0)

	v := Project(st, proof, al)
	if !strings.Contains(v.TranscriptText, "We argue toward a contradiction.") {
		t.Fatalf("active step should show its span unwrapped: %q", v.TranscriptText)
	}
	if strings.Contains(v.TranscriptText, "{{") {
		t.Fatalf("markup leaked into transcript: %q", v.TranscriptText)
	}

	// Once the step is behind us its span disappears.
	st.StepBy(1)
	v = Project(st, proof, al)
	if strings.Contains(v.TranscriptText, "contradiction") {
		t.Fatalf("span from an earlier step should be stripped: %q", v.TranscriptText)
	}
	if !strings.Contains(v.TranscriptText, "Assume two limits.") {
		t.Fatalf("earlier statement should stay in the transcript: %q", v.TranscriptText)
	}
}

func TestProject_TranscriptAccumulates(t *testing.T) {
	proof, al := demoProof()
	st := New("thm")
	st.SetCount(al.EffectiveStepCount)
	st.Start(2)

	v := Project(st, proof, al)
	for _, want := range []string{"Assume two limits.", "Choose epsilon", "triangle inequality"} {
		if !strings.Contains(v.TranscriptText, want) {
			t.Errorf("transcript missing %q: %q", want, v.TranscriptText)
		}
	}
	if v.ActiveSection == nil || v.ActiveSection.ID != "s3" {
		t.Fatalf("expected section s3 active, got %+v", v.ActiveSection)
	}
	if v.ProgressPercent != 100 {
		t.Fatalf("expected 100%% at the last step, got %d", v.ProgressPercent)
	}
	if v.NextEnabled || !v.PrevEnabled {
		t.Fatalf("nav flags wrong at the end: %+v", v)
	}
}

func TestProject_ProgressRounds(t *testing.T) {
	proof, al := demoProof()
	st := New("thm")
	st.SetCount(al.EffectiveStepCount)
	st.Start(0)

	if v := Project(st, proof, al); v.ProgressPercent != 33 {
		t.Fatalf("expected 33%% at step 1 of 3, got %d", v.ProgressPercent)
	}
	st.StepBy(1)
	if v := Project(st, proof, al); v.ProgressPercent != 67 {
		t.Fatalf("expected 67%% at step 2 of 3, got %d", v.ProgressPercent)
	}
}

func TestProject_NoSections(t *testing.T) {
	proof := model.Proof{Steps: []model.Step{{Statement: "only step"}}}
	al := align.Align(proof.Steps, nil)
	st := New("thm")
	st.SetCount(al.EffectiveStepCount)

	if v := Project(st, proof, al); v.ActiveSection != nil {
		t.Fatalf("no sections: active must be nil, got %+v", v.ActiveSection)
	}
	st.Start(0)
	v := Project(st, proof, al)
	if v.ActiveSection != nil {
		t.Fatalf("no sections after start: active must be nil, got %+v", v.ActiveSection)
	}
	if v.TranscriptText != "only step" {
		t.Fatalf("transcript wrong: %q", v.TranscriptText)
	}
	if v.AutoplayEnabled {
		t.Fatal("single step must not offer autoplay")
	}
}

func TestProject_SingleStepFlags(t *testing.T) {
	proof := model.Proof{Steps: []model.Step{{Statement: "s"}}}
	al := align.Align(proof.Steps, []model.Section{
		{Index: 0, ID: "intro"},
		{Index: 1, ID: "s1"},
	})
	st := New("thm")
	st.SetCount(al.EffectiveStepCount)
	st.Start(0)

	v := Project(st, proof, al)
	if v.PrevEnabled || v.NextEnabled {
		t.Fatalf("single step: both nav flags must be off, got %+v", v)
	}
	if v.ProgressPercent != 100 {
		t.Fatalf("single step is always 100%%, got %d", v.ProgressPercent)
	}
}
