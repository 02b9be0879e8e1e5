package playback

import (
	"math"
	"regexp"
	"strings"

	"github.com/proofdeck/proofdeck/pkg/align"
	"github.com/proofdeck/proofdeck/pkg/model"
)

// View is everything the presentation layer needs to render one playback
// position. Derived, never mutated.
type View struct {
	// TranscriptText accumulates every step statement from the first step
	// through the current one. Later steps are hidden entirely.
	TranscriptText string
	// ActiveSection is the intro before the walkthrough starts, the section
	// backing the current step once started, or nil without sections.
	ActiveSection *model.Section
	// ProgressPercent is 0..100, 0 before start.
	ProgressPercent int

	PrevEnabled     bool
	NextEnabled     bool
	AutoplayEnabled bool
}

// activeOnlyRe matches {{...}} spans in a step statement: text shown only
// while that step is the active one.
var activeOnlyRe = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Project derives the view for the given position. Pure: reads the state,
// touches nothing.
func Project(st *State, proof model.Proof, al align.Alignment) View {
	count := al.EffectiveStepCount
	started := st.Started()
	idx := align.Clamp(st.Index(), count)

	v := View{
		AutoplayEnabled: count > 1,
	}

	if started && count > 0 {
		v.PrevEnabled = idx > 0
		v.NextEnabled = idx < count-1
		v.ProgressPercent = int(math.Round(float64(idx+1) / float64(count) * 100))
		v.TranscriptText = transcript(proof.Steps, idx)
		v.ActiveSection = al.SectionFor(idx)
	} else {
		v.ActiveSection = al.Intro
	}
	return v
}

// transcript concatenates statements 0..active inclusive. Active-only spans
// are unwrapped for the active step and stripped for the earlier ones.
func transcript(steps []model.Step, active int) string {
	if active >= len(steps) {
		active = len(steps) - 1
	}
	var parts []string
	for i := 0; i <= active; i++ {
		stmt := steps[i].Statement
		if i == active {
			stmt = activeOnlyRe.ReplaceAllString(stmt, "$1")
		} else {
			stmt = activeOnlyRe.ReplaceAllString(stmt, "")
		}
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			parts = append(parts, stmt)
		}
	}
	return strings.Join(parts, "\n\n")
}
