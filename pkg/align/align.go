// Package align pairs a proof's formal steps with its rendered sections.
//
// The two sequences are authored independently: the proof JSON decides the
// step count, the render pipeline decides how many section clips a scene
// produced. The aligner computes how many steps are actually playable and
// which section backs each step. A length mismatch is not an error; indices
// past the shorter sequence are simply unreachable.
package align

import (
	"sort"

	"github.com/proofdeck/proofdeck/pkg/model"
)

// Alignment is the result of pairing steps with sections for one proof.
type Alignment struct {
	// EffectiveStepCount is how many steps can actually be walked through.
	EffectiveStepCount int
	// Intro is the non-playable title section, if any.
	Intro *model.Section
	// Playable holds the sections that back steps, in index order.
	Playable []model.Section
}

// Align computes the alignment for one proof. Sections are ordered by their
// index field; the intro is the first section flagged isIntro, else the
// first section by convention. Missing data degrades to an empty alignment,
// never an error.
func Align(steps []model.Step, sections []model.Section) Alignment {
	var a Alignment
	if len(sections) > 0 {
		ordered := make([]model.Section, len(sections))
		copy(ordered, sections)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Index < ordered[j].Index
		})

		introAt := 0
		for i := range ordered {
			if ordered[i].IsIntro {
				introAt = i
				break
			}
		}
		intro := ordered[introAt]
		a.Intro = &intro
		a.Playable = append(ordered[:introAt:introAt], ordered[introAt+1:]...)
	}

	switch {
	case len(steps) > 0 && len(a.Playable) > 0:
		a.EffectiveStepCount = min(len(steps), len(a.Playable))
	case len(steps) > 0:
		a.EffectiveStepCount = len(steps)
	default:
		a.EffectiveStepCount = len(a.Playable)
	}
	return a
}

// SectionFor maps a step index to its backing section, clamping out-of-range
// indices. Returns nil when the proof has no playable sections.
func (a Alignment) SectionFor(idx int) *model.Section {
	if len(a.Playable) == 0 {
		return nil
	}
	idx = Clamp(idx, len(a.Playable))
	return &a.Playable[idx]
}

// Truncated reports whether the steps and playable sections had different
// lengths, i.e. part of the longer sequence is unreachable. Used by the
// authoring lint, not by playback.
func Truncated(steps []model.Step, a Alignment) bool {
	return len(steps) > 0 && len(a.Playable) > 0 && len(steps) != len(a.Playable)
}

// Clamp restricts idx to [0, count-1]. A non-positive count clamps to 0.
func Clamp(idx, count int) int {
	if idx < 0 {
		return 0
	}
	if count > 0 && idx > count-1 {
		return count - 1
	}
	if count <= 0 {
		return 0
	}
	return idx
}
