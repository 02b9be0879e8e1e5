// Package model defines the manifest data types shared across proofdeck.
//
// The shapes mirror what the render pipeline writes: a proofs manifest with
// one item per rendered scene (sections + proof text), and a definitions
// manifest for the glossary viewer. Everything here is immutable once loaded
// for the duration of a viewing session.
package model

import (
	"regexp"
	"strings"
)

// Step is one formal unit of a proof's argument.
type Step struct {
	Title         string `json:"title,omitempty"`
	Statement     string `json:"statement"`
	Justification string `json:"justification,omitempty"`
	Insight       string `json:"insight,omitempty"`
}

// Claim is an alternate formulation of a theorem. Scene names the rendered
// proof that backs it; an empty Scene means the claim shares the item's own
// rendering.
type Claim struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Scene     string `json:"scene,omitempty"`
	Statement string `json:"statement,omitempty"`
	Steps     []Step `json:"steps,omitempty"`
}

// TargetProofID resolves the proof identifier this claim plays back through.
// Claims without an explicit scene stay on the current proof.
func (c Claim) TargetProofID(current string) string {
	if strings.TrimSpace(c.Scene) == "" {
		return current
	}
	return c.Scene
}

// Section is one rendered clip of a proof walkthrough.
type Section struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	File        string `json:"file,omitempty"`
	URL         string `json:"url,omitempty"`
	IsIntro     bool   `json:"isIntro,omitempty"`
}

// MediaPath returns the playable reference for the section, preferring the
// on-disk file over the served URL.
func (s Section) MediaPath() string {
	if s.File != "" {
		return s.File
	}
	return strings.TrimPrefix(s.URL, "/")
}

// Proof holds the text side of a rendered scene.
type Proof struct {
	Title         string  `json:"title,omitempty"`
	Description   string  `json:"description,omitempty"`
	Statement     string  `json:"statement,omitempty"`
	Steps         []Step  `json:"steps"`
	Claims        []Claim `json:"claims,omitempty"`
	ActiveClaimID string  `json:"activeClaimId,omitempty"`
	TheoremID     string  `json:"theoremId,omitempty"`
}

// Item is one entry of the proofs manifest: a rendered scene paired with its
// section clips and proof text.
type Item struct {
	Scene       string    `json:"scene,omitempty"`
	File        string    `json:"file,omitempty"`
	URL         string    `json:"url,omitempty"`
	TheoremID   string    `json:"theoremId,omitempty"`
	Tags        Tags      `json:"tags,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
	Proof       Proof     `json:"proof"`
	ProofSource string    `json:"proofSource,omitempty"`
}

// ID returns the stable identifier for this item. The scene name is unique
// per manifest; older manifests without scene names fall back to theoremId.
func (it Item) ID() string {
	if it.Scene != "" {
		return it.Scene
	}
	return it.TheoremID
}

var sceneWordRe = regexp.MustCompile(`[A-Z][a-z0-9]*|[0-9]+`)

// Title returns the display title, deriving one from the scene name when the
// proof text has none (e.g. "LimitUniqueness" -> "Limit Uniqueness").
func (it Item) Title() string {
	if t := strings.TrimSpace(it.Proof.Title); t != "" {
		return t
	}
	words := sceneWordRe.FindAllString(it.ID(), -1)
	if len(words) == 0 {
		return it.ID()
	}
	return strings.Join(words, " ")
}

// Manifest is the proofs manifest written by the render pipeline.
type Manifest struct {
	GeneratedAt string `json:"generatedAt,omitempty"`
	Items       []Item `json:"items"`
}

// FindItem returns the item whose ID matches, or false.
func (m Manifest) FindItem(id string) (Item, bool) {
	for _, it := range m.Items {
		if it.ID() == id {
			return it, true
		}
	}
	return Item{}, false
}

// NormalizeClaims applies the pipeline's claim defaults so older or
// hand-written manifests behave like freshly built ones: missing ids become
// letters ("a", "b", ...), missing labels become "(<id>)". Claims that are
// entirely empty are dropped.
func NormalizeClaims(claims []Claim) []Claim {
	out := make([]Claim, 0, len(claims))
	for i, c := range claims {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			c.ID = string(rune('a' + i))
		}
		if strings.TrimSpace(c.Label) == "" {
			c.Label = "(" + c.ID + ")"
		}
		out = append(out, c)
	}
	return out
}

// Definition is one glossary entry from the definitions manifest.
type Definition struct {
	ID          string               `json:"id"`
	Term        string               `json:"term"`
	Definition  string               `json:"definition"`
	Notation    string               `json:"notation,omitempty"`
	AlsoKnownAs []string             `json:"alsoKnownAs,omitempty"`
	Example     string               `json:"example,omitempty"`
	Tags        Tags                 `json:"tags,omitempty"`
	Animation   *DefinitionAnimation `json:"animation,omitempty"`
}

// DefinitionAnimation references an optional rendered clip for a definition.
type DefinitionAnimation struct {
	URL      string    `json:"url,omitempty"`
	File     string    `json:"file,omitempty"`
	Quality  string    `json:"quality,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// DefinitionsManifest is the glossary manifest written by the build pipeline.
type DefinitionsManifest struct {
	GeneratedAt string       `json:"generatedAt,omitempty"`
	Items       []Definition `json:"items"`
}
