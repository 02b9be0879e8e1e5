package ui

import (
	"fmt"
	"strings"

	"github.com/proofdeck/proofdeck/pkg/model"
)

// ProofItem wraps a manifest item to implement list.Item for the proof
// picker.
type ProofItem struct {
	Item model.Item
}

func (p ProofItem) Title() string {
	return p.Item.Title()
}

func (p ProofItem) Description() string {
	parts := []string{fmt.Sprintf("%d steps", len(p.Item.Proof.Steps))}
	if n := len(p.Item.Proof.Claims); n > 1 {
		parts = append(parts, fmt.Sprintf("%d claims", n))
	}
	if chips := p.Item.Tags.Chips(); len(chips) > 0 {
		parts = append(parts, strings.Join(chips, " · "))
	}
	return strings.Join(parts, " · ")
}

func (p ProofItem) FilterValue() string {
	var sb strings.Builder
	sb.WriteString(p.Item.Title())
	sb.WriteString(" ")
	sb.WriteString(p.Item.ID())
	sb.WriteString(" ")
	sb.WriteString(p.Item.TheoremID)
	for _, chip := range p.Item.Tags.Chips() {
		sb.WriteString(" ")
		sb.WriteString(chip)
	}
	return sb.String()
}

// DefinitionItem wraps a glossary entry to implement list.Item.
type DefinitionItem struct {
	Def model.Definition
}

func (d DefinitionItem) Title() string {
	if d.Def.Notation != "" {
		return d.Def.Term + "  " + d.Def.Notation
	}
	return d.Def.Term
}

func (d DefinitionItem) Description() string {
	text := strings.Join(strings.Fields(d.Def.Definition), " ")
	if len(d.Def.AlsoKnownAs) > 0 {
		text = "aka " + strings.Join(d.Def.AlsoKnownAs, ", ") + " · " + text
	}
	return text
}

func (d DefinitionItem) FilterValue() string {
	parts := append([]string{d.Def.Term, d.Def.ID}, d.Def.AlsoKnownAs...)
	return strings.Join(parts, " ")
}
