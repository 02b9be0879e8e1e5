package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer wraps a glamour renderer for transcript text. Step
// statements are markdown with TeX-ish inline math left verbatim; glamour
// treats the math as plain text, which is what a terminal can do with it.
type MarkdownRenderer struct {
	r    *glamour.TermRenderer
	wrap int
}

// NewMarkdownRenderer builds a renderer wrapping at the given width.
// A nil inner renderer (styling unavailable) degrades to plain text.
func NewMarkdownRenderer(wrap int) *MarkdownRenderer {
	if wrap <= 0 {
		wrap = 76
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	return &MarkdownRenderer{r: r, wrap: wrap}
}

// Wrap returns the configured wrap width.
func (m *MarkdownRenderer) Wrap() int {
	return m.wrap
}

// Render turns markdown into terminal output, falling back to the raw text
// when glamour is unavailable.
func (m *MarkdownRenderer) Render(text string) string {
	if m == nil || m.r == nil {
		return text
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text
	}
	// Strip the excess trailing whitespace glamour adds.
	return strings.TrimRight(out, "\n") + "\n"
}
