package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/proofdeck/proofdeck/pkg/playback"
)

// layout recomputes component sizes after a window resize.
func (m *Model) layout() {
	listHeight := m.height - 2
	if listHeight < 3 {
		listHeight = 3
	}
	m.picker.SetSize(m.width, listHeight)
	m.defs.SetSize(m.width, listHeight)

	vpWidth := m.width - 4
	if vpWidth < 20 {
		vpWidth = 20
	}
	vpHeight := m.height - 12
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.progress.Width = min(vpWidth, 60)
	m.help.Width = m.width

	if wrap := m.cfg.UI.WordWrap; wrap <= 0 {
		m.md = NewMarkdownRenderer(vpWidth - 2)
	}
	m.refreshViewer()
}

// refreshViewer re-projects the playback position into the transcript
// viewport. Scrolls to the bottom so the newest step stays in view.
func (m *Model) refreshViewer() {
	s := m.sess
	if s == nil {
		return
	}
	v := playback.Project(s.st, s.item.Proof, s.al)
	content := m.md.Render(v.TranscriptText)

	if m.cfg.UI.ShowInsights && s.st.Started() {
		idx := s.st.Index()
		if idx >= 0 && idx < len(s.item.Proof.Steps) {
			if insight := strings.TrimSpace(s.item.Proof.Steps[idx].Insight); insight != "" {
				content += "\n" + insightStyle.Render("✦ "+insight)
			}
		}
	}

	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	switch m.focused {
	case focusDefs:
		return m.defs.View() + "\n" + helpStyle.Render("esc back · / filter · q quit")
	case focusViewer:
		if m.sess != nil {
			return m.viewerView()
		}
		fallthrough
	default:
		return m.pickerView()
	}
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.picker.View())
	if m.loadErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("manifest: " + m.loadErr))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter open · d definitions · / filter · q quit"))
	return b.String()
}

func (m Model) viewerView() string {
	s := m.sess
	v := playback.Project(s.st, s.item.Proof, s.al)

	var b strings.Builder

	// Header: title, claim row, tag chips.
	b.WriteString(titleStyle.Render(s.item.Title()))
	if chips := s.item.Tags.Chips(); len(chips) > 0 {
		var rendered []string
		for _, c := range chips {
			rendered = append(rendered, chipStyle.Render(c))
		}
		b.WriteString("  ")
		b.WriteString(strings.Join(rendered, " "))
	}
	b.WriteString("\n")

	if stmt := strings.TrimSpace(s.item.Proof.Statement); stmt != "" {
		b.WriteString(statementStyle.Render(truncateLine(stmt, m.width-2)))
		b.WriteString("\n")
	}
	if row := m.claimRow(); row != "" {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Body: intro blurb before start, transcript after.
	if !s.st.Started() {
		b.WriteString(m.introView(v))
	} else {
		b.WriteString(paneStyle.Width(m.viewport.Width + 2).Render(m.viewport.View()))
	}
	b.WriteString("\n")

	// Section line and progress.
	if v.ActiveSection != nil {
		b.WriteString(sectionNameStyle.Render("▶ " + v.ActiveSection.Name))
		if s.st.Started() {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  step %d/%d", s.st.Index()+1, s.al.EffectiveStepCount)))
		}
		b.WriteString("\n")
	}
	if s.st.Started() && s.al.EffectiveStepCount > 0 {
		b.WriteString(m.progress.ViewAs(float64(v.ProgressPercent) / 100))
		b.WriteString("\n")
	}

	// Status and key help.
	if s.st.Autoplay() {
		b.WriteString(autoplayOnStyle.Render("autoplay"))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.navHelp(v))
	return b.String()
}

// introView is the pre-start title screen.
func (m Model) introView(v playback.View) string {
	s := m.sess
	var lines []string
	if desc := strings.TrimSpace(s.item.Proof.Description); desc != "" {
		lines = append(lines, m.md.Render(desc))
	}
	if v.ActiveSection != nil {
		lines = append(lines, mutedStyle.Render("intro: "+v.ActiveSection.Name))
	}
	if s.al.EffectiveStepCount == 0 {
		lines = append(lines, errorStyle.Render("nothing to play"))
	} else {
		lines = append(lines, fmt.Sprintf("%d steps — press enter to begin", s.al.EffectiveStepCount))
	}
	return paneStyle.Width(m.viewport.Width + 2).Render(strings.Join(lines, "\n"))
}

// claimRow renders the claim selector when the theorem has alternates.
func (m Model) claimRow() string {
	s := m.sess
	claims := s.item.Proof.Claims
	if len(claims) < 2 {
		return ""
	}
	active := s.st.ActiveClaimID()
	var parts []string
	for _, c := range claims {
		if c.ID == active {
			parts = append(parts, claimActiveStyle.Render(c.Label))
		} else {
			parts = append(parts, claimStyle.Render(c.Label))
		}
	}
	return mutedStyle.Render("claims: ") + strings.Join(parts, lipgloss.NewStyle().Render("  "))
}

// navHelp renders the contextual key line, dimming disabled actions.
func (m Model) navHelp(v playback.View) string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}
	var parts []string
	if !m.sess.st.Started() {
		parts = append(parts, "enter start")
	} else {
		if v.PrevEnabled {
			parts = append(parts, "← prev")
		}
		if v.NextEnabled {
			parts = append(parts, "→ next")
		}
		parts = append(parts, "r restart")
	}
	if v.AutoplayEnabled {
		parts = append(parts, "a autoplay")
	}
	if len(m.sess.item.Proof.Claims) > 1 {
		parts = append(parts, "c claim")
	}
	parts = append(parts, "y link", "esc menu", "? help")
	return helpStyle.Render(strings.Join(parts, " · "))
}

// truncateLine truncates to max display cells, wide-rune aware.
func truncateLine(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max-1, "") + "…"
}
