// Package export renders shareable artifacts from proof data. The outline
// export draws a proof's step sequence as a standalone SVG card.
package export

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/proofdeck/proofdeck/pkg/align"
	"github.com/proofdeck/proofdeck/pkg/model"
)

const (
	outlineWidth = 760
	headerHeight = 96
	rowHeight    = 58
	margin       = 16
)

var (
	colorBackdrop = "#1e1f29"
	colorCard     = "#282a36"
	colorAccent   = "#bd93f9"
	colorText     = "#f8f8f2"
	colorSubtle   = "#bfbfbf"
	colorMuted    = "#6272a4"
)

// WriteOutline renders the proof outline card for one manifest item.
func WriteOutline(w io.Writer, item model.Item) error {
	al := align.Align(item.Proof.Steps, item.Sections)
	steps := item.Proof.Steps
	height := headerHeight + margin + len(steps)*rowHeight + margin

	canvas := svg.New(w)
	canvas.Start(outlineWidth, height)
	canvas.Rect(0, 0, outlineWidth, height, fmt.Sprintf("fill:%s", colorBackdrop))

	canvas.Roundrect(margin, margin, outlineWidth-2*margin, headerHeight-margin, 10, 10,
		fmt.Sprintf("fill:%s", colorCard))
	canvas.Text(margin+16, margin+30, item.Title(),
		fmt.Sprintf("fill:%s;font-size:18px;font-family:monospace;font-weight:bold", colorText))
	if s := strings.TrimSpace(item.Proof.Statement); s != "" {
		canvas.Text(margin+16, margin+54, truncate(s, 88),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", colorSubtle))
	}
	canvas.Text(margin+16, margin+72,
		fmt.Sprintf("%d steps, %d clips", len(steps), len(al.Playable)),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", colorMuted))

	y := headerHeight + margin
	for i, step := range steps {
		style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", colorCard, colorMuted)
		if i >= al.EffectiveStepCount {
			// Steps past the playable range have no clip behind them.
			style = fmt.Sprintf("fill:none;stroke:%s;stroke-width:1;stroke-dasharray:4", colorMuted)
		}
		canvas.Roundrect(margin, y, outlineWidth-2*margin, rowHeight-8, 8, 8, style)
		canvas.Text(margin+14, y+22, fmt.Sprintf("%d.", i+1),
			fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", colorAccent))
		title := step.Title
		if title == "" {
			title = truncate(stripMarkup(step.Statement), 70)
		}
		canvas.Text(margin+44, y+22, truncate(title, 70),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", colorText))
		if j := strings.TrimSpace(step.Justification); j != "" {
			canvas.Text(margin+44, y+40, truncate(j, 76),
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", colorSubtle))
		}
		y += rowHeight
	}

	canvas.End()
	return nil
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// stripMarkup removes the {{...}} active-only delimiters for static output.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "{{", "")
	return strings.ReplaceAll(s, "}}", "")
}
