package ui

import (
	"fmt"
	"strings"

	"doorsmith/internal/view"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// RenderCard draws one product card at the given outer width. The card
// under the cursor gets the cursor marker; the previewed card gets the
// focused border.
func RenderCard(s Styles, c view.Card, width int, underCursor bool) string {
	style := s.Card
	if c.Focused {
		style = s.CardFocused
	}
	inner := width - 2*PanelBorderWidth - 2*PanelPaddingH
	if inner < 10 {
		inner = 10
	}

	marker := "  "
	if underCursor {
		marker = s.Cursor.Render("▸ ")
	}
	title := marker + s.Bold.Render(Clip(c.Title, inner-2))

	meta := fmt.Sprintf("%s  %s  #%d", s.Price.Render(c.Price), s.Badge.Render(c.Material), c.ID)

	image := "No image."
	if c.ImageURL != "" {
		image = c.ImageURL
	}

	desc := c.Description
	if desc == "" {
		desc = "No description."
	}
	lines := strings.Split(wordwrap.String(desc, inner), "\n")
	if len(lines) > CardDescriptionMax {
		lines = lines[:CardDescriptionMax]
		lines[CardDescriptionMax-1] = Clip(lines[CardDescriptionMax-1]+" …", inner)
	}
	for len(lines) < CardDescriptionMax {
		lines = append(lines, "")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		meta,
		s.Muted.Render(Clip(image, inner)),
		s.Muted.Render(strings.Join(lines, "\n")),
	)
	return style.Width(width - 2*PanelBorderWidth).Render(body)
}

// Clip truncates s to width cells, adding an ellipsis when cut.
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
