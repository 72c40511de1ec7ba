package workbench

import (
	"fmt"
	"strings"

	"doorsmith/cmd/doorsmith/ui"
	"doorsmith/internal/customize"
	"doorsmith/internal/view"

	"github.com/charmbracelet/lipgloss"
)

// View renders the whole screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	scr := view.Render(m.state)
	layout := ui.NewLayoutConfig(m.termW, m.termH)
	leftW, rightW := layout.Panes()

	header := m.styles.Header.Width(layout.TerminalWidth).Render("doorsmith · door configurator")
	search := m.search.View()
	status := m.renderStatus(scr)

	var body string
	if layout.IsCompact {
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderCustomize(rightW),
			m.renderResults(scr, leftW, layout.VisibleCards()),
		)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderResults(scr, leftW, layout.VisibleCards()),
			strings.Repeat(" ", ui.SplitPaneDivider),
			m.renderCustomize(rightW),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		search,
		status,
		body,
		m.help.View(m.keys.forPane(m.pane)),
	)
}

func (m Model) renderStatus(scr view.Screen) string {
	var parts []string
	switch {
	case scr.Kind == view.KindLoading:
		parts = append(parts, m.spinner.View()+" "+m.styles.Info.Render(scr.Status))
	case scr.Kind == view.KindError:
		parts = append(parts, m.styles.Error.Render(scr.Status))
	case scr.Status != "":
		parts = append(parts, m.styles.Body.Render(scr.Status))
	}
	parts = append(parts, m.styles.Muted.Render(fmt.Sprintf("Material: %s · Sort: %s", scr.Filter, scr.Sort)))
	if m.emitErr != nil {
		parts = append(parts, m.styles.Warning.Render("build log delivery failed"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) panelStyle(active bool, width int) lipgloss.Style {
	style := m.styles.Panel.Width(width - 2*ui.PanelBorderWidth)
	if active {
		style = style.BorderForeground(m.styles.Theme.Accent)
	}
	return style
}

func (m Model) renderResults(scr view.Screen, width, visible int) string {
	inner := ui.PanelContentWidth(width)
	title := m.styles.Title.Render("Results")

	var content string
	switch scr.Kind {
	case view.KindPopulated:
		start, end := window(m.cursor, len(scr.Cards), visible)
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, ui.RenderCard(m.styles, scr.Cards[i], inner, m.pane == paneResults && i == m.cursor))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, cards...)
		if len(scr.Cards) > visible {
			content += "\n" + m.styles.Muted.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(scr.Cards)))
		}
	case view.KindError:
		content = m.styles.Error.Render(scr.Message) + "\n" + m.styles.Muted.Render("Press r to retry.")
	case view.KindLoading:
		content = m.spinner.View() + " " + m.styles.Muted.Render(scr.Message)
	default:
		content = m.styles.Subtitle.Render(scr.Message)
	}

	return m.panelStyle(m.pane == paneResults, width).Render(title + "\n" + content)
}

// window returns the visible card range keeping cursor on screen.
func window(cursor, total, visible int) (start, end int) {
	if visible <= 0 || total <= visible {
		return 0, total
	}
	start = cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

func (m Model) renderCustomize(width int) string {
	sel := m.state.Selection
	active := m.pane == paneCustomize

	label := func(r formRow, text string) string {
		marker := "  "
		if active && m.row == r {
			marker = m.styles.Cursor.Render("▸ ")
		}
		return marker + m.styles.Bold.Render(fmt.Sprintf("%-9s", text))
	}

	material := customize.Placeholder
	if sel.Material != "" {
		material = sel.Material
	}

	var hw []string
	for i, name := range m.choices.Hardware {
		box := "[ ]"
		if sel.HasHardware(name) {
			box = "[x]"
		}
		entry := box + " " + name
		if active && m.row == rowHardware && i == m.hwCursor {
			entry = m.styles.Cursor.Render(entry)
		}
		hw = append(hw, entry)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("Customize"),
		label(rowWidth, "Width")+m.widthIn.View(),
		label(rowHeight, "Height")+m.heightIn.View(),
		label(rowMaterial, "Material")+"‹ "+material+" ›",
		label(rowColor, "Color")+m.colorIn.View(),
		label(rowHardware, "Hardware")+strings.Join(hw, "  "),
	)

	summary := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.RenderDivider(ui.PanelContentWidth(width)),
		m.styles.Title.Render("Order summary"),
		m.summary.View(),
	)

	return m.panelStyle(active, width).Render(form + "\n" + summary + "\n" + m.renderBuildList(width))
}

// maxBuildLines is how many recent build entries the panel lists.
const maxBuildLines = 3

func (m Model) renderBuildList(width int) string {
	inner := ui.PanelContentWidth(width)
	if len(m.builds) == 0 {
		return m.styles.Muted.Render("Build list is empty.")
	}

	header := fmt.Sprintf("Build list: %d item(s) · %s", len(m.builds), customize.FormatPrice(m.buildTotal()))
	lines := []string{m.styles.Bold.Render(ui.Clip(header, inner))}
	start := max(0, len(m.builds)-maxBuildLines)
	for _, p := range m.builds[start:] {
		lines = append(lines, m.styles.Muted.Render(ui.Clip("• "+p.Title+" "+customize.FormatPrice(p.BasePrice), inner)))
	}
	return strings.Join(lines, "\n")
}
