// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for panel sizing
const (
	// Split pane dimensions
	SplitPaneLeftRatio = 0.55
	SplitPaneDivider   = 1

	// Panel borders and spacing
	PanelBorderWidth = 1
	PanelPaddingH    = 1
	PanelPaddingV    = 0

	// Cards
	CardHeight         = 7 // border + title + meta + image + description
	CardDescriptionMax = 2

	// Control areas
	HeaderHeight    = 1
	SearchHeight    = 2
	StatusBarHeight = 1
	HelpPaneHeight  = 1
	FormHeight      = 8

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 20
	CompactModeWidth      = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size.
// Sizes below the minimum are clamped.
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// BodyHeight is the height left for the results and customize panes.
func (l LayoutConfig) BodyHeight() int {
	return l.TerminalHeight - HeaderHeight - SearchHeight - StatusBarHeight - HelpPaneHeight
}

// Panes returns the results and customize pane widths. Compact terminals
// stack the panes, so both get the full width.
func (l LayoutConfig) Panes() (results, customize int) {
	if l.IsCompact {
		return l.TerminalWidth, l.TerminalWidth
	}
	return SplitPaneWidths(l.TerminalWidth)
}

// VisibleCards is how many cards fit in the results pane.
func (l LayoutConfig) VisibleCards() int {
	h := l.BodyHeight()
	if l.IsCompact {
		h -= FormHeight + 2*PanelBorderWidth
	}
	n := PanelContentHeight(h) / CardHeight
	if n < 1 {
		return 1
	}
	return n
}

// SplitPaneWidths calculates left and right pane widths for a split view
func SplitPaneWidths(totalWidth int) (leftWidth, rightWidth int) {
	leftWidth = int(float64(totalWidth) * SplitPaneLeftRatio)
	rightWidth = totalWidth - leftWidth - SplitPaneDivider
	return
}

// PanelContentWidth returns the content width inside a bordered panel
func PanelContentWidth(panelWidth int) int {
	return panelWidth - (PanelBorderWidth * 2) - (PanelPaddingH * 2)
}

// PanelContentHeight returns the content height inside a bordered panel
func PanelContentHeight(panelHeight int) int {
	return panelHeight - (PanelBorderWidth * 2) - (PanelPaddingV * 2)
}
