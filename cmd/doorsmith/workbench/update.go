package workbench

import (
	"doorsmith/cmd/doorsmith/ui"
	"doorsmith/internal/catalog"
	"doorsmith/internal/configurator"
	"doorsmith/internal/logging"
	"doorsmith/internal/results"
	"doorsmith/internal/view"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchResultMsg:
		if msg.err != nil {
			logging.CatalogError("Search seq=%d failed (%s): %v", msg.seq, catalog.Kind(msg.err), msg.err)
			return m, m.dispatch(configurator.SearchFailed{Seq: msg.seq, Err: msg.err})
		}
		return m, m.dispatch(configurator.SearchSucceeded{Seq: msg.seq, Items: msg.items})

	case buildEmittedMsg:
		m.emitErr = msg.err
		if msg.err != nil {
			logging.BuildError("Build %s not fully delivered: %v", msg.buildID, msg.err)
		}
		return m, nil

	case buildReceivedMsg:
		m.builds = append(m.builds, msg.payload)
		logging.UIDebug("Build list now %d item(s)", len(m.builds))
		return m, waitForBuild(m.opts.Builds)

	case configReloadedMsg:
		cmd := m.applyConfig(msg.cfg)
		return m, tea.Batch(cmd, waitForConfig(m.opts.ConfigUpdates))

	case ui.DebounceMsg:
		if !m.debounce.Ready(msg) {
			return m, nil
		}
		return m, m.dispatch(configurator.SelectionChanged{Selection: m.currentSelection()})

	case spinner.TickMsg:
		if !m.state.Results.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextPane):
		m.setPane(m.pane + 1)
		return m, nil
	case key.Matches(msg, m.keys.PrevPane):
		m.setPane(m.pane - 1)
		return m, nil
	}

	switch m.pane {
	case paneSearch:
		return m.handleSearchKey(msg)
	case paneResults:
		return m.handleResultsKey(msg)
	default:
		return m.handleCustomizeKey(msg)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		cmd := m.dispatch(configurator.SearchSubmitted{Query: m.search.Value()})
		if m.state.Results.Pending() {
			m.cursor = 0
			m.setPane(paneResults)
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Displayed())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Preview):
		if item, ok := m.cursorItem(); ok {
			return m, m.dispatch(configurator.PreviewRequested{Key: item.Key})
		}
	case key.Matches(msg, m.keys.AddToBuild):
		item, ok := m.cursorItem()
		if !ok {
			return m, nil
		}
		// Pending form edits must land before the payload is captured.
		pre := m.selectionChanged()
		cmd := m.dispatch(configurator.AddToBuildRequested{Key: item.Key, At: m.opts.Now()})
		return m, tea.Batch(pre, cmd)
	case key.Matches(msg, m.keys.Filter):
		return m, m.dispatch(configurator.FilterChanged{Material: results.NextMaterial(m.state.Filter.Material)})
	case key.Matches(msg, m.keys.Sort):
		return m, m.dispatch(configurator.SortChanged{Sort: results.NextSortKey(m.state.Filter.Sort)})
	case key.Matches(msg, m.keys.Retry):
		if view.Render(m.state).CanRetry {
			return m, m.dispatch(configurator.RetryRequested{})
		}
	case key.Matches(msg, m.keys.Search):
		m.setPane(paneSearch)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleCustomizeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Arrow keys always move between rows; letters go to text fields.
	switch msg.Type {
	case tea.KeyUp:
		m.setRow(m.row - 1)
		return m, nil
	case tea.KeyDown:
		m.setRow(m.row + 1)
		return m, nil
	}

	if in := m.rowInput(); in != nil {
		before := in.Value()
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		if in.Value() != before {
			return m, tea.Batch(cmd, m.debounce.Trigger())
		}
		return m, cmd
	}

	switch m.row {
	case rowMaterial:
		switch {
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Toggle):
			m.state.Selection = m.state.Selection.WithMaterial(m.choices.NextMaterial(m.state.Selection.Material))
			return m, m.selectionChanged()
		case key.Matches(msg, m.keys.Left):
			m.state.Selection = m.state.Selection.WithMaterial(prevMaterial(m.choices.Materials, m.state.Selection.Material))
			return m, m.selectionChanged()
		}
	case rowHardware:
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.hwCursor > 0 {
				m.hwCursor--
			}
		case key.Matches(msg, m.keys.Right):
			if m.hwCursor < len(m.choices.Hardware)-1 {
				m.hwCursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if m.hwCursor < len(m.choices.Hardware) {
				m.state.Selection = m.state.Selection.ToggleHardware(m.choices.Hardware[m.hwCursor])
				return m, m.selectionChanged()
			}
		}
	}

	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// prevMaterial steps backwards through the offered materials, with "" (unset)
// before the first one.
func prevMaterial(materials []string, current string) string {
	if current == "" {
		if len(materials) == 0 {
			return ""
		}
		return materials[len(materials)-1]
	}
	for i, mat := range materials {
		if mat == current {
			if i == 0 {
				return ""
			}
			return materials[i-1]
		}
	}
	return ""
}

// updateInputs forwards non-key messages (cursor blink) to the focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.pane {
	case paneSearch:
		m.search, cmd = m.search.Update(msg)
	case paneCustomize:
		if in := m.rowInput(); in != nil {
			*in, cmd = in.Update(msg)
		}
	}
	return m, cmd
}
