// Package workbench is the interactive door configurator: a bubbletea model
// that drives configurator.Update and executes its effects.
package workbench

import (
	"context"
	"time"

	"doorsmith/cmd/doorsmith/ui"
	"doorsmith/internal/buildlog"
	"doorsmith/internal/catalog"
	"doorsmith/internal/config"
	"doorsmith/internal/configurator"
	"doorsmith/internal/customize"
	"doorsmith/internal/logging"
	"doorsmith/internal/results"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// pane is the focused area of the screen.
type pane int

const (
	paneSearch pane = iota
	paneResults
	paneCustomize
	paneCount
)

// formRow is a row of the customization form.
type formRow int

const (
	rowWidth formRow = iota
	rowHeight
	rowMaterial
	rowColor
	rowHardware
	rowCount
)

const emitTimeout = 5 * time.Second

// Searcher runs catalog searches. *catalog.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]catalog.RawProduct, error)
}

// Options wires the model to its collaborators.
type Options struct {
	Searcher      Searcher
	Sink          buildlog.Sink
	Config        *config.Config
	ConfigUpdates <-chan *config.Config
	Builds        <-chan customize.Payload // from the build bus, shown as the build list
	Now           func() time.Time
}

// Model is the bubbletea model for the configurator.
type Model struct {
	opts          Options
	state         configurator.State
	keys          keyMap
	styles        ui.Styles
	choices       customize.Options
	fallbackImage string
	defaultSort   results.SortKey

	search   textinput.Model
	widthIn  textinput.Model
	heightIn textinput.Model
	colorIn  textinput.Model
	spinner  spinner.Model
	summary  viewport.Model
	help     help.Model
	renderer *glamour.TermRenderer
	rendered string

	pane     pane
	row      formRow
	hwCursor int
	cursor   int
	debounce *ui.Debouncer
	cancel   context.CancelFunc

	builds []customize.Payload

	termW, termH int
	emitErr      error
	quitting     bool
}

// Messages produced by the model's commands.
type (
	searchResultMsg struct {
		seq   uint64
		items []catalog.DisplayItem
		err   error
	}
	buildEmittedMsg struct {
		buildID string
		err     error
	}
	configReloadedMsg struct {
		cfg *config.Config
	}
	buildReceivedMsg struct {
		payload customize.Payload
	}
)

// New creates the configurator model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := Model{
		opts:          opts,
		keys:          defaultKeyMap(),
		styles:        ui.NewStyles(ui.ResolveTheme(cfg.UI.Theme)),
		choices:       choicesFrom(cfg),
		fallbackImage: cfg.Catalog.FallbackImage,
		defaultSort:   cfg.GetDefaultSort(),
		state:         configurator.New(results.FilterSortConfig{Sort: cfg.GetDefaultSort()}),
		debounce:      ui.NewDebouncer("preview", cfg.GetPreviewDebounce()),
		help:          help.New(),
		summary:       viewport.New(40, 8),
		termW:         100,
		termH:         30,
	}

	m.search = textinput.New()
	m.search.Placeholder = "Search doors (e.g. oak, steel, glass)..."
	m.search.Prompt = "> "
	m.search.CharLimit = 200
	m.search.Width = 60
	m.search.Focus()

	m.widthIn = newFieldInput("feet", 8)
	m.heightIn = newFieldInput("feet", 8)
	m.colorIn = newFieldInput("e.g. #333333 or walnut", 32)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.applyStyles()
	m.resize(m.termW, m.termH)
	return m
}

func newFieldInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = 24
	return ti
}

func choicesFrom(cfg *config.Config) customize.Options {
	opts := customize.DefaultOptions()
	if len(cfg.Customize.Materials) > 0 {
		opts.Materials = cfg.Customize.Materials
	}
	if len(cfg.Customize.HardwareOptions) > 0 {
		opts.Hardware = cfg.Customize.HardwareOptions
	}
	return opts
}

// Init starts the cursor blink and the config and build listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForConfig(m.opts.ConfigUpdates), waitForBuild(m.opts.Builds))
}

// State returns the current configurator state.
func (m Model) State() configurator.State {
	return m.state
}

func waitForConfig(ch <-chan *config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadedMsg{cfg: cfg}
	}
}

func waitForBuild(ch <-chan customize.Payload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return buildReceivedMsg{payload: p}
	}
}

// Builds returns the payloads received from the build bus, oldest first.
func (m Model) Builds() []customize.Payload {
	return m.builds
}

// buildTotal sums the base prices of the build list.
func (m Model) buildTotal() float64 {
	var total float64
	for _, p := range m.builds {
		total += p.BasePrice
	}
	return total
}

// dispatch runs one configurator transition and turns its effect into a command.
func (m *Model) dispatch(ev configurator.Event) tea.Cmd {
	next, eff := configurator.Update(m.state, ev)
	m.state = next
	m.clampCursor()
	m.refreshSummary()

	switch eff := eff.(type) {
	case configurator.FetchEffect:
		return tea.Batch(m.fetchCmd(eff), m.spinner.Tick)
	case configurator.EmitEffect:
		return m.emitCmd(eff.Payload)
	}
	return nil
}

// fetchCmd cancels any in-flight search and starts a new one.
func (m *Model) fetchCmd(eff configurator.FetchEffect) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	searcher := m.opts.Searcher
	fallback := m.fallbackImage
	logging.UI("Search seq=%d query=%q", eff.Seq, eff.Query)

	return func() tea.Msg {
		if searcher == nil {
			return searchResultMsg{seq: eff.Seq, err: &catalog.NetworkError{Err: context.Canceled}}
		}
		raws, err := searcher.Search(ctx, eff.Query)
		if err != nil {
			return searchResultMsg{seq: eff.Seq, err: err}
		}
		return searchResultMsg{seq: eff.Seq, items: catalog.MapProducts(raws, fallback)}
	}
}

func (m *Model) emitCmd(p customize.Payload) tea.Cmd {
	sink := m.opts.Sink
	if sink == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		return buildEmittedMsg{buildID: p.BuildID, err: sink.Emit(ctx, p)}
	}
}

// currentSelection combines the form inputs with the stored choices.
func (m *Model) currentSelection() customize.Selection {
	return m.state.Selection.
		WithWidth(m.widthIn.Value()).
		WithHeight(m.heightIn.Value()).
		WithColor(m.colorIn.Value())
}

func (m *Model) selectionChanged() tea.Cmd {
	m.debounce.Cancel()
	return m.dispatch(configurator.SelectionChanged{Selection: m.currentSelection()})
}

func (m *Model) clampCursor() {
	n := len(m.state.Displayed())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// cursorItem returns the item under the results cursor.
func (m *Model) cursorItem() (catalog.DisplayItem, bool) {
	items := m.state.Displayed()
	if m.cursor < 0 || m.cursor >= len(items) {
		return catalog.DisplayItem{}, false
	}
	return items[m.cursor], true
}

func (m *Model) setPane(p pane) {
	m.pane = (p + paneCount) % paneCount
	m.focusInputs()
}

func (m *Model) setRow(r formRow) {
	m.row = (r + rowCount) % rowCount
	m.focusInputs()
}

func (m *Model) focusInputs() {
	m.search.Blur()
	m.widthIn.Blur()
	m.heightIn.Blur()
	m.colorIn.Blur()

	switch m.pane {
	case paneSearch:
		m.search.Focus()
	case paneCustomize:
		if in := m.rowInput(); in != nil {
			in.Focus()
		}
	}
}

// rowInput returns the text input for the current row, if it has one.
func (m *Model) rowInput() *textinput.Model {
	switch m.row {
	case rowWidth:
		return &m.widthIn
	case rowHeight:
		return &m.heightIn
	case rowColor:
		return &m.colorIn
	}
	return nil
}

func (m *Model) applyStyles() {
	m.search.PromptStyle = m.styles.Prompt
	m.search.TextStyle = m.styles.UserInput
	for _, in := range []*textinput.Model{&m.widthIn, &m.heightIn, &m.colorIn} {
		in.TextStyle = m.styles.UserInput
		in.PlaceholderStyle = m.styles.Muted
	}
	m.spinner.Style = m.styles.Spinner
}

func (m *Model) resize(w, h int) {
	m.termW, m.termH = w, h
	layout := ui.NewLayoutConfig(w, h)
	_, right := layout.Panes()

	m.search.Width = layout.TerminalWidth - 6
	m.help.Width = layout.TerminalWidth

	m.summary.Width = ui.PanelContentWidth(right)
	summaryH := layout.BodyHeight() - ui.FormHeight - 2*ui.PanelBorderWidth - 2
	if layout.IsCompact {
		summaryH = 6
	}
	if summaryH < 3 {
		summaryH = 3
	}
	m.summary.Height = summaryH

	m.renderer = newRenderer(m.styles.Theme, m.summary.Width)
	m.rendered = ""
	m.refreshSummary()
}

func newRenderer(theme ui.Theme, wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		logging.UIDebug("glamour renderer unavailable: %v", err)
		return nil
	}
	return r
}

// refreshSummary re-renders the summary panel when its markdown changed.
func (m *Model) refreshSummary() {
	md := customize.Markdown(m.state.Focus, m.state.Selection)
	if md == m.rendered {
		return
	}
	m.rendered = md

	out := m.state.Summary
	if m.renderer != nil {
		if r, err := m.renderer.Render(md); err == nil {
			out = r
		}
	}
	m.summary.SetContent(out)
	m.summary.GotoTop()
}

// applyConfig applies a reloaded config to the running UI.
func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	logging.UI("Applying reloaded config (theme=%s)", cfg.UI.Theme)
	m.styles = ui.NewStyles(ui.ResolveTheme(cfg.UI.Theme))
	m.applyStyles()
	m.choices = choicesFrom(cfg)
	if m.hwCursor >= len(m.choices.Hardware) {
		m.hwCursor = 0
	}
	m.fallbackImage = cfg.Catalog.FallbackImage
	m.debounce.SetDuration(cfg.GetPreviewDebounce())
	m.resize(m.termW, m.termH)

	if sort := cfg.GetDefaultSort(); sort != m.defaultSort {
		m.defaultSort = sort
		return m.dispatch(configurator.SortChanged{Sort: sort})
	}
	return nil
}
