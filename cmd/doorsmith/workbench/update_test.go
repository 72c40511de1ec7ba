package workbench

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"doorsmith/cmd/doorsmith/ui"
	"doorsmith/internal/buildlog"
	"doorsmith/internal/catalog"
	"doorsmith/internal/config"
	"doorsmith/internal/configurator"
	"doorsmith/internal/customize"
	"doorsmith/internal/results"
	"doorsmith/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

type stubSearcher struct {
	products []catalog.RawProduct
	err      error
}

func (s stubSearcher) Search(_ context.Context, _ string) ([]catalog.RawProduct, error) {
	return s.products, s.err
}

// blockingSearcher waits until its context is cancelled.
type blockingSearcher struct{}

func (blockingSearcher) Search(ctx context.Context, _ string) ([]catalog.RawProduct, error) {
	<-ctx.Done()
	return nil, &catalog.NetworkError{Err: ctx.Err()}
}

type recordingSink struct {
	mu       sync.Mutex
	payloads []customize.Payload
}

func (r *recordingSink) Emit(_ context.Context, p customize.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	return nil
}

var doorProducts = []catalog.RawProduct{
	{ID: 1, Title: "Oak Door", Description: "Solid oak", Price: price(350)},
	{ID: 2, Title: "Steel Gate", Description: "Galvanized steel", Price: price(120)},
	{ID: 3, Title: "Glass Panel", Description: "Frosted", Price: price(80)},
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	t.Setenv("COLORFGBG", "")
	t.Setenv("DOORSMITH_DARK_MODE", "")
	if opts.Searcher == nil {
		opts.Searcher = stubSearcher{products: doorProducts}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return New(opts)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update must return a workbench.Model")
	return out, cmd
}

// collect runs cmd, flattening batches, and returns the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func searchResults(msgs []tea.Msg) []searchResultMsg {
	var out []searchResultMsg
	for _, msg := range msgs {
		if r, ok := msg.(searchResultMsg); ok {
			out = append(out, r)
		}
	}
	return out
}

// searched returns a model showing the results for query.
func searched(t *testing.T, m Model, query string) Model {
	t.Helper()
	m.search.SetValue(query)
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	got := searchResults(collect(cmd))
	require.Len(t, got, 1)
	m, _ = send(t, m, got[0])
	require.Equal(t, view.KindPopulated, view.Render(m.State()).Kind)
	return m
}

func TestNew_Defaults(t *testing.T) {
	m := newTestModel(t, Options{})

	assert.Equal(t, paneSearch, m.pane)
	assert.Equal(t, results.SortRelevance, m.State().Filter.Sort)
	assert.Equal(t, view.KindIdle, view.Render(m.State()).Kind)
	assert.Equal(t, customize.NoProductSelected, m.State().Summary)
}

func TestUpdate_WindowSize(t *testing.T) {
	m := newTestModel(t, Options{})
	m, cmd := send(t, m, tea.WindowSizeMsg{Width: 150, Height: 45})

	assert.Nil(t, cmd)
	assert.Equal(t, 150, m.termW)
	assert.Equal(t, 45, m.termH)
	_, right := ui.NewLayoutConfig(150, 45).Panes()
	assert.Equal(t, ui.PanelContentWidth(right), m.summary.Width)
}

func TestUpdate_EmptyQueryShowsNotice(t *testing.T) {
	m := newTestModel(t, Options{})
	m.search.SetValue("   ")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, configurator.NoticeEmptyQuery, m.State().Notice)
	assert.False(t, m.State().Results.Pending())
	assert.Equal(t, paneSearch, m.pane)
}

func TestUpdate_SubmitFetchesAndPopulates(t *testing.T) {
	m := newTestModel(t, Options{})
	m.search.SetValue("door")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.State().Results.Pending())
	assert.Equal(t, paneResults, m.pane)
	assert.Equal(t, view.KindLoading, view.Render(m.State()).Kind)

	got := searchResults(collect(cmd))
	require.Len(t, got, 1)
	require.NoError(t, got[0].err)
	assert.Equal(t, uint64(1), got[0].seq)

	m, _ = send(t, m, got[0])
	scr := view.Render(m.State())
	assert.Equal(t, view.KindPopulated, scr.Kind)
	assert.Len(t, scr.Cards, 3)
	assert.Equal(t, catalog.MaterialWood, m.State().Displayed()[0].Material)
}

func TestUpdate_StaleResultIgnored(t *testing.T) {
	m := newTestModel(t, Options{})

	m.search.SetValue("a")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.setPane(paneSearch)
	m.search.SetValue("b")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, uint64(2), m.State().Results.Seq())

	itemsB := []catalog.DisplayItem{{ID: 20, Title: "B door"}}
	itemsA := []catalog.DisplayItem{{ID: 10, Title: "A door"}}

	// B resolves first, then the older A arrives late.
	m, _ = send(t, m, searchResultMsg{seq: 2, items: itemsB})
	m, _ = send(t, m, searchResultMsg{seq: 1, items: itemsA})

	assert.Equal(t, itemsB, m.State().Displayed())
	assert.Equal(t, "b", m.State().Results.Query())
}

func TestFetchCmd_CancelsPrevious(t *testing.T) {
	m := newTestModel(t, Options{Searcher: blockingSearcher{}})

	first := m.fetchCmd(configurator.FetchEffect{Seq: 1, Query: "a"})
	second := m.fetchCmd(configurator.FetchEffect{Seq: 2, Query: "b"})
	require.NotNil(t, second)

	done := make(chan tea.Msg, 1)
	go func() { done <- first() }()

	select {
	case msg := <-done:
		r, ok := msg.(searchResultMsg)
		require.True(t, ok)
		assert.Equal(t, uint64(1), r.seq)
		assert.True(t, errors.Is(r.err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search was not cancelled")
	}

	m.cancel()
}

func TestUpdate_SearchFailureAndRetry(t *testing.T) {
	m := newTestModel(t, Options{Searcher: stubSearcher{err: &catalog.HTTPError{Status: 503}}})
	m.search.SetValue("door")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	got := searchResults(collect(cmd))
	require.Len(t, got, 1)

	m, _ = send(t, m, got[0])
	scr := view.Render(m.State())
	require.Equal(t, view.KindError, scr.Kind)
	assert.True(t, scr.CanRetry)
	assert.Equal(t, view.MessageError, scr.Message)

	m, cmd = send(t, m, keyRunes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.State().Results.Pending())
	assert.Equal(t, uint64(2), m.State().Results.Seq())
	assert.Equal(t, "door", m.State().Results.Query())
}

func TestUpdate_RetryIgnoredWhenNotFailed(t *testing.T) {
	m := searched(t, newTestModel(t, Options{}), "door")
	seq := m.State().Results.Seq()

	m, cmd := send(t, m, keyRunes("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, seq, m.State().Results.Seq())
}

func TestUpdate_FilterAndSortKeys(t *testing.T) {
	m := searched(t, newTestModel(t, Options{}), "door")

	m, _ = send(t, m, keyRunes("f"))
	assert.Equal(t, catalog.MaterialWood, m.State().Filter.Material)
	require.Len(t, m.State().Displayed(), 1)
	assert.Equal(t, "Oak Door", m.State().Displayed()[0].Title)

	m, _ = send(t, m, keyRunes("f"))
	assert.Equal(t, catalog.MaterialMetal, m.State().Filter.Material)

	m.state.Filter.Material = catalog.MaterialUnset
	m, _ = send(t, m, keyRunes("s"))
	assert.Equal(t, results.SortPriceAsc, m.State().Filter.Sort)
	assert.Equal(t, 3, m.State().Displayed()[0].ID)
}

func TestUpdate_CursorClampedAfterFilter(t *testing.T) {
	m := searched(t, newTestModel(t, Options{}), "door")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor)

	m, _ = send(t, m, keyRunes("f"))
	assert.Equal(t, 0, m.cursor)
}

func TestUpdate_PreviewFocusesItem(t *testing.T) {
	m := searched(t, newTestModel(t, Options{}), "door")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, keyRunes("p"))

	require.NotNil(t, m.State().Focus)
	assert.Equal(t, 2, m.State().Focus.ID)
	assert.True(t, strings.HasPrefix(m.State().Summary, "Steel Gate (#2, $120.00)"), m.State().Summary)
}

func TestUpdate_AddToBuildEmits(t *testing.T) {
	sink := &recordingSink{}
	m := searched(t, newTestModel(t, Options{Sink: sink}), "door")
	m.widthIn.SetValue("3")

	m, cmd := send(t, m, keyRunes("a"))
	require.NotNil(t, cmd)
	require.NotNil(t, m.State().LastBuild)
	assert.Equal(t, `Added "Oak Door" to build.`, m.State().Notice)

	var emitted []buildEmittedMsg
	for _, msg := range collect(cmd) {
		if e, ok := msg.(buildEmittedMsg); ok {
			emitted = append(emitted, e)
		}
	}
	require.Len(t, emitted, 1)
	require.NoError(t, emitted[0].err)

	require.Len(t, sink.payloads, 1)
	p := sink.payloads[0]
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, emitted[0].buildID, p.BuildID)
	assert.Equal(t, fixedNow, p.Timestamp)
	require.NotNil(t, p.Dimensions.Width)
	assert.Equal(t, 3.0, *p.Dimensions.Width)

	m, _ = send(t, m, emitted[0])
	assert.NoError(t, m.emitErr)
}

func TestUpdate_AddToBuildUsesCardUnderCursorWithoutIDs(t *testing.T) {
	sink := &recordingSink{}
	products := []catalog.RawProduct{
		{Title: "Oak Door", Description: "Solid oak", Price: price(350)},
		{Title: "Steel Gate", Description: "Galvanized steel", Price: price(120)},
	}
	m := searched(t, newTestModel(t, Options{Searcher: stubSearcher{products: products}, Sink: sink}), "door")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, keyRunes("p"))
	require.NotNil(t, m.State().Focus)
	assert.Equal(t, "Steel Gate", m.State().Focus.Title)

	cards := view.Render(m.State()).Cards
	require.Len(t, cards, 2)
	assert.False(t, cards[0].Focused)
	assert.True(t, cards[1].Focused)

	_, cmd := send(t, m, keyRunes("a"))
	collect(cmd)
	require.Len(t, sink.payloads, 1)
	assert.Equal(t, "Steel Gate", sink.payloads[0].Title)
	assert.Equal(t, 120.0, sink.payloads[0].BasePrice)
}

func TestUpdate_BuildListFromBus(t *testing.T) {
	bus := buildlog.NewBus(4)
	builds, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	defer bus.Close()

	m := newTestModel(t, Options{Builds: builds})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "Build list is empty.")

	require.NoError(t, bus.Emit(context.Background(), customize.Payload{BuildID: "b1", Title: "Oak Door", BasePrice: 350}))
	require.NoError(t, bus.Emit(context.Background(), customize.Payload{BuildID: "b2", Title: "Steel Gate", BasePrice: 120}))

	for _, want := range []string{"b1", "b2"} {
		msg := waitForBuild(builds)()
		got, ok := msg.(buildReceivedMsg)
		require.True(t, ok, "expected buildReceivedMsg, got %T", msg)
		assert.Equal(t, want, got.payload.BuildID)

		var cmd tea.Cmd
		m, cmd = send(t, m, got)
		assert.NotNil(t, cmd, "listener must be re-armed")
	}

	require.Len(t, m.Builds(), 2)
	out := m.View()
	assert.Contains(t, out, "Build list: 2 item(s) · $470.00")
	assert.Contains(t, out, "Steel Gate $120.00")
}

func TestWaitForBuild_StopsWhenClosed(t *testing.T) {
	assert.Nil(t, waitForBuild(nil))

	ch := make(chan customize.Payload)
	close(ch)
	assert.Nil(t, waitForBuild(ch)())
}

func TestUpdate_EmitFailureRecorded(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = send(t, m, buildEmittedMsg{buildID: "x", err: errors.New("disk full")})

	require.Error(t, m.emitErr)
	assert.Contains(t, m.View(), "build log delivery failed")
}

func TestUpdate_CustomizeTypingDebounced(t *testing.T) {
	m := searched(t, newTestModel(t, Options{}), "door")
	m, _ = send(t, m, keyRunes("p"))
	m.setPane(paneCustomize)
	require.Equal(t, rowWidth, m.row)

	m, cmd := send(t, m, keyRunes("4"))
	require.NotNil(t, cmd)
	assert.Equal(t, "4", m.widthIn.Value())
	assert.Nil(t, m.State().Selection.Width, "selection must not change before the debounce fires")

	stale := ui.DebounceMsg{ID: "preview", Tag: m.debounce.Tag() - 1}
	m, _ = send(t, m, stale)
	assert.Nil(t, m.State().Selection.Width)

	m, _ = send(t, m, ui.DebounceMsg{ID: "preview", Tag: m.debounce.Tag()})
	require.NotNil(t, m.State().Selection.Width)
	assert.Equal(t, 4.0, *m.State().Selection.Width)
	assert.Contains(t, m.State().Summary, "Dimensions: 4 ft x N/A")
}

func TestUpdate_MaterialAndHardwareRows(t *testing.T) {
	m := newTestModel(t, Options{})
	m.setPane(paneCustomize)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, rowMaterial, m.row)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "Wood", m.State().Selection.Material)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "", m.State().Selection.Material)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "Composite", m.State().Selection.Material)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, rowHardware, m.row)

	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	m, _ = send(t, m, space)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = send(t, m, space)
	assert.Equal(t, []string{"Handle", "Hinges"}, m.State().Selection.Hardware)

	m, _ = send(t, m, space)
	assert.Equal(t, []string{"Handle"}, m.State().Selection.Hardware)
	assert.Equal(t, customize.NoProductSelected, m.State().Summary)
}

func TestUpdate_PaneCycling(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneResults, m.pane)
	assert.False(t, m.search.Focused())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneCustomize, m.pane)
	assert.True(t, m.widthIn.Focused())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneSearch, m.pane)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, paneCustomize, m.pane)
}

func TestUpdate_ConfigReload(t *testing.T) {
	updates := make(chan *config.Config, 1)
	m := searched(t, newTestModel(t, Options{ConfigUpdates: updates}), "door")

	cfg := config.DefaultConfig()
	cfg.UI.DefaultSort = "name"
	cfg.UI.Theme = "dark"
	cfg.Customize.HardwareOptions = []string{"Knocker"}

	m, cmd := send(t, m, configReloadedMsg{cfg: cfg})
	require.NotNil(t, cmd)

	assert.Equal(t, results.SortName, m.State().Filter.Sort)
	assert.Equal(t, []string{"Knocker"}, m.choices.Hardware)
	assert.True(t, m.styles.Theme.IsDark)
	assert.Equal(t, "Glass Panel", m.State().Displayed()[0].Title)
}

func TestUpdate_QuitCancelsSearch(t *testing.T) {
	m := newTestModel(t, Options{Searcher: blockingSearcher{}})
	m.search.SetValue("door")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.cancel)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestView_Screens(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), view.MessageIdle)

	m = searched(t, m, "door")
	out := m.View()
	for _, want := range []string{"Oak Door", "Steel Gate", "Showing 3 result(s).", "Order summary"} {
		assert.Contains(t, out, want)
	}

	compact, _ := send(t, m, tea.WindowSizeMsg{Width: 70, Height: 24})
	assert.NotEmpty(t, compact.View())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, total, visible int
		start, end             int
	}{
		{0, 3, 5, 0, 3},
		{0, 10, 4, 0, 4},
		{5, 10, 4, 3, 7},
		{9, 10, 4, 6, 10},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.total, tt.visible)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}

func TestPrevMaterial(t *testing.T) {
	mats := []string{"Wood", "Metal"}
	assert.Equal(t, "Metal", prevMaterial(mats, ""))
	assert.Equal(t, "Wood", prevMaterial(mats, "Metal"))
	assert.Equal(t, "", prevMaterial(mats, "Wood"))
	assert.Equal(t, "", prevMaterial(nil, ""))
}
