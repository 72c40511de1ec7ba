package workbench

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	NextPane   key.Binding
	PrevPane   key.Binding
	Submit     key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Preview    key.Binding
	AddToBuild key.Binding
	Filter     key.Binding
	Sort       key.Binding
	Retry      key.Binding
	Search     key.Binding
	Toggle     key.Binding
	Help       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev pane"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next option"),
		),
		Preview: key.NewBinding(
			key.WithKeys("enter", "p"),
			key.WithHelp("p/enter", "preview"),
		),
		AddToBuild: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to build"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "material filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
	}
}

// paneKeys is the help.KeyMap for one pane.
type paneKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (p paneKeys) ShortHelp() []key.Binding  { return p.short }
func (p paneKeys) FullHelp() [][]key.Binding { return p.full }

func (k keyMap) forPane(p pane) paneKeys {
	switch p {
	case paneResults:
		return paneKeys{
			short: []key.Binding{k.Up, k.Down, k.Preview, k.AddToBuild, k.Filter, k.Sort, k.Help},
			full: [][]key.Binding{
				{k.Up, k.Down, k.Preview, k.AddToBuild},
				{k.Filter, k.Sort, k.Retry, k.Search},
				{k.NextPane, k.PrevPane, k.Help, k.Quit},
			},
		}
	case paneCustomize:
		return paneKeys{
			short: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.NextPane, k.Help},
			full: [][]key.Binding{
				{k.Up, k.Down, k.Left, k.Right, k.Toggle},
				{k.NextPane, k.PrevPane, k.Help, k.Quit},
			},
		}
	default:
		return paneKeys{
			short: []key.Binding{k.Submit, k.NextPane, k.Quit},
			full:  [][]key.Binding{{k.Submit, k.NextPane, k.PrevPane, k.Quit}},
		}
	}
}
