package browser

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search      key.Binding
	Type        key.Binding
	Status      key.Binding
	HasFeatures key.Binding
	HasMarket   key.Binding
	SortBy      key.Binding
	SortOrder   key.Binding
	PageSize    key.Binding
	Prev        key.Binding
	Next        key.Binding
	First       key.Binding
	Last        key.Binding
	Up          key.Binding
	Down        key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Type:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		Status:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		HasFeatures: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "features")),
		HasMarket:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "market")),
		SortBy:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort by")),
		SortOrder:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse")),
		PageSize:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
		Prev:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		Next:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		First:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		Last:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Type, k.Status, k.Prev, k.Next, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Type, k.Status, k.HasFeatures, k.HasMarket},
		{k.SortBy, k.SortOrder, k.PageSize},
		{k.Prev, k.Next, k.First, k.Last},
		{k.Up, k.Down, k.Delete, k.Refresh, k.Help, k.Quit},
	}
}
