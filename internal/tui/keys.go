package tui

import "github.com/charmbracelet/bubbles/key"

type balanceKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Increase key.Binding
	Decrease key.Binding
	Reset    key.Binding
	Analyze  key.Binding
	Quit     key.Binding
}

// ShortHelp implements help.KeyMap.
func (k balanceKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Increase, k.Decrease, k.Reset, k.Analyze, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k balanceKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Increase, k.Decrease, k.Reset},
		{k.Analyze, k.Quit},
	}
}

//nolint:gochecknoglobals // Immutable key map shared by every BalanceModel.
var balanceKeys = balanceKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Increase: key.NewBinding(key.WithKeys("right", "+", "l"), key.WithHelp("→/+", "increase")),
	Decrease: key.NewBinding(key.WithKeys("left", "-", "h"), key.WithHelp("←/-", "decrease")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Analyze:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "analyze")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
