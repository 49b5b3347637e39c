package menu

import "github.com/charmbracelet/bubbles/key"

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Select, k.Quit}}
}

type inputKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

func (k inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Cancel}}
}

type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Yes, k.No}}
}

type resultKeyMap struct {
	Scroll key.Binding
	Back   key.Binding
}

func (k resultKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.Back}
}

func (k resultKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Scroll, k.Back}}
}

type keyMaps struct {
	Menu    menuKeyMap
	Input   inputKeyMap
	Confirm confirmKeyMap
	Result  resultKeyMap
}

func newKeyMaps() keyMaps {
	return keyMaps{
		Menu: menuKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Select: key.NewBinding(
				key.WithKeys("enter", " "),
				key.WithHelp("enter", "select"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc"),
				key.WithHelp("q", "quit"),
			),
		},
		Input: inputKeyMap{
			Submit: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "confirm"),
			),
			Cancel: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "cancel"),
			),
		},
		Confirm: confirmKeyMap{
			Yes: key.NewBinding(
				key.WithKeys("y", "Y"),
				key.WithHelp("y", "yes"),
			),
			No: key.NewBinding(
				key.WithKeys("n", "N", "esc"),
				key.WithHelp("n/esc", "no"),
			),
		},
		Result: resultKeyMap{
			Scroll: key.NewBinding(
				key.WithKeys("up", "down", "pgup", "pgdown"),
				key.WithHelp("↑/↓", "scroll"),
			),
			Back: key.NewBinding(
				key.WithKeys("enter", "esc", "q"),
				key.WithHelp("enter/esc", "back to menu"),
			),
		},
	}
}
