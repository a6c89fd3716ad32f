package tektris

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stfacc/tektris/config"
	"github.com/stfacc/tektris/game"
)

type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Rotate   key.Binding
	SoftDrop key.Binding
	HardDrop key.Binding
	Pause    key.Binding
	Restart  key.Binding
	Quit     key.Binding

	Help      key.Binding
	Debug     key.Binding
	ForceQuit key.Binding
}

func NewKeyMap(k config.Keys) KeyMap {
	bind := func(keys []string, desc string) key.Binding {
		return key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(helpKeys(keys), desc),
		)
	}

	return KeyMap{
		Left:     bind(k.Left, "move left"),
		Right:    bind(k.Right, "move right"),
		Rotate:   bind(k.Rotate, "rotate"),
		SoftDrop: bind(k.SoftDrop, "soft drop"),
		HardDrop: bind(k.HardDrop, "hard drop"),
		Pause:    bind(k.Pause, "pause"),
		Restart:  bind(k.Restart, "restart"),
		Quit:     bind(k.Quit, "quit"),

		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Debug:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "debug")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

var keySymbols = map[string]string{
	" ":     "space",
	"left":  "←",
	"right": "→",
	"up":    "↑",
	"down":  "↓",
}

func helpKeys(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		if sym, ok := keySymbols[k]; ok {
			k = sym
		}
		names[i] = k
	}
	return strings.Join(names, "/")
}

// Action maps a key name to a game action. Keys without a binding are
// AnyKey, which only matters while the game waits to start.
func (k KeyMap) Action(name string) game.Action {
	bindings := []struct {
		key.Binding
		game.Action
	}{
		{k.Left, game.Left},
		{k.Right, game.Right},
		{k.Rotate, game.Rotate},
		{k.SoftDrop, game.SoftDrop},
		{k.HardDrop, game.HardDrop},
		{k.Pause, game.Pause},
		{k.Restart, game.Restart},
		{k.Quit, game.Quit},
	}
	for _, b := range bindings {
		for _, bk := range b.Keys() {
			if bk == name {
				return b.Action
			}
		}
	}
	return game.AnyKey
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Rotate, k.HardDrop, k.Pause, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Rotate},
		{k.SoftDrop, k.HardDrop},
		{k.Pause, k.Restart, k.Quit},
		{k.Help, k.Debug},
	}
}
