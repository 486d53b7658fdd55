package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Right      key.Binding
	Left       key.Binding
	SwitchView key.Binding
	Mark       key.Binding
	MarkDups   key.Binding
	ClearMarks key.Binding
	Delete     key.Binding
	Explain    key.Binding
	Scan       key.Binding
	Sort       key.Binding
	Hidden     key.Binding
	Search     key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "expand"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "enter"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "backspace"),
			key.WithHelp("←", "up"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "tree/duplicates"),
		),
		Mark: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "mark copy"),
		),
		MarkDups: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "mark all but first"),
		),
		ClearMarks: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear marks"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete marked"),
		),
		Explain: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "explain group"),
		),
		Scan: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scan"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "order"),
		),
		Hidden: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hidden"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapFrom applies user overrides such as {"scan": "S,F5"} to the
// defaults. Unknown action names are ignored.
func KeyMapFrom(overrides map[string]string) KeyMap {
	keys := DefaultKeyMap()
	for action, value := range overrides {
		binding := keys.binding(strings.ToLower(strings.TrimSpace(action)))
		if binding == nil {
			continue
		}
		chosen := splitKeys(value)
		if len(chosen) == 0 {
			continue
		}
		help := binding.Help()
		binding.SetKeys(chosen...)
		binding.SetHelp(strings.Join(chosen, "/"), help.Desc)
	}
	return keys
}

func (keys *KeyMap) binding(action string) *key.Binding {
	switch action {
	case "up":
		return &keys.Up
	case "down":
		return &keys.Down
	case "enter", "expand":
		return &keys.Enter
	case "right":
		return &keys.Right
	case "left", "back":
		return &keys.Left
	case "switch", "view":
		return &keys.SwitchView
	case "mark", "select":
		return &keys.Mark
	case "markdups", "mark_duplicates":
		return &keys.MarkDups
	case "clear", "clearmarks":
		return &keys.ClearMarks
	case "delete":
		return &keys.Delete
	case "explain":
		return &keys.Explain
	case "scan":
		return &keys.Scan
	case "sort":
		return &keys.Sort
	case "hidden":
		return &keys.Hidden
	case "search":
		return &keys.Search
	case "confirm":
		return &keys.Confirm
	case "cancel":
		return &keys.Cancel
	case "help":
		return &keys.Help
	case "quit":
		return &keys.Quit
	default:
		return nil
	}
}

func splitKeys(value string) []string {
	parts := strings.Split(value, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

func (keys KeyMap) all() []key.Binding {
	return []key.Binding{
		keys.Up,
		keys.Down,
		keys.Enter,
		keys.Right,
		keys.Left,
		keys.SwitchView,
		keys.Mark,
		keys.MarkDups,
		keys.ClearMarks,
		keys.Delete,
		keys.Explain,
		keys.Scan,
		keys.Sort,
		keys.Hidden,
		keys.Search,
		keys.Confirm,
		keys.Cancel,
		keys.Help,
		keys.Quit,
	}
}
