package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/meza/fabric-installer/internal/i18n"
)

func acceptKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp(i18n.T("key.enter"), i18n.T("key.help.accept")),
	)
}

func completeKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp(i18n.T("key.tab"), i18n.T("key.help.complete")),
	)
}

func abortKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp(fmt.Sprintf("%s/%s", i18n.T("key.esc"), i18n.T("key.ctrl_c")), i18n.T("key.help.quit")),
	)
}

// inputKeyMap is the help shown under the game version prompt.
type inputKeyMap struct{}

func (inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{completeKey(), acceptKey(), abortKey()}
}

func (keys inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{keys.ShortHelp()}
}

// listKeyMap translates the list navigation help. Quitting is handled by the
// install model, so the list's own quit bindings are disabled.
func listKeyMap() list.KeyMap {
	keys := list.DefaultKeyMap()
	keys.CursorUp = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", i18n.T("key.help.up")))
	keys.CursorDown = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", i18n.T("key.help.down")))
	keys.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", i18n.T("key.help.page_previous")))
	keys.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", i18n.T("key.help.page_next")))
	keys.Filter = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", i18n.T("key.help.filter")))
	keys.ShowFullHelp = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", i18n.T("key.help.more")))
	keys.CloseFullHelp = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", i18n.T("key.help.close_help")))
	keys.Quit.SetEnabled(false)
	keys.ForceQuit.SetEnabled(false)
	return keys
}
