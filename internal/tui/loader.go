package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/meza/fabric-installer/internal/i18n"
)

const loaderListHeight = 14

type LoaderSelectedMessage struct {
	Loader string
}

// LoaderOption is one selectable loader build.
type LoaderOption struct {
	Version string
	Stable  bool
}

func (o LoaderOption) FilterValue() string {
	return o.Version
}

type loaderDelegate struct{}

func (loaderDelegate) Height() int                             { return 1 }
func (loaderDelegate) Spacing() int                            { return 0 }
func (loaderDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (loaderDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	option, ok := listItem.(LoaderOption)
	if !ok {
		return
	}

	line := option.Version
	if !option.Stable {
		line += " " + MutedStyle.Render(i18n.T("cmd.list.unstable_marker"))
	}

	if index == m.Index() {
		_, _ = fmt.Fprint(w, SelectedItemStyle.Render("❯ "+line))
		return
	}
	_, _ = fmt.Fprint(w, ItemStyle.Render(line))
}

type LoaderModel struct {
	list  list.Model
	Value string
}

// NewLoaderModel lists the options in the given order with the cursor on the
// first stable build.
func NewLoaderModel(gameVersion string, options []LoaderOption, width int) LoaderModel {
	items := make([]list.Item, 0, len(options))
	cursor := -1
	for i, option := range options {
		items = append(items, option)
		if cursor < 0 && option.Stable {
			cursor = i
		}
	}

	listModel := list.New(items, loaderDelegate{}, width, loaderListHeight)
	listModel.Title = QuestionStyle.Render("? ") + TitleStyle.Render(i18n.T("tui.install.loader.question", i18n.Tvars{
		Data: &i18n.TData{"gameVersion": gameVersion},
	}))
	listModel.SetShowStatusBar(false)
	listModel.SetShowTitle(true)
	listModel.Styles.Title = TitleStyle
	listModel.Styles.TitleBar = TitleStyle
	listModel.Styles.PaginationStyle = PaginationStyle
	listModel.Styles.HelpStyle = HelpStyle
	listModel.KeyMap = listKeyMap()
	if cursor > 0 {
		listModel.Select(cursor)
	}

	return LoaderModel{list: listModel}
}

func (m LoaderModel) Update(msg tea.Msg) (LoaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "enter" && !m.list.SettingFilter() {
			if option, ok := m.list.SelectedItem().(LoaderOption); ok {
				m.Value = option.Version
				return m, m.selected()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m LoaderModel) selected() tea.Cmd {
	value := m.Value
	return func() tea.Msg {
		return LoaderSelectedMessage{Loader: value}
	}
}

// Filtering reports whether keystrokes currently go to the filter input.
func (m LoaderModel) Filtering() bool {
	return m.list.SettingFilter()
}

func (m LoaderModel) View() string {
	if m.Value != "" {
		return fmt.Sprintf("%s %s", m.list.Title, SelectedItemStyle.Render(m.Value))
	}
	return m.list.View()
}
