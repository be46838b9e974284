package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/meza/fabric-installer/internal/i18n"
)

type GameVersionSelectedMessage struct {
	GameVersion string
}

// GameVersionModel asks for a Minecraft version, suggesting the published ones
// and defaulting to the latest release.
type GameVersionModel struct {
	input textinput.Model
	help  help.Model
	known map[string]struct{}
	err   error
	Value string
}

func NewGameVersionModel(latest string, versions []string) GameVersionModel {
	input := textinput.New()
	input.Prompt = QuestionStyle.Render("? ") + TitleStyle.Render(i18n.T("tui.install.game_version.question")) + " "
	input.Placeholder = latest
	input.PlaceholderStyle = PlaceholderStyle
	input.ShowSuggestions = true
	input.SetSuggestions(versions)
	input.Focus()

	known := make(map[string]struct{}, len(versions))
	for _, version := range versions {
		known[version] = struct{}{}
	}

	return GameVersionModel{
		input: input,
		help:  help.New(),
		known: known,
	}
}

func (m GameVersionModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m GameVersionModel) Update(msg tea.Msg) (GameVersionModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			value := m.input.Value()
			if value == "" {
				value = m.input.Placeholder
			}
			if err := m.validate(value); err != nil {
				m.err = err
				return m, nil
			}
			m.Value = value
			m.input.Blur()
			return m, m.selected()
		case "tab":
			if m.input.Value() == "" && m.input.Placeholder != "" {
				m.input.SetValue(m.input.Placeholder)
				m.input.CursorEnd()
				return m, nil
			}
		default:
			m.err = nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// validate only rejects unknown versions when the manifest could be loaded.
func (m GameVersionModel) validate(value string) error {
	if value == "" {
		return errors.New(i18n.T("tui.install.game_version.empty"))
	}
	if len(m.known) == 0 {
		return nil
	}
	if _, ok := m.known[value]; !ok {
		return errors.New(i18n.T("tui.install.game_version.invalid", i18n.Tvars{
			Data: &i18n.TData{"version": value},
		}))
	}
	return nil
}

func (m GameVersionModel) selected() tea.Cmd {
	value := m.Value
	return func() tea.Msg {
		return GameVersionSelectedMessage{GameVersion: value}
	}
}

func (m GameVersionModel) View() string {
	if m.Value != "" {
		return fmt.Sprintf("%s%s", m.input.Prompt, SelectedItemStyle.Render(m.Value))
	}

	errorString := ""
	if m.err != nil {
		errorString = ErrorStyle.Render(" <- " + m.err.Error())
	}

	return fmt.Sprintf("%s%s\n\n%s", m.input.View(), errorString, m.help.View(inputKeyMap{}))
}

func (m GameVersionModel) Err() error {
	return m.err
}
