package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/meza/fabric-installer/internal/i18n"
)

// LoaderFetcher returns the loader builds published for a game version, newest first.
type LoaderFetcher func(ctx context.Context, gameVersion string) ([]LoaderOption, error)

// InstallSelection is what the prompts settled on. Done is false when the
// user left before answering everything.
type InstallSelection struct {
	GameVersion string
	Loader      string
	Done        bool
}

type installStep int

const (
	stepGameVersion installStep = iota
	stepLoading
	stepLoader
	stepDone
)

type loadersLoadedMessage struct {
	options []LoaderOption
	err     error
}

// InstallModel asks for whatever part of the game version and loader pair
// was not given on the command line.
type InstallModel struct {
	ctx          context.Context
	step         installStep
	gameVersion  GameVersionModel
	loader       LoaderModel
	fetchLoaders LoaderFetcher
	presetLoader string
	width        int
	err          error
	Selection    InstallSelection
}

func NewInstallModel(ctx context.Context, preset InstallSelection, latest string, versions []string, fetch LoaderFetcher, width int) InstallModel {
	model := InstallModel{
		ctx:          ctx,
		step:         stepGameVersion,
		gameVersion:  NewGameVersionModel(latest, versions),
		fetchLoaders: fetch,
		presetLoader: preset.Loader,
		width:        width,
		Selection:    InstallSelection{GameVersion: preset.GameVersion},
	}
	if preset.GameVersion != "" {
		model.step = stepLoading
	}
	return model
}

func (m InstallModel) Init() tea.Cmd {
	if m.step == stepLoading {
		return m.loadLoaders(m.Selection.GameVersion)
	}
	return m.gameVersion.Init()
}

func (m InstallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.step != stepLoader || !m.loader.Filtering() {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case GameVersionSelectedMessage:
		m.Selection.GameVersion = msg.GameVersion
		if m.presetLoader != "" {
			return m.finish(m.presetLoader)
		}
		m.step = stepLoading
		return m, m.loadLoaders(msg.GameVersion)

	case loadersLoadedMessage:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if m.presetLoader != "" {
			return m.finish(m.presetLoader)
		}
		if len(msg.options) == 0 {
			return m.finish("")
		}
		m.loader = NewLoaderModel(m.Selection.GameVersion, msg.options, m.width)
		m.step = stepLoader
		return m, nil

	case LoaderSelectedMessage:
		return m.finish(msg.Loader)
	}

	var cmd tea.Cmd
	switch m.step {
	case stepGameVersion:
		m.gameVersion, cmd = m.gameVersion.Update(msg)
	case stepLoader:
		m.loader, cmd = m.loader.Update(msg)
	}
	return m, cmd
}

// finish records the loader. An empty loader leaves the choice to the
// installer's newest stable build rule.
func (m InstallModel) finish(loader string) (tea.Model, tea.Cmd) {
	m.Selection.Loader = loader
	m.Selection.Done = true
	m.step = stepDone
	return m, tea.Quit
}

func (m InstallModel) loadLoaders(gameVersion string) tea.Cmd {
	ctx := m.ctx
	fetch := m.fetchLoaders
	return func() tea.Msg {
		options, err := fetch(ctx, gameVersion)
		return loadersLoadedMessage{options: options, err: err}
	}
}

func (m InstallModel) View() string {
	var sb strings.Builder
	switch m.step {
	case stepGameVersion:
		sb.WriteString(m.gameVersion.View())
	case stepLoading:
		sb.WriteString(MutedStyle.Render(i18n.T("tui.install.loading", i18n.Tvars{
			Data: &i18n.TData{"gameVersion": m.Selection.GameVersion},
		})))
	case stepLoader:
		sb.WriteString(m.loader.View())
	case stepDone:
		sb.WriteString(QuestionStyle.Render("? ") + TitleStyle.Render(i18n.T("tui.install.summary")) + " ")
		sb.WriteString(SelectedItemStyle.Render(m.Selection.GameVersion))
		if m.Selection.Loader != "" {
			sb.WriteString(" / ")
			sb.WriteString(SelectedItemStyle.Render(m.Selection.Loader))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// Err is the loader fetch failure that ended the prompt, if any.
func (m InstallModel) Err() error {
	return m.err
}
