package tui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loaderOptions = []LoaderOption{
	{Version: "0.15.0", Stable: false},
	{Version: "0.14.21", Stable: true},
	{Version: "0.14.19", Stable: true},
}

func TestNewLoaderModelSelectsFirstStable(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")

	model := NewLoaderModel("1.19.4", loaderOptions, 80)

	assert.Equal(t, 1, model.list.Index())
	assert.Contains(t, model.list.Title, "tui.install.loader.question")
	assert.Contains(t, model.list.Title, "1.19.4")
}

func TestNewLoaderModelWithoutStableBuilds(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")

	model := NewLoaderModel("23w14a", []LoaderOption{{Version: "0.15.0"}}, 80)

	assert.Equal(t, 0, model.list.Index())
}

func TestLoaderModelEnterSelects(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")

	model := NewLoaderModel("1.19.4", loaderOptions, 80)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "0.14.19", model.Value)
	require.NotNil(t, cmd)
	assert.Equal(t, LoaderSelectedMessage{Loader: "0.14.19"}, cmd())
	assert.Contains(t, model.View(), "0.14.19")
}

func TestLoaderModelFiltering(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")

	model := NewLoaderModel("1.19.4", loaderOptions, 80)
	assert.False(t, model.Filtering())

	model, _ = model.Update(typeText("/"))
	assert.True(t, model.Filtering())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, model.Value)
	assert.False(t, model.Filtering())
}

func TestLoaderModelResizes(t *testing.T) {
	model := NewLoaderModel("1.19.4", loaderOptions, 80)
	model, cmd := model.Update(tea.WindowSizeMsg{Width: 40, Height: 20})

	assert.Nil(t, cmd)
	assert.Equal(t, 40, model.list.Width())
}

func TestLoaderModelView(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")

	view := NewLoaderModel("1.19.4", loaderOptions, 80).View()

	assert.Contains(t, view, "0.15.0 cmd.list.unstable_marker")
	assert.Contains(t, view, "❯ 0.14.21")
	assert.Contains(t, view, "0.14.19")
}

func TestLoaderDelegateIgnoresForeignItems(t *testing.T) {
	var buf bytes.Buffer
	model := list.New(nil, loaderDelegate{}, 20, 5)

	loaderDelegate{}.Render(&buf, model, 0, foreignItem{})

	assert.Empty(t, buf.String())
}

type foreignItem struct{}

func (foreignItem) FilterValue() string { return "" }
