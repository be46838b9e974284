package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	charmterm "github.com/charmbracelet/x/term"
	"golang.org/x/term"
)

const defaultWidth = 80

type fdReader interface {
	Fd() uintptr
}

type fdWriter interface {
	Fd() uintptr
}

var isTerminalFunc = term.IsTerminal
var getSizeFunc = charmterm.GetSize

// SetIsTerminalFuncForTesting overrides the terminal detection and returns a restore function.
func SetIsTerminalFuncForTesting(fn func(int) bool) func() {
	previous := isTerminalFunc
	isTerminalFunc = fn
	return func() {
		isTerminalFunc = previous
	}
}

// ShouldUseTUI reports whether prompts may be shown: both ends must be a terminal.
func ShouldUseTUI(quiet bool, in io.Reader, out io.Writer) bool {
	if quiet {
		return false
	}
	return IsTerminalReader(in) && IsTerminalWriter(out)
}

func IsTerminalReader(reader io.Reader) bool {
	if r, ok := reader.(fdReader); ok {
		return isTerminalFunc(int(r.Fd()))
	}
	return false
}

func IsTerminalWriter(writer io.Writer) bool {
	if w, ok := writer.(fdWriter); ok {
		return isTerminalFunc(int(w.Fd()))
	}
	return false
}

// Width returns the column count of the terminal behind writer, or 80.
func Width(writer io.Writer) int {
	w, ok := writer.(fdWriter)
	if !ok {
		return defaultWidth
	}
	width, _, err := getSizeFunc(w.Fd())
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// ProgramOptions wires the program to the command's streams and disables the
// renderer when either side is not a terminal.
func ProgramOptions(in io.Reader, out io.Writer) []tea.ProgramOption {
	options := []tea.ProgramOption{
		tea.WithInput(in),
		tea.WithOutput(out),
	}

	if !IsTerminalReader(in) || !IsTerminalWriter(out) {
		options = append(options, tea.WithoutRenderer())
	}

	return options
}
