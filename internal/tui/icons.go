// Package tui holds the terminal presentation of the installer: styles, TTY
// detection and the interactive install prompts.
package tui

func SuccessIcon(colorize bool) string {
	icon := "✔"
	if colorize {
		return QuestionStyle.Render(icon)
	}
	return icon
}

func WarningIcon(colorize bool) string {
	icon := "!"
	if colorize {
		return WarningStyle.Render(icon)
	}
	return icon
}

// Muted renders secondary text, such as the unstable marker of a list entry.
func Muted(text string, colorize bool) string {
	if colorize {
		return MutedStyle.Render(text)
	}
	return text
}

func Title(text string, colorize bool) string {
	if colorize {
		return TitleStyle.Bold(true).Render(text)
	}
	return text
}
