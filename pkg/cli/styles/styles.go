package styles

import "github.com/charmbracelet/lipgloss"

var darkMode = lipgloss.HasDarkBackground()

var (
	defaultStyle = lipgloss.NewStyle()
	accented     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	secondary    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	faint        = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	bold         = lipgloss.NewStyle().Bold(true)

	accentedLight  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000"))
	secondaryLight = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	faintLight     = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))

	// Status colors read well on both backgrounds, so they have no light variant.
	success = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	warning = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	failure = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	info    = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8"))
	heading = lipgloss.NewStyle().Foreground(lipgloss.Color("#a78bfa")).Bold(true)
)

func Default() lipgloss.Style {
	return defaultStyle
}

func Accented() lipgloss.Style {
	if !darkMode {
		return accentedLight
	}
	return accented
}

func Secondary() lipgloss.Style {
	if !darkMode {
		return secondaryLight
	}
	return secondary
}

func Faint() lipgloss.Style {
	if !darkMode {
		return faintLight
	}
	return faint
}

func Bold() lipgloss.Style {
	return bold
}

func Success() lipgloss.Style {
	return success
}

func Warning() lipgloss.Style {
	return warning
}

func Failure() lipgloss.Style {
	return failure
}

func Info() lipgloss.Style {
	return info
}

func Heading() lipgloss.Style {
	return heading
}
