package styles

import "github.com/charmbracelet/lipgloss"

// Theme contains the composed styles used by the commands.
var Theme = struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	ListBullet lipgloss.Style
	Box        lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary),

	Heading: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText),

	Muted: lipgloss.NewStyle().
		Foreground(ColorTextMuted),

	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText),

	Success: lipgloss.NewStyle().
		Foreground(ColorSuccess),

	Error: lipgloss.NewStyle().
		Foreground(ColorError),

	Warning: lipgloss.NewStyle().
		Foreground(ColorWarning),

	Info: lipgloss.NewStyle().
		Foreground(ColorInfo),

	ListBullet: lipgloss.NewStyle().
		Foreground(ColorPrimary),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1),
}

// RenderState colors a container or unit state.
func RenderState(state string) string {
	switch state {
	case "running", "active":
		return Theme.Success.Render(state)
	case "stopped", "failed", "absent", "inactive":
		return Theme.Error.Render(state)
	case "activating", "reloading":
		return Theme.Warning.Render(state)
	default:
		return Theme.Muted.Render(state)
	}
}

// RenderListItem returns a list item with a bullet.
func RenderListItem(item string) string {
	return Theme.ListBullet.Render(IconBullet) + " " + item
}

func RenderError(msg string) string {
	return Theme.Error.Render(IconError + " " + msg)
}

func RenderSuccess(msg string) string {
	return Theme.Success.Render(IconSuccess + " " + msg)
}

func RenderWarning(msg string) string {
	return Theme.Warning.Render(IconWarning + " " + msg)
}

func RenderInfo(msg string) string {
	return Theme.Info.Render(IconInfo + " " + msg)
}
