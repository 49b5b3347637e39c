package menu

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/videohub/internal/ui"
	"github.com/muurk/videohub/internal/version"
)

// AppName is shown in the container header
const AppName = "VIDEOHUB CONTROL"

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			MarginBottom(1)

	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(ui.TextColor)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(ui.SuccessColor).
				Bold(true)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(ui.MutedColor).
				Italic(true)

	StatusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.PrimaryColor).
			Padding(0, 1).
			MarginBottom(1)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Width(9)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	ErrorLineStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor).
			Bold(true)
)

// RenderMenuItem renders a menu entry with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render(text)
}

func buildHeader() string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)
	right := lipgloss.NewStyle().
		Foreground(ui.MutedColor).
		Render(version.Name)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderContainer wraps a screen in the full-terminal frame: header,
// content and a footer with the help line.
func RenderContainer(content, footer string, width, height int) string {
	width = max(width, ui.MinTerminalWidth)
	height = max(height, 10)

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(width-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(ui.PrimaryColor).
		Foreground(ui.MutedColor).
		Width(width-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(buildHeader()),
		lipgloss.NewStyle().Width(width-4).Padding(0, 1).Render(content),
		footerStyle.Render(footer),
	)

	framed := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ui.PrimaryColor).
		Width(width - 2).
		Height(height - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, framed)
}

// contentHeight is the room left for a screen's body inside the frame
func contentHeight(height int) int {
	return max(height-8, 5)
}
