package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box with the given points and asks a yes/no
// question on in. Only "y" or "yes" (any case) confirms; anything else,
// including EOF, declines.
func Confirm(in io.Reader, out io.Writer, title string, points []string, question string) bool {
	lines := []string{
		"",
		WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)),
		"",
	}
	for _, p := range points {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+p))
	}
	lines = append(lines, "")

	_, _ = fmt.Fprintln(out, boxStyle(lipgloss.DoubleBorder(), WarningColor, GetTerminalWidth()).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprintln(out)

	if !Ask(in, out, question) {
		_, _ = fmt.Fprintln(out, NoteStyle.Render("  Operation cancelled."))
		_, _ = fmt.Fprintln(out)
		return false
	}
	return true
}

// Ask prints question followed by "[y/N]" and reads one line from in
func Ask(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprint(out, WarningTitleStyle.Render(question+" [y/N]: "))

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ConfirmOverwrite asks before replacing an existing preset file
func ConfirmOverwrite(in io.Reader, out io.Writer, path string) bool {
	return Confirm(in, out, "PRESET EXISTS",
		[]string{"A preset already exists at " + path, "Its routing and labels will be replaced"},
		"Overwrite it?")
}

// ConfirmDelete asks before deleting a preset file
func ConfirmDelete(in io.Reader, out io.Writer, name string) bool {
	return Confirm(in, out, "DELETE PRESET",
		[]string{"Preset " + name + " will be removed from disk"},
		"Delete it?")
}

// ConfirmApply asks before rerouting a hub
func ConfirmApply(in io.Reader, out io.Writer, presetName, address string, routes int) bool {
	return Confirm(in, out, "APPLY PRESET",
		[]string{
			fmt.Sprintf("%d outputs on %s will be rerouted to match %s", routes, address, presetName),
			"Routes already on air will switch immediately",
		},
		"Apply it?")
}
