package ui

import (
	"fmt"
	"strings"

	"github.com/muurk/videohub/internal/hub"
)

// RenderComparison renders comparison rows as a colored table: matching
// outputs in green, differing outputs in red and marked with '*'.
func RenderComparison(rows []hub.RouteComparison) string {
	var b strings.Builder

	header := fmt.Sprintf("  %-7s %-20s %-26s %-26s", "OutpNr", "OutpName", "Preset", "Hub")
	b.WriteString(TableHeaderStyle.Render(header) + "\n")
	b.WriteString(TableHeaderStyle.Render("  "+strings.Repeat("-", len(header)-2)) + "\n")

	for _, r := range rows {
		mark, style := " ", MatchStyle
		if r.IsDifferent {
			mark, style = "*", DiffStyle
		}
		line := fmt.Sprintf("%s %-7d %-20s %-26s %-26s",
			mark, hub.Ordinal(r.Output), truncate(r.OutputLabel, 20),
			truncate(inputCell(r.PresetInput, r.PresetInputLabel), 26),
			truncate(inputCell(r.HubInput, r.HubInputLabel), 26))
		b.WriteString(style.Render(strings.TrimRight(line, " ")) + "\n")
	}

	diffs := hub.CountDifferences(rows)
	summary := fmt.Sprintf("%d of %d outputs differ", diffs, len(rows))
	b.WriteString("\n")
	if diffs == 0 {
		b.WriteString(MatchStyle.Render(SuccessMarker+" Hub matches preset") + "\n")
	} else {
		b.WriteString(DiffStyle.Render(summary) + "\n")
	}
	return b.String()
}

func inputCell(idx int, label string) string {
	if idx == hub.NoInput {
		return hub.NoneLabel
	}
	return fmt.Sprintf("%d %s", hub.Ordinal(idx), label)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
