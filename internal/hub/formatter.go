package hub

import (
	"fmt"
	"sort"
	"strings"
)

// LabelRows is the number of rows per label column
const LabelRows = 10

// Summary returns a one-line summary of a state
func (s *State) Summary() string {
	return fmt.Sprintf("%d inputs, %d outputs, %d routes",
		len(s.InputLabels), len(s.OutputLabels), len(s.Routing))
}

// LabelColumns returns how many columns to print n labels in: 2 for a
// small router (up to 20 labels), 4 otherwise.
func LabelColumns(n int) int {
	if n <= 20 {
		return 2
	}
	return 4
}

// FormatLabels prints labels in columns of LabelRows rows with 1-based
// numbers. title is "Inputs" or "Outputs".
func FormatLabels(title string, labels map[int]string) string {
	var b strings.Builder

	idx := make([]int, 0, len(labels))
	width := 0
	for i, l := range labels {
		idx = append(idx, i)
		width = max(width, len(l))
	}
	sort.Ints(idx)

	cols := LabelColumns(len(idx))
	rows := max(LabelRows, (len(idx)+cols-1)/cols)
	colWidth := width + 6

	header := "InpNr InpName"
	if strings.HasPrefix(strings.ToLower(title), "out") {
		header = "OutpNr OutpName"
	}
	colWidth = max(colWidth, len(header)+1)

	fmt.Fprintf(&b, "%s:\n", title)
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&b, "%-*s", colWidth, header)
	}
	b.WriteString("\n")
	for c := 0; c < cols; c++ {
		b.WriteString(strings.Repeat("-", colWidth-1) + " ")
	}
	b.WriteString("\n")

	for r := 0; r < rows; r++ {
		var line strings.Builder
		for c := 0; c < cols; c++ {
			k := r + c*rows
			if k >= len(idx) {
				break
			}
			cell := fmt.Sprintf("%d %s", Ordinal(idx[k]), labels[idx[k]])
			fmt.Fprintf(&line, "%-*s", colWidth, cell)
		}
		if line.Len() == 0 {
			break
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}

	return b.String()
}

// FormatRouting prints the routing table with output and input labels
func (s *State) FormatRouting() string {
	var b strings.Builder

	outWidth, inWidth := 8, 7
	for _, l := range s.OutputLabels {
		outWidth = max(outWidth, len(l))
	}
	for _, l := range s.InputLabels {
		inWidth = max(inWidth, len(l))
	}

	b.WriteString("Routing:\n")
	fmt.Fprintf(&b, "%-7s %-*s  %-6s %s\n", "OutpNr", outWidth, "OutpName", "InpNr", "InpName")
	b.WriteString(strings.Repeat("-", 7+1+outWidth+2+6+1+inWidth) + "\n")

	for _, out := range s.SortedOutputs() {
		in := s.Routing[out]
		fmt.Fprintf(&b, "%-7d %-*s  %-6d %s\n",
			Ordinal(out), outWidth, s.OutputLabel(out), Ordinal(in), s.InputLabel(in))
	}

	return b.String()
}

// FormatCompact returns labels and routing as a short listing
func (s *State) FormatCompact() string {
	var b strings.Builder
	if s.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", s.Description)
	}
	fmt.Fprintf(&b, "%s\n", s.Summary())
	for _, out := range s.SortedOutputs() {
		in := s.Routing[out]
		fmt.Fprintf(&b, "  %d <- %d  (%s <- %s)\n",
			Ordinal(out), Ordinal(in), s.OutputLabel(out), s.InputLabel(in))
	}
	return b.String()
}

// FormatDetailed returns the full text rendering: labels then routing
func (s *State) FormatDetailed() string {
	var b strings.Builder
	if s.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n\n", s.Description)
	}
	b.WriteString(FormatLabels("Inputs", s.InputLabels))
	b.WriteString("\n")
	b.WriteString(FormatLabels("Outputs", s.OutputLabels))
	b.WriteString("\n")
	b.WriteString(s.FormatRouting())
	return b.String()
}

// FormatDeviceInfo renders the preamble's device info lines
func FormatDeviceInfo(preamble string) string {
	var b strings.Builder
	b.WriteString("=== Device Information ===\n")
	lines := Lines(preamble)
	if len(lines) == 0 {
		b.WriteString("(no device information)\n")
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatLocks renders output locks, skipping unlocked outputs
func FormatLocks(locks map[int]string, s *State) string {
	var b strings.Builder
	b.WriteString("=== Output Locks ===\n")

	outs := make([]int, 0, len(locks))
	for out, st := range locks {
		if st != LockUnlocked {
			outs = append(outs, out)
		}
	}
	sort.Ints(outs)

	if len(outs) == 0 {
		b.WriteString("(all outputs unlocked)\n")
		return b.String()
	}
	for _, out := range outs {
		state := "locked"
		if locks[out] == LockOwned {
			state = "locked by this client"
		}
		fmt.Fprintf(&b, "%d %s: %s\n", Ordinal(out), s.OutputLabel(out), state)
	}
	return b.String()
}

// FormatComparison renders a comparison table. Differing rows are marked
// with '*'.
func FormatComparison(rows []RouteComparison) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %-7s %-20s %-26s %-26s\n", "OutpNr", "OutpName", "Preset", "Hub")
	b.WriteString("  " + strings.Repeat("-", 7+1+20+1+26+1+26) + "\n")

	for _, r := range rows {
		mark := " "
		if r.IsDifferent {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %-7d %-20s %-26s %-26s\n",
			mark, Ordinal(r.Output), r.OutputLabel,
			formatInput(r.PresetInput, r.PresetInputLabel),
			formatInput(r.HubInput, r.HubInputLabel))
	}

	fmt.Fprintf(&b, "\n%d of %d outputs differ\n", CountDifferences(rows), len(rows))
	return b.String()
}

// FormatOutcome renders one apply outcome as operator feedback
func FormatOutcome(o RouteOutcome) string {
	line := fmt.Sprintf("Output %d (%s) <- Input %d (%s)",
		Ordinal(o.Output), o.OutputLabel, Ordinal(o.Input), o.InputLabel)
	if !o.Sent {
		if o.Err == nil {
			return line + ": FAILED"
		}
		return line + ": FAILED - " + GetShortErrorMessage(o.Err)
	}
	return line
}

func formatInput(idx int, label string) string {
	if idx == NoInput {
		return NoneLabel
	}
	return fmt.Sprintf("%d %s", Ordinal(idx), label)
}
