package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/videohub/internal/hub"
)

// ApplyProgress tracks the route directives of one apply: a progress bar
// plus one line per output.
type ApplyProgress struct {
	Total    int
	Outcomes []hub.RouteOutcome
	Width    int
	bar      progress.Model
}

// NewApplyProgress creates a tracker for total route directives
func NewApplyProgress(total int) *ApplyProgress {
	p := &ApplyProgress{Total: total}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the render width and resizes the bar
func (p *ApplyProgress) SetWidth(width int) *ApplyProgress {
	p.Width = width
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(min(max(width-20, 20), 50)),
	)
	return p
}

// Record adds an outcome
func (p *ApplyProgress) Record(o hub.RouteOutcome) {
	p.Outcomes = append(p.Outcomes, o)
}

// Done returns the number of directives attempted
func (p *ApplyProgress) Done() int {
	return len(p.Outcomes)
}

// Percent returns the completed fraction (0.0 - 1.0)
func (p *ApplyProgress) Percent() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done()) / float64(p.Total)
}

// RenderBar renders the bar with percentage and count
func (p *ApplyProgress) RenderBar() string {
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(p.Percent()), p.Percent()*100, p.Done(), p.Total))
}

// RenderOutcome renders one outcome line with its marker
func RenderOutcome(o hub.RouteOutcome) string {
	if o.Sent {
		return "  " + MatchStyle.Render(SuccessMarker) + " " + hub.FormatOutcome(o)
	}
	return "  " + DiffStyle.Render(FailureMarker) + " " + ErrorMessageStyle.Render(hub.FormatOutcome(o))
}

// Render returns the bar followed by every outcome so far
func (p *ApplyProgress) Render() string {
	var b strings.Builder
	b.WriteString(p.RenderBar())
	b.WriteString("\n\n")
	for _, o := range p.Outcomes {
		b.WriteString(RenderOutcome(o))
		b.WriteString("\n")
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *ApplyProgress) String() string {
	return p.Render()
}

// ApplySummary builds the result box for a finished apply
func ApplySummary(presetName string, result *hub.ApplyResult) *Result {
	if result.NothingToApply() {
		return NewWarningResult("Nothing to apply",
			Detail{Key: "Preset", Value: presetName},
			Detail{Key: "Routes", Value: "0"},
		)
	}

	failed := result.Failed()
	details := []Detail{
		{Key: "Preset", Value: presetName},
		{Key: "Hub", Value: result.Address},
		{Key: "Routes sent", Value: fmt.Sprintf("%d of %d", result.Succeeded(), len(result.Outcomes))},
	}
	if len(failed) == 0 {
		return NewSuccessResult("Preset applied", details...)
	}

	r := NewWarningResult("Preset partially applied", details...)
	for _, o := range failed {
		r.AddLine(ErrorMessageStyle.Render(FailureMarker + " " + hub.FormatOutcome(o)))
	}
	return r
}
