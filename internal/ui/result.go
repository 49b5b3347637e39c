package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType indicates success, failure or warning
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key/value line of a result box
type Detail struct {
	Key   string
	Value string
}

// Result is a bordered summary box shown when a command finishes
type Result struct {
	Type            ResultType
	Title           string   // e.g., "Preset applied"
	Details         []Detail // rendered in order
	Lines           []string // free-form lines after the details
	Error           error    // for failure results
	Troubleshooting []string // for failure results
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Detail) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth sets the render width
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a key/value line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// AddLine appends a free-form line
func (r *Result) AddLine(line string) *Result {
	r.Lines = append(r.Lines, line)
	return r
}

// Render returns the styled result box
func (r *Result) Render() string {
	var (
		label string
		title lipgloss.Style
		color lipgloss.Color
		mark  string
	)
	switch r.Type {
	case ResultFailure:
		label, title, color, mark = "FAILED", ErrorTitleStyle, ErrorColor, FailureMarker
	case ResultWarning:
		label, title, color, mark = "WARNING", WarningTitleStyle, WarningColor, WarningMarker
	default:
		label, title, color, mark = "SUCCESS", SuccessTitleStyle, SuccessColor, SuccessMarker
	}

	lines := []string{
		"",
		title.Render(fmt.Sprintf("   %s  %s  ─  %s", mark, label, r.Title)),
		"",
	}

	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	for _, l := range r.Lines {
		lines = append(lines, "   "+l)
	}
	if len(r.Details) > 0 || len(r.Lines) > 0 {
		lines = append(lines, "")
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}
	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshooting(), "")
	}

	return boxStyle(lipgloss.DoubleBorder(), color, r.Width).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderTroubleshooting() string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(clampWidth(r.Width)-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
