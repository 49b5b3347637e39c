package ui

import (
	"fmt"
	"io"
	"os"
	"strings"


	"github.com/muurk/videohub/internal/hub"
)

// Printer writes UI components to a writer. Commands print through it so
// tests can capture output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a printer. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Width returns the render width
func (p *Printer) Width() int {
	return p.width
}

// Print writes content
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintResult prints a result box
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.PrintResult(NewSuccessResult(title, details...))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.PrintResult(NewWarningResult(title, details...))
}

// PrintError prints a failure box with the troubleshooting tips for err
func (p *Printer) PrintError(title string, err error) {
	p.PrintResult(NewFailureResult(title, err, TroubleshootingTips(err)))
}

// TroubleshootingTips extracts the bullet points from a hub error's hint.
// A hint without bullets becomes a single tip.
func TroubleshootingTips(err error) []string {
	if err == nil {
		return nil
	}
	hint := hub.GetTroubleshootingHint(err)

	var tips []string
	for _, line := range strings.Split(hint, "\n") {
		if tip, ok := strings.CutPrefix(strings.TrimSpace(line), "• "); ok {
			tips = append(tips, tip)
		}
	}
	if len(tips) == 0 && hint != "" {
		tips = []string{hint}
	}
	return tips
}
