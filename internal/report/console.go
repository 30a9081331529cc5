package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/phobologic/linkcheck/internal/model"
)

// Console prints progress lines. Colors are dropped when w is not a terminal.
type Console struct {
	w     io.Writer
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("220")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("196")),
		muted: r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Title prints a bold heading line.
func (c *Console) Title(format string, args ...any) {
	_, _ = fmt.Fprintln(c.w, c.title.Render(fmt.Sprintf(format, args...)))
}

// Step prints a completed pipeline step.
func (c *Console) Step(format string, args ...any) {
	_, _ = fmt.Fprintf(c.w, "%s %s\n", c.ok.Render("✓"), fmt.Sprintf(format, args...))
}

// Detail prints an indented secondary line.
func (c *Console) Detail(format string, args ...any) {
	_, _ = fmt.Fprintln(c.w, c.muted.Render("  "+fmt.Sprintf(format, args...)))
}

// Inventory prints the route map counts.
func (c *Console) Inventory(inv *model.Inventory) {
	c.Step("Built route map: %d static routes, %d docs routes", inv.Static.Len(), inv.Docs.Len())
	for _, ns := range inv.Namespaces() {
		c.Detail("%s: %d", ns, inv.Dynamic[ns].Len())
	}
}

// Summary prints the closing one-line summary, colored by the worst
// severity found.
func (c *Console) Summary(result *model.ScanResult) {
	line := fmt.Sprintf("Summary: %d links scanned, %d broken, %d auto-fixed",
		len(result.References), len(result.Findings), len(result.Applied))
	style := c.ok
	switch {
	case result.CountBySeverity(model.Error) > len(result.Applied):
		style = c.bad
	case len(result.Findings) > 0:
		style = c.warn
	}
	_, _ = fmt.Fprintln(c.w, style.Render(line))
}

// Summary prints result's closing summary line to w.
func Summary(w io.Writer, result *model.ScanResult) {
	NewConsole(w).Summary(result)
}
