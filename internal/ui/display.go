package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// DefaultTermWidth is the fallback terminal width when detection fails.
const DefaultTermWidth = 100

// DisplayContext holds display parameters, auto-detecting terminal width.
type DisplayContext struct {
	TermWidth int  // detected or fallback terminal width
	IsTTY     bool // whether stdout is a terminal
}

// NewDisplayContext creates a DisplayContext for stdout.
func NewDisplayContext() *DisplayContext {
	fd := os.Stdout.Fd()
	isTTY := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	width := DefaultTermWidth
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	return &DisplayContext{
		TermWidth: width,
		IsTTY:     isTTY,
	}
}

// NewDisplayContextWithWidth creates a DisplayContext with a fixed width (for testing).
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{
		TermWidth: width,
		IsTTY:     true,
	}
}

// Rule renders a section divider such as "── Ideas ─────" that spans the
// terminal, capped at 80 columns.
func (d *DisplayContext) Rule(title string) string {
	width := d.TermWidth
	if width > 80 {
		width = 80
	}
	if title == "" {
		return Muted.Render(strings.Repeat("─", width))
	}
	head := "── " + title + " "
	fill := width - lipgloss.Width(head)
	if fill < 2 {
		fill = 2
	}
	return Muted.Render("── ") + Bold.Render(title) + " " + Muted.Render(strings.Repeat("─", fill))
}
