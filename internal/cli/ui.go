package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dashgrid/pkg/board"
)

// Palette shared by the status lines and the editor.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleWidget = lipgloss.NewStyle().Foreground(colorAccent)
	styleLink   = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorDim)
	styleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarn)
	styleKey    = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	styleHit    = lipgloss.NewStyle().Foreground(colorOK)
	styleCmd    = lipgloss.NewStyle().Foreground(colorLink)

	markOK   = lipgloss.NewStyle().Foreground(colorOK).Render("✓")
	markWarn = lipgloss.NewStyle().Foreground(colorWarn).Render("!")
	markInfo = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	markFile = styleMuted.Render("→")
)

// console writes a command's status lines. Commands build one from
// cmd.OutOrStdout() so their output can be captured.
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) console {
	return console{w: w}
}

func (c console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c console) ok(format string, args ...any) {
	c.printf("%s %s", markOK, fmt.Sprintf(format, args...))
}

func (c console) warn(format string, args ...any) {
	c.printf("%s %s", markWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (c console) info(format string, args ...any) {
	c.printf("%s %s", markInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line under the previous status line.
func (c console) detail(format string, args ...any) {
	c.printf("  %s", styleMuted.Render(fmt.Sprintf(format, args...)))
}

// file prints a path the command wrote.
func (c console) file(path string) {
	c.printf("  %s %s", markFile, styleValue.Render(path))
}

func (c console) field(key, value string) {
	c.printf("%s %s", styleKey.Render(key), styleValue.Render(value))
}

// next suggests a follow-up command.
func (c console) next(description, command string) {
	c.printf("%s %s", styleMuted.Render(description+":"), styleCmd.Render(command))
}

// targets prints one line per target of b with its layout, current size
// and widget count.
func (c console) targets(b *board.Board) {
	b.Inspect(func() {
		for _, key := range b.Keys() {
			t, _ := b.Target(key)
			g := t.Grid()
			c.field(key, fmt.Sprintf("%s %dx%d, %s", t.Config().Layout, g.Columns(), g.Rows(), count(len(g.Widgets()), "widget")))
		}
	})
}

// rendered reports whether artifacts came from the render cache.
func (c console) rendered(cached bool) {
	if cached {
		c.printf("  %s", styleHit.Render("served from cache"))
		return
	}
	c.detail("rendered fresh")
}

// count formats n with a singular or plural noun.
func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
