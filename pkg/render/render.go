// Package render draws grids as text, styled terminal output, Graphviz DOT
// and SVG.
//
// Every renderer reads a grid only through the [grid.Grid] contract, so
// both variants render the same way:
//
//	fmt.Print(render.Text(g, render.IDLabel))
//	// aab
//	// cc-
//
// # Graphviz
//
// [ToDOT] emits each grid as an HTML-like table where every widget is one
// cell spanning its rectangle (COLSPAN/ROWSPAN). [RenderSVG] lays the DOT
// out with the embedded Graphviz from go-graphviz, so no system install is
// needed. [ToPDF] and [ToPNG] convert the SVG with rsvg-convert.
package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Output formats.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// ValidateFormat returns an error for an unknown format name.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	if format == FormatText {
		return "txt"
	}
	return format
}

// Labeler names a widget for display.
type Labeler func(grid.Widget) string

// IDLabel labels a widget with its String method, or "?".
func IDLabel(w grid.Widget) string {
	if s, ok := w.(fmt.Stringer); ok && s.String() != "" {
		return s.String()
	}
	return "?"
}

// Section is one titled grid of a multi-grid rendering.
type Section struct {
	Key  string
	Grid grid.Grid
}

// cells maps every covered cell to its widget.
func cells(g grid.Grid) [][]grid.Widget {
	out := make([][]grid.Widget, g.Rows())
	for y := range out {
		out[y] = make([]grid.Widget, g.Columns())
	}
	for _, w := range g.Widgets() {
		r, ok := g.Bounds(w)
		if !ok {
			continue
		}
		for y := max(r.Y, 0); y < r.Bottom() && y < len(out); y++ {
			for x := max(r.X, 0); x < r.Right() && x < len(out[y]); x++ {
				out[y][x] = w
			}
		}
	}
	return out
}
