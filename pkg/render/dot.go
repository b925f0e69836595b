package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dashgrid/pkg/grid"
)

// ToDOT converts a single grid to Graphviz DOT.
func ToDOT(name string, g grid.Grid, label Labeler) string {
	return SectionsDOT(name, []Section{{Key: name, Grid: g}}, label)
}

// SectionsDOT converts several grids to one DOT graph, one table node per
// grid, laid out left to right.
func SectionsDOT(name string, sections []Section, label Labeler) string {
	if label == nil {
		label = IDLabel
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", name)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plain, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("\n")

	for _, s := range sections {
		fmt.Fprintf(&buf, "  %q [label=<%s>];\n", s.Key, table(s.Key, s.Grid, label))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// table renders g as an HTML-like label. Row and column headers keep every
// <TR> non-empty even when tall widgets span all of its cells.
func table(title string, g grid.Grid, label Labeler) string {
	var b strings.Builder
	b.WriteString(`<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="2" CELLPADDING="6">`)
	fmt.Fprintf(&b, `<TR><TD COLSPAN="%d"><B>%s</B></TD></TR>`, g.Columns()+1, html.EscapeString(title))

	b.WriteString(`<TR><TD BORDER="0"></TD>`)
	for x := 0; x < g.Columns(); x++ {
		fmt.Fprintf(&b, `<TD BORDER="0"><FONT COLOR="gray">%d</FONT></TD>`, x)
	}
	b.WriteString(`</TR>`)

	occ := cells(g)
	colors := make(map[grid.Widget]string)
	for i, w := range g.Widgets() {
		colors[w] = dotPalette[i%len(dotPalette)]
	}

	for y, row := range occ {
		fmt.Fprintf(&b, `<TR><TD BORDER="0"><FONT COLOR="gray">%d</FONT></TD>`, y)
		for x, w := range row {
			if w == nil {
				b.WriteString(`<TD COLOR="lightgray"> </TD>`)
				continue
			}
			r, _ := g.Bounds(w)
			if r.X != x || r.Y != y {
				continue
			}
			fmt.Fprintf(&b, `<TD COLSPAN="%d" ROWSPAN="%d" BGCOLOR="%s">%s</TD>`,
				min(r.Width, g.Columns()-x), min(r.Height, g.Rows()-y), colors[w], html.EscapeString(label(w)))
		}
		b.WriteString(`</TR>`)
	}
	b.WriteString(`</TABLE>`)
	return b.String()
}

var dotPalette = []string{"#a6cee3", "#b2df8a", "#fdbf6f", "#cab2d6", "#fb9a99", "#ffff99", "#1f78b4", "#33a02c"}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// sized in pixels so browsers scale the SVG predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
