package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/render"
)

// Render produces the requested artifacts for b without caching.
func Render(ctx context.Context, b *board.Board, opts Options) (map[string][]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	keys := b.Keys()
	if opts.Target != "" {
		if _, err := b.Target(opts.Target); err != nil {
			return nil, err
		}
		keys = []string{opts.Target}
	}

	// Text and DOT read the grids, so they are built under the board lock.
	// Graphviz and rsvg-convert only see the DOT string.
	var text, dot string
	b.Inspect(func() {
		sections := make([]render.Section, len(keys))
		for i, key := range keys {
			t, _ := b.Target(key)
			sections[i] = render.Section{Key: key, Grid: t.Grid()}
		}
		text = renderText(sections, opts.Styled)
		dot = render.SectionsDOT(b.Name(), sections, render.IDLabel)
	})

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatText:
			data = []byte(text)
		case render.FormatDOT:
			data = []byte(dot)
		case render.FormatSVG, render.FormatPDF, render.FormatPNG:
			if svg == nil {
				if svg, err = render.RenderSVG(ctx, dot); err != nil {
					return nil, fmt.Errorf("render svg: %w", err)
				}
			}
			switch format {
			case render.FormatSVG:
				data = svg
			case render.FormatPDF:
				data, err = render.ToPDF(ctx, svg)
			case render.FormatPNG:
				data, err = render.ToPNG(ctx, svg, DefaultPNGScale)
			}
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderText(sections []render.Section, styled bool) string {
	if !styled {
		if len(sections) == 1 {
			return render.Text(sections[0].Grid, render.IDLabel)
		}
		return render.TextSections(sections, render.IDLabel)
	}
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("[" + s.Key + "]\n")
		sb.WriteString(render.Styled(s.Grid, render.IDLabel, nil))
	}
	return sb.String()
}
