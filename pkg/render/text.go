package render

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dashgrid/pkg/grid"
)

const emptyCell = '-'

// Text renders occupancy one line per row, each cell as the first rune of
// its widget's label and '-' when empty.
func Text(g grid.Grid, label Labeler) string {
	if label == nil {
		label = IDLabel
	}
	var b strings.Builder
	for _, row := range cells(g) {
		for _, w := range row {
			b.WriteRune(initial(w, label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TextSections renders several grids under their keys.
func TextSections(sections []Section, label Labeler) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + s.Key + "]\n")
		b.WriteString(Text(s.Grid, label))
	}
	return b.String()
}

var palette = []lipgloss.Color{"36", "35", "220", "75", "167", "141", "208", "114"}

var (
	styleEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleMark  = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// Styled renders like Text with one background colour per widget, two
// terminal columns per cell. The widget equal to mark (the one being
// edited) is drawn reversed.
func Styled(g grid.Grid, label Labeler, mark grid.Widget) string {
	if label == nil {
		label = IDLabel
	}
	colors := make(map[grid.Widget]lipgloss.Style)
	for i, w := range g.Widgets() {
		st := lipgloss.NewStyle().
			Background(palette[i%len(palette)]).
			Foreground(lipgloss.Color("0"))
		if w == mark {
			st = st.Inherit(styleMark)
		}
		colors[w] = st
	}

	var b strings.Builder
	for _, row := range cells(g) {
		for _, w := range row {
			cell := string(initial(w, label)) + " "
			if w == nil {
				b.WriteString(styleEmpty.Render(cell))
				continue
			}
			b.WriteString(colors[w].Render(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func initial(w grid.Widget, label Labeler) rune {
	if w == nil {
		return emptyCell
	}
	r, _ := utf8.DecodeRuneInString(label(w))
	if r == utf8.RuneError {
		return '?'
	}
	return r
}
