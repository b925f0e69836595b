package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/render"
)

// Editor styles
var (
	editorTargetStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	editorDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	editorRejectStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// EditorModel - Interactive layout editing
// =============================================================================

// selection names a widget on a target.
type selection struct {
	target string
	id     string
}

// EditorModel is the bubbletea model of "dashgrid edit".
//
// Arrow keys open a drag on the selected widget and preview it one cell
// further in that direction; enter commits the preview and esc restores
// the layout from before the drag.
type EditorModel struct {
	Board *board.Board
	Path  string

	sel    selection
	drag   *board.Drag
	cursor [2]int
	status string
	reject bool
	dirty  bool
}

// NewEditorModel creates an editor for b that saves to path.
func NewEditorModel(b *board.Board, path string) EditorModel {
	m := EditorModel{Board: b, Path: path}
	if all := m.selections(); len(all) > 0 {
		m.sel = all[0]
	}
	return m
}

// Dirty reports whether the board changed since the last save.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		if m.drag != nil {
			_ = m.drag.Cancel()
			m.drag = nil
		}
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "up", "k":
		m.nudge(0, -1)
	case "down", "j":
		m.nudge(0, 1)
	case "left", "h":
		m.nudge(-1, 0)
	case "right", "l":
		m.nudge(1, 0)
	case "enter":
		m.commit()
	case "esc":
		m.cancel()
	case "+", "=":
		m.resize(1)
	case "-":
		m.resize(-1)
	case "x", "delete":
		m.remove()
	case "s":
		m.save()
	}
	return m, nil
}

// selections lists every widget of the board in target then grid order.
func (m *EditorModel) selections() []selection {
	var out []selection
	for _, key := range m.Board.Keys() {
		t, _ := m.Board.Target(key)
		for _, w := range t.Widgets() {
			out = append(out, selection{target: key, id: w.ID})
		}
	}
	return out
}

func (m *EditorModel) selected() (*board.Target, *board.Widget, bool) {
	t, err := m.Board.Target(m.sel.target)
	if err != nil {
		return nil, nil, false
	}
	w, ok := t.Widget(m.sel.id)
	return t, w, ok
}

func (m *EditorModel) cycle(step int) {
	if m.drag != nil {
		m.setStatus("finish the drag first (enter or esc)", true)
		return
	}
	all := m.selections()
	if len(all) == 0 {
		return
	}
	i := 0
	for j, s := range all {
		if s == m.sel {
			i = j
			break
		}
	}
	m.sel = all[(i+step+len(all))%len(all)]
	m.setStatus("", false)
}

func (m *EditorModel) nudge(dx, dy int) {
	if m.drag == nil {
		_, w, ok := m.selected()
		if !ok {
			return
		}
		d, err := m.Board.Grab(m.sel.target, m.sel.id)
		if err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		r := w.Bounds()
		m.drag, m.cursor = d, [2]int{r.X, r.Y}
	}
	m.cursor[0] = max(m.cursor[0]+dx, 0)
	m.cursor[1] = max(m.cursor[1]+dy, 0)
	ok, err := m.drag.Preview(m.cursor[0], m.cursor[1])
	switch {
	case err != nil:
		m.setStatus(err.Error(), true)
	case ok:
		m.setStatus(fmt.Sprintf("drop at %d,%d", m.cursor[0], m.cursor[1]), false)
	default:
		m.setStatus(fmt.Sprintf("no room at %d,%d", m.cursor[0], m.cursor[1]), true)
	}
}

func (m *EditorModel) commit() {
	if m.drag == nil {
		return
	}
	accepted := m.drag.Accepted()
	if err := m.drag.Commit(); err != nil {
		m.setStatus(err.Error(), true)
	}
	m.drag = nil
	if accepted {
		m.dirty = true
		m.setStatus("moved "+m.sel.id, false)
	} else {
		m.setStatus("drop rejected, layout unchanged", true)
	}
}

func (m *EditorModel) cancel() {
	if m.drag == nil {
		return
	}
	if err := m.drag.Cancel(); err != nil {
		m.setStatus(err.Error(), true)
	}
	m.drag = nil
	m.setStatus("drag cancelled", false)
}

func (m *EditorModel) resize(step int) {
	if m.drag != nil {
		m.setStatus("finish the drag first (enter or esc)", true)
		return
	}
	t, w, ok := m.selected()
	if !ok {
		return
	}
	r := w.Bounds()
	if err := t.Resize(w.ID, max(r.Width+step, 1), r.Height); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.dirty = true
	m.setStatus("resized "+describe(w), false)
}

func (m *EditorModel) remove() {
	if m.drag != nil {
		m.setStatus("finish the drag first (enter or esc)", true)
		return
	}
	t, w, ok := m.selected()
	if !ok {
		return
	}
	if err := t.Delete(w.ID); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.dirty = true
	m.setStatus("deleted "+w.ID, false)
	m.sel = selection{}
	if all := m.selections(); len(all) > 0 {
		m.sel = all[0]
	}
}

func (m *EditorModel) save() {
	if m.drag != nil {
		m.setStatus("finish the drag first (enter or esc)", true)
		return
	}
	if err := saveLayout(m.Path, m.Board); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.dirty = false
	m.setStatus("saved "+m.Path, false)
}

func (m *EditorModel) setStatus(msg string, reject bool) {
	m.status, m.reject = msg, reject
}

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Edit " + m.Board.Name()))
	b.WriteString("\n")
	b.WriteString(editorDimStyle.Render("tab select  arrows drag  enter drop  esc cancel  +/- width  x delete  s save  q quit"))
	b.WriteString("\n\n")

	_, mark, _ := m.selected()
	m.Board.Inspect(func() {
		for _, key := range m.Board.Keys() {
			t, _ := m.Board.Target(key)
			g := t.Grid()
			b.WriteString(editorTargetStyle.Render(key))
			b.WriteString(editorDimStyle.Render(fmt.Sprintf(" %dx%d", g.Columns(), g.Rows())))
			b.WriteString("\n")
			b.WriteString(render.Styled(g, render.IDLabel, markOf(mark)))
			b.WriteString("\n")
		}
	})

	if mark != nil {
		b.WriteString(styleWidget.Render("▸ " + m.sel.target + "/" + describe(mark)))
		b.WriteString("\n")
	}
	if m.status != "" {
		style := editorDimStyle
		if m.reject {
			style = editorRejectStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	if m.dirty {
		b.WriteString(styleWarn.Render("unsaved changes"))
		b.WriteString("\n")
	}
	return b.String()
}

// markOf converts the selected widget for render.Styled without producing
// a non-nil interface around a nil pointer.
func markOf(w *board.Widget) grid.Widget {
	if w == nil {
		return nil
	}
	return w
}

// =============================================================================
// Command
// =============================================================================

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	var files boardFiles

	cmd := &cobra.Command{
		Use:   "edit <layout.json>",
		Short: "Edit a layout interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := files.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewEditorModel(b, args[0]), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(EditorModel); ok && m.Dirty() {
				newConsole(cmd.OutOrStdout()).warn("Quit with unsaved changes")
			}
			return nil
		},
	}

	files.register(cmd)
	return cmd
}
