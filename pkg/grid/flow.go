package grid

import (
	"cmp"
	"slices"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// FlowAxis is the axis along which a flow grid grows.
type FlowAxis string

const (
	// FlowRow packs widgets left to right, wrapping onto new rows.
	FlowRow FlowAxis = "row"
	// FlowColumn packs widgets top to bottom, wrapping onto new columns.
	FlowColumn FlowAxis = "column"
)

// Strategy decides where a widget without coordinates is placed.
type Strategy string

const (
	StrategyAppend  Strategy = "append"
	StrategyPrepend Strategy = "prepend"
)

// FlowConfig configures a flow grid. For row flow, Columns is the fixed
// lane length and Rows the minimum number of rows; column flow mirrors
// this. A zero MaxFlowAxis allows unrestricted growth.
type FlowConfig struct {
	Axis           FlowAxis
	Strategy       Strategy
	DisallowInsert bool
	MaxFlowAxis    int
	Rows           int
	Columns        int
}

func (c FlowConfig) normalize() FlowConfig {
	if c.Axis != FlowColumn {
		c.Axis = FlowRow
	}
	if c.Strategy != StrategyPrepend {
		c.Strategy = StrategyAppend
	}
	c.Rows = max(c.Rows, 0)
	c.Columns = max(c.Columns, 0)
	c.MaxFlowAxis = max(c.MaxFlowAxis, 0)
	return c
}

// FlowGrid packs widgets in order along its flow axis. Each widget fills
// one lane across the cross axis and starts where its predecessor ends,
// wrapping to the next lane when it does not fit the rest of the current
// one. Coordinates passed to TryPlace only choose the position in the
// order.
type FlowGrid struct {
	base
	cfg     FlowConfig
	cross   int // lane length
	minFlow int
	state   flowState
}

// flowEntry is one placed widget; entries are kept sorted by pos.
type flowEntry struct {
	w      Widget
	pos    int
	length int
}

type flowState struct {
	flowLen int
	entries []flowEntry
}

func (s flowState) clone() flowState {
	return flowState{flowLen: s.flowLen, entries: slices.Clone(s.entries)}
}

// NewFlow creates an empty flow grid.
func NewFlow(cfg FlowConfig) *FlowGrid {
	cfg = cfg.normalize()
	g := &FlowGrid{cfg: cfg}
	if cfg.Axis == FlowRow {
		g.cross, g.minFlow = cfg.Columns, cfg.Rows
	} else {
		g.cross, g.minFlow = cfg.Rows, cfg.Columns
	}
	g.cross = max(g.cross, 1)
	if cfg.MaxFlowAxis > 0 {
		g.minFlow = min(g.minFlow, cfg.MaxFlowAxis)
	}
	g.state.flowLen = g.minFlow
	return g
}

// Config returns the normalized configuration.
func (g *FlowGrid) Config() FlowConfig { return g.cfg }

// Rows returns the current row count.
func (g *FlowGrid) Rows() int {
	if g.cfg.Axis == FlowRow {
		return g.state.flowLen
	}
	return g.cross
}

// Columns returns the current column count.
func (g *FlowGrid) Columns() int {
	if g.cfg.Axis == FlowRow {
		return g.cross
	}
	return g.state.flowLen
}

// Widgets returns the placed widgets in flow order.
func (g *FlowGrid) Widgets() []Widget {
	out := make([]Widget, len(g.state.entries))
	for i, e := range g.state.entries {
		out[i] = e.w
	}
	return out
}

// Bounds returns the committed rectangle of w.
func (g *FlowGrid) Bounds(w Widget) (Rect, bool) {
	if i := indexOf(g.state.entries, w); i >= 0 {
		return g.rect(g.state.entries[i]), true
	}
	return Rect{}, false
}

// position maps a cell to its 1D flow index.
func (g *FlowGrid) position(c Cell) int {
	if g.cfg.Axis == FlowRow {
		return c.Y*g.cross + c.X
	}
	return c.X*g.cross + c.Y
}

// cell maps a 1D flow index back to a cell.
func (g *FlowGrid) cell(pos int) Cell {
	lane, offset := pos/g.cross, pos%g.cross
	if g.cfg.Axis == FlowRow {
		return Cell{X: offset, Y: lane}
	}
	return Cell{X: lane, Y: offset}
}

func (g *FlowGrid) rect(e flowEntry) Rect {
	c := g.cell(e.pos)
	if g.cfg.Axis == FlowRow {
		return Rect{X: c.X, Y: c.Y, Width: e.length, Height: 1}
	}
	return Rect{X: c.X, Y: c.Y, Width: 1, Height: e.length}
}

// length returns a placement's extent along the flow axis, clamped to one
// lane.
func (g *FlowGrid) length(p placement) int {
	n := p.width
	if g.cfg.Axis == FlowColumn {
		n = p.height
	}
	return clamp(n, 1, g.cross)
}

// clampCell keeps c inside the current lanes, allowing one lane past the
// end so that a drop there appends.
func (g *FlowGrid) clampCell(c Cell) Cell {
	if g.cfg.Axis == FlowRow {
		return Cell{X: clamp(c.X, 0, g.cross-1), Y: clamp(c.Y, 0, g.state.flowLen)}
	}
	return Cell{X: clamp(c.X, 0, g.state.flowLen), Y: clamp(c.Y, 0, g.cross-1)}
}

// reflow recomputes positions from index from onward, each entry starting
// at its predecessor's end. It returns the end of the last entry.
func (g *FlowGrid) reflow(entries []flowEntry, from int) int {
	from = max(from, 0)
	next := 0
	if from > 0 && from <= len(entries) {
		prev := entries[from-1]
		next = prev.pos + prev.length
	}
	for i := from; i < len(entries); i++ {
		pos := next
		if pos%g.cross+entries[i].length > g.cross {
			pos = (pos/g.cross + 1) * g.cross
		}
		entries[i].pos = pos
		next = pos + entries[i].length
	}
	return g.end(entries)
}

func (g *FlowGrid) end(entries []flowEntry) int {
	if len(entries) == 0 {
		return 0
	}
	last := entries[len(entries)-1]
	return last.pos + last.length
}

// lanes returns the number of lanes needed to hold positions [0, end).
func (g *FlowGrid) lanes(end int) int {
	return (end + g.cross - 1) / g.cross
}

// insertIndex returns the index of the first entry at or after pos.
func insertIndex(entries []flowEntry, pos int) int {
	i, _ := slices.BinarySearchFunc(entries, pos, func(e flowEntry, p int) int {
		return cmp.Compare(e.pos, p)
	})
	return i
}

func indexOf(entries []flowEntry, w Widget) int {
	return slices.IndexFunc(entries, func(e flowEntry) bool { return e.w == w })
}

// TryPlace inserts w into the flow order. With At (and insertion allowed)
// the widget lands before the first widget at or after that cell, measured
// as if w were not on the grid; otherwise the placement strategy decides.
// A placed widget re-placed at its own cell, or on a grid that disallows
// insertion, keeps its index.
// Every following widget is shifted; if the flow axis cannot grow enough
// nothing changes.
func (g *FlowGrid) TryPlace(w Widget, opts ...PlaceOption) (bool, error) {
	if w == nil {
		return false, errors.New(errors.ErrCodeInvalidPlacement, "cannot place a nil widget")
	}
	p := resolvePlacement(w, opts)

	entries := slices.Clone(g.state.entries)
	from, placed := len(entries), false
	var own Cell
	if i := indexOf(entries, w); i >= 0 {
		own = g.cell(entries[i].pos)
		entries = slices.Delete(entries, i, i+1)
		g.reflow(entries, i)
		from, placed = i, true
	}

	var idx int
	switch {
	case placed && (g.cfg.DisallowInsert || p.positioned && g.clampCell(Cell{X: p.x, Y: p.y}) == own):
		// Re-placing at its own cell, or where the order is fixed, keeps
		// the widget's index.
		idx = from
	case p.positioned && !g.cfg.DisallowInsert:
		idx = insertIndex(entries, g.position(g.clampCell(Cell{X: p.x, Y: p.y})))
	case g.cfg.Strategy == StrategyPrepend:
		idx = 0
	default:
		idx = len(entries)
	}

	entries = slices.Insert(entries, idx, flowEntry{w: w, length: g.length(p)})
	lanes := g.lanes(g.reflow(entries, min(from, idx)))

	flowLen := g.state.flowLen
	if lanes > flowLen {
		if g.cfg.MaxFlowAxis > 0 && lanes > g.cfg.MaxFlowAxis {
			return false, nil
		}
		flowLen = lanes
	}

	g.commit(flowState{flowLen: flowLen, entries: entries}, w)
	g.notify(OpPlace, w)
	return true, nil
}

// commit swaps in next and reports, in index order, every rectangle that
// changed. always is reported even when unchanged.
func (g *FlowGrid) commit(next flowState, always Widget) {
	prev := make(map[Widget]Rect, len(g.state.entries))
	for _, e := range g.state.entries {
		prev[e.w] = g.rect(e)
	}
	g.state = next
	for _, e := range next.entries {
		r := g.rect(e)
		if old, ok := prev[e.w]; e.w == always || !ok || old != r {
			e.w.SetBounds(r)
		}
	}
}

// Remove splices w out of the order, shifts its successors back and
// shrinks the flow axis to fit the new last widget.
func (g *FlowGrid) Remove(w Widget) bool {
	i := g.find(w)
	if i < 0 {
		return false
	}
	entries := slices.Delete(slices.Clone(g.state.entries), i, i+1)
	end := g.reflow(entries, i)
	flowLen := max(g.lanes(end), g.minFlow)

	g.commit(flowState{flowLen: flowLen, entries: entries}, nil)
	if g.shadow == w {
		g.shadow = nil
	}
	g.notify(OpRemove, w)
	return true
}

// find locates w by binary search on its recorded position.
func (g *FlowGrid) find(w Widget) int {
	r, ok := g.Bounds(w)
	if !ok {
		return -1
	}
	i := insertIndex(g.state.entries, g.position(Cell{X: r.X, Y: r.Y}))
	if i < len(g.state.entries) && g.state.entries[i].w == w {
		return i
	}
	return indexOf(g.state.entries, w)
}

// Clear evicts every widget and resets the flow axis to its minimum.
func (g *FlowGrid) Clear() {
	g.state = flowState{flowLen: g.minFlow}
	g.shadow = nil
	g.notify(OpClear, nil)
}

// MapRawCell converts a hovered cell into the flow cell a drop would
// occupy once the shadow widget vacates its slot. Lane-wrap gaps around
// the shadow are not accounted for, so the result can be off by the wrap
// distance when the shadow sits at the end of a lane.
func (g *FlowGrid) MapRawCell(c Cell) Cell {
	pos := g.position(g.clampCell(c))
	if g.shadow != nil {
		if i := indexOf(g.state.entries, g.shadow); i >= 0 {
			s := g.state.entries[i]
			if s.pos < pos {
				pos = max(pos-s.length, s.pos)
			}
		}
	}
	return g.cell(pos)
}

// Snapshot captures the ordered widget list and the flow-axis length.
func (g *FlowGrid) Snapshot() Snapshot {
	return &flowSnapshot{state: g.state.clone()}
}

// Restore replaces the grid state with s and recommits every widget
// rectangle in flow order.
func (g *FlowGrid) Restore(s Snapshot) error {
	snap, ok := s.(*flowSnapshot)
	if !ok || snap == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot was not taken from a flow grid")
	}
	g.state = snap.state.clone()
	for _, e := range g.state.entries {
		e.w.SetBounds(g.rect(e))
	}
	if g.shadow != nil && indexOf(g.state.entries, g.shadow) < 0 {
		g.shadow = nil
	}
	g.notify(OpRestore, nil)
	return nil
}
