package grid

import (
	"math/bits"
	"slices"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// MaxColumns is the absolute column cap of a free-form grid. Each row's
// occupancy is a single uint32 bitmask.
const MaxColumns = 32

// FreeConfig bounds a free-form grid. Zero maxima mean unrestricted growth
// (columns are still capped at MaxColumns).
type FreeConfig struct {
	MinRows    int
	MinColumns int
	MaxRows    int
	MaxColumns int
}

func (c FreeConfig) normalize() FreeConfig {
	if c.MaxColumns <= 0 || c.MaxColumns > MaxColumns {
		c.MaxColumns = MaxColumns
	}
	c.MinRows = max(c.MinRows, 0)
	c.MinColumns = clamp(c.MinColumns, 0, c.MaxColumns)
	if c.MaxRows < 0 {
		c.MaxRows = 0
	}
	if c.MaxRows > 0 && c.MaxRows < c.MinRows {
		c.MaxRows = c.MinRows
	}
	return c
}

// FreeGrid places widgets at explicit coordinates. Colliding widgets are
// displaced along X, then Y, recursively; a placement that cannot be
// resolved changes nothing.
type FreeGrid struct {
	base
	cfg   FreeConfig
	state *freeState
}

// NewFree creates an empty free-form grid sized to the configured floors.
func NewFree(cfg FreeConfig) *FreeGrid {
	cfg = cfg.normalize()
	return &FreeGrid{cfg: cfg, state: newFreeState(cfg.MinRows, cfg.MinColumns)}
}

// Config returns the normalized configuration.
func (g *FreeGrid) Config() FreeConfig { return g.cfg }

// Rows returns the current row count.
func (g *FreeGrid) Rows() int { return g.state.rows }

// Columns returns the current column count.
func (g *FreeGrid) Columns() int { return g.state.columns }

// Bounds returns the committed rectangle of w.
func (g *FreeGrid) Bounds(w Widget) (Rect, bool) {
	r, ok := g.state.rects[w]
	return r, ok
}

// Widgets returns the placed widgets ordered by row, then column.
func (g *FreeGrid) Widgets() []Widget { return g.state.widgets() }

// MapRawCell clamps c to the cells a placement may start from.
func (g *FreeGrid) MapRawCell(c Cell) Cell {
	return Cell{X: clamp(c.X, 0, g.state.columns), Y: clamp(c.Y, 0, g.state.rows)}
}

// TryPlace places w at the position given by At. Free-form placement never
// infers coordinates: a request without them is an error.
func (g *FreeGrid) TryPlace(w Widget, opts ...PlaceOption) (bool, error) {
	if w == nil {
		return false, errors.New(errors.ErrCodeInvalidPlacement, "cannot place a nil widget")
	}
	p := resolvePlacement(w, opts)
	if !p.positioned {
		return false, errors.New(errors.ErrCodeInvalidPlacement, "free-form placement requires explicit x and y")
	}

	s := g.state.clone()
	s.lift(w)

	target := Rect{
		X:      clamp(p.x, 0, s.columns),
		Y:      clamp(p.y, 0, s.rows),
		Width:  p.width,
		Height: p.height,
	}

	res := resolver{cfg: g.cfg, pinned: make(map[Widget]bool)}
	if !res.place(s, w, target, axisAny) {
		return false, nil
	}

	g.commit(s, w)
	return true, nil
}

// commit swaps in the resolved state and reports every rectangle that
// changed, displaced widgets first and the placed widget last.
func (g *FreeGrid) commit(s *freeState, placed Widget) {
	prev := g.state
	g.state = s
	for _, w := range s.widgets() {
		if w == placed {
			continue
		}
		if r, ok := prev.rects[w]; !ok || r != s.rects[w] {
			w.SetBounds(s.rects[w])
		}
	}
	placed.SetBounds(s.rects[placed])
	g.notify(OpPlace, placed)
}

// Remove evicts w and trims trailing empty rows and columns down to the
// configured floors.
func (g *FreeGrid) Remove(w Widget) bool {
	if _, ok := g.state.rects[w]; !ok {
		return false
	}
	g.state.lift(w)
	g.state.trim(g.cfg.MinRows, g.cfg.MinColumns)
	if g.shadow == w {
		g.shadow = nil
	}
	g.notify(OpRemove, w)
	return true
}

// Clear evicts every widget.
func (g *FreeGrid) Clear() {
	g.state = newFreeState(g.cfg.MinRows, g.cfg.MinColumns)
	g.shadow = nil
	g.notify(OpClear, nil)
}

// Snapshot captures occupancy, dimensions and every widget rectangle.
func (g *FreeGrid) Snapshot() Snapshot {
	return &freeSnapshot{state: g.state.clone()}
}

// Restore replaces the grid state with s and recommits every snapshotted
// rectangle in reading order.
func (g *FreeGrid) Restore(s Snapshot) error {
	snap, ok := s.(*freeSnapshot)
	if !ok || snap == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot was not taken from a free-form grid")
	}
	g.state = snap.state.clone()
	for _, w := range g.state.widgets() {
		w.SetBounds(g.state.rects[w])
	}
	if g.shadow != nil {
		if _, ok := g.state.rects[g.shadow]; !ok {
			g.shadow = nil
		}
	}
	g.notify(OpRestore, nil)
	return nil
}

// axis restricts how a cascade may displace widgets.
type axis int

const (
	axisAny axis = iota
	axisX
	axisY
)

// resolver runs one collision resolution pass. Moves accumulate in cloned
// states and only reach the grid through commit.
type resolver struct {
	cfg FreeConfig
	// pinned holds the widgets on the current displacement chain.
	pinned map[Widget]bool
}

func (res *resolver) fits(r Rect) bool {
	if r.X < 0 || r.Y < 0 {
		return false
	}
	if r.Right() > res.cfg.MaxColumns {
		return false
	}
	return res.cfg.MaxRows == 0 || r.Bottom() <= res.cfg.MaxRows
}

// place writes w at r into s, displacing every occupant. A top-level call
// (axisAny) lets each occupant try X then Y; the cascade that follows a
// choice stays on that axis.
func (res *resolver) place(s *freeState, w Widget, r Rect, dir axis) bool {
	if !res.fits(r) {
		return false
	}
	s.grow(r.Bottom(), r.Right())

	occupants := s.occupants(r)
	for _, o := range occupants {
		if !o.Draggable() || res.pinned[o] {
			return false
		}
	}
	origins := make([]Rect, len(occupants))
	for i, o := range occupants {
		origins[i], _ = s.lift(o)
	}
	s.put(w, r)

	res.pinned[w] = true
	defer delete(res.pinned, w)

	for i, o := range occupants {
		if !res.displace(s, o, origins[i], r, dir) {
			return false
		}
	}
	return true
}

// displace moves o out of blocker's way. On success s holds the result of
// the winning attempt; on failure s is left partially resolved and must be
// discarded by the caller.
func (res *resolver) displace(s *freeState, o Widget, from, blocker Rect, dir axis) bool {
	if dir != axisY {
		next := s.clone()
		to := from
		to.X = blocker.Right()
		if res.place(next, o, to, axisX) {
			*s = *next
			return true
		}
	}
	if dir != axisX {
		next := s.clone()
		to := from
		to.Y = blocker.Bottom()
		if res.place(next, o, to, axisY) {
			*s = *next
			return true
		}
	}
	return false
}

// freeState is the complete occupancy of a free-form grid. Bit c of
// bitmap[r] is set iff cells[r][c] is non-nil.
type freeState struct {
	rows, columns int
	bitmap        []uint32
	cells         [][MaxColumns]Widget
	rects         map[Widget]Rect
}

func newFreeState(rows, columns int) *freeState {
	return &freeState{
		rows:    rows,
		columns: columns,
		bitmap:  make([]uint32, rows),
		cells:   make([][MaxColumns]Widget, rows),
		rects:   make(map[Widget]Rect),
	}
}

func (s *freeState) clone() *freeState {
	rects := make(map[Widget]Rect, len(s.rects))
	for w, r := range s.rects {
		rects[w] = r
	}
	return &freeState{
		rows:    s.rows,
		columns: s.columns,
		bitmap:  slices.Clone(s.bitmap),
		cells:   slices.Clone(s.cells),
		rects:   rects,
	}
}

func (s *freeState) at(x, y int) Widget {
	if x < 0 || y < 0 || x >= s.columns || y >= s.rows {
		return nil
	}
	if s.bitmap[y]&(1<<uint(x)) == 0 {
		return nil
	}
	return s.cells[y][x]
}

// grow extends the dimensions to at least rows x columns.
func (s *freeState) grow(rows, columns int) {
	for s.rows < rows {
		s.bitmap = append(s.bitmap, 0)
		s.cells = append(s.cells, [MaxColumns]Widget{})
		s.rows++
	}
	s.columns = max(s.columns, columns)
}

// occupants returns the distinct widgets covering r in reading order.
func (s *freeState) occupants(r Rect) []Widget {
	var out []Widget
	seen := make(map[Widget]bool)
	yEnd := min(r.Bottom(), s.rows)
	xEnd := min(r.Right(), s.columns)
	for y := max(r.Y, 0); y < yEnd; y++ {
		if s.bitmap[y]&spanMask(r.X, xEnd) == 0 {
			continue
		}
		for x := max(r.X, 0); x < xEnd; x++ {
			if o := s.at(x, y); o != nil && !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}

func (s *freeState) put(w Widget, r Rect) {
	mask := spanMask(r.X, r.Right())
	for y := r.Y; y < r.Bottom(); y++ {
		s.bitmap[y] |= mask
		for x := r.X; x < r.Right(); x++ {
			s.cells[y][x] = w
		}
	}
	s.rects[w] = r
}

// lift clears w's cells and forgets its rectangle, returning it.
func (s *freeState) lift(w Widget) (Rect, bool) {
	r, ok := s.rects[w]
	if !ok {
		return Rect{}, false
	}
	mask := spanMask(r.X, r.Right())
	for y := r.Y; y < r.Bottom() && y < s.rows; y++ {
		s.bitmap[y] &^= mask
		for x := r.X; x < r.Right(); x++ {
			s.cells[y][x] = nil
		}
	}
	delete(s.rects, w)
	return r, true
}

// trim drops empty trailing rows and columns one at a time until a
// non-empty edge or the floor is reached.
func (s *freeState) trim(minRows, minColumns int) {
	for s.rows > minRows && s.bitmap[s.rows-1] == 0 {
		s.rows--
		s.bitmap = s.bitmap[:s.rows]
		s.cells = s.cells[:s.rows]
	}
	var used uint32
	for _, m := range s.bitmap {
		used |= m
	}
	s.columns = max(min(s.columns, bits.Len32(used)), minColumns)
}

// widgets returns the placed widgets ordered by their top-left cell.
func (s *freeState) widgets() []Widget {
	out := make([]Widget, 0, len(s.rects))
	for w := range s.rects {
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b Widget) int {
		ra, rb := s.rects[a], s.rects[b]
		if ra.Y != rb.Y {
			return ra.Y - rb.Y
		}
		return ra.X - rb.X
	})
	return out
}

// spanMask returns a mask with bits [from, to) set.
func spanMask(from, to int) uint32 {
	from = max(from, 0)
	to = min(to, MaxColumns)
	if to <= from {
		return 0
	}
	return uint32((uint64(1)<<uint(to) - 1) &^ (uint64(1)<<uint(from) - 1))
}
