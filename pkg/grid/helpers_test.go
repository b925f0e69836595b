package grid

import (
	"math/bits"
	"strings"
	"testing"
)

// recorder wraps an Item and counts SetBounds calls.
type recorder struct {
	*Item
	commits int
}

func (r *recorder) SetBounds(b Rect) {
	r.commits++
	r.Item.SetBounds(b)
}

func item(id string, w, h int) *Item {
	return NewItem(id, Rect{Width: w, Height: h})
}

func fixed(id string, w, h int) *Item {
	it := item(id, w, h)
	it.Fixed = true
	return it
}

func mustPlace(t *testing.T, g Grid, w Widget, opts ...PlaceOption) {
	t.Helper()
	ok, err := g.TryPlace(w, opts...)
	if err != nil {
		t.Fatalf("TryPlace(%v) error: %v", w, err)
	}
	if !ok {
		t.Fatalf("TryPlace(%v) = false, want true", w)
	}
}

// dump renders the grid one string per row, using the first letter of each
// item's ID and '-' for empty cells.
func dump(g Grid) []string {
	rows := make([][]byte, g.Rows())
	for y := range rows {
		rows[y] = []byte(strings.Repeat("-", g.Columns()))
	}
	for _, w := range g.Widgets() {
		r, _ := g.Bounds(w)
		label := byte('?')
		if it, ok := w.(interface{ String() string }); ok && it.String() != "" {
			label = it.String()[0]
		}
		for y := r.Y; y < r.Bottom() && y < len(rows); y++ {
			for x := r.X; x < r.Right() && x < len(rows[y]); x++ {
				rows[y][x] = label
			}
		}
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

func assertRows(t *testing.T, g Grid, want ...string) {
	t.Helper()
	got := dump(g)
	if strings.Join(got, "/") != strings.Join(want, "/") {
		t.Errorf("grid = %s, want %s", strings.Join(got, " / "), strings.Join(want, " / "))
	}
}

func assertRect(t *testing.T, w *Item, want Rect) {
	t.Helper()
	if w.Rect != want {
		t.Errorf("%s rect = %v, want %v", w.ID, w.Rect, want)
	}
}

// checkFree verifies that the bitmask and the cell matrix agree, that every
// committed rectangle owns exactly its cells, and that dimensions respect
// the configured bounds.
func checkFree(t *testing.T, g *FreeGrid) {
	t.Helper()
	s := g.state
	if len(s.bitmap) != s.rows || len(s.cells) != s.rows {
		t.Fatalf("bitmap/cells length = %d/%d, rows = %d", len(s.bitmap), len(s.cells), s.rows)
	}
	set := 0
	for y := 0; y < s.rows; y++ {
		set += bits.OnesCount32(s.bitmap[y])
		for x := 0; x < MaxColumns; x++ {
			bit := s.bitmap[y]&(1<<uint(x)) != 0
			if bit != (s.cells[y][x] != nil) {
				t.Fatalf("cell (%d,%d): bit = %v, occupant = %v", x, y, bit, s.cells[y][x])
			}
			if bit && x >= s.columns {
				t.Fatalf("cell (%d,%d) occupied beyond %d columns", x, y, s.columns)
			}
		}
	}
	covered := 0
	for w, r := range s.rects {
		for y := r.Y; y < r.Bottom(); y++ {
			for x := r.X; x < r.Right(); x++ {
				if s.cells[y][x] != w {
					t.Fatalf("cell (%d,%d) = %v, want %v", x, y, s.cells[y][x], w)
				}
			}
		}
		if w.Bounds() != r {
			t.Fatalf("%v bounds = %v, grid has %v", w, w.Bounds(), r)
		}
		covered += r.Width * r.Height
	}
	if covered != set {
		t.Fatalf("rectangles cover %d cells, bitmask has %d", covered, set)
	}
	cfg := g.Config()
	if s.rows < cfg.MinRows || s.columns < cfg.MinColumns || s.columns > cfg.MaxColumns {
		t.Fatalf("dimensions %dx%d outside config %+v", s.columns, s.rows, cfg)
	}
	if cfg.MaxRows > 0 && s.rows > cfg.MaxRows {
		t.Fatalf("rows = %d, max %d", s.rows, cfg.MaxRows)
	}
}

// checkFlow verifies ordering and lane fit of a flow grid.
func checkFlow(t *testing.T, g *FlowGrid) {
	t.Helper()
	entries := g.state.entries
	for i, e := range entries {
		if e.pos%g.cross+e.length > g.cross {
			t.Fatalf("entry %d (%v) crosses a lane boundary at %d", i, e.w, e.pos)
		}
		if i > 0 {
			prev := entries[i-1]
			if e.pos < prev.pos+prev.length {
				t.Fatalf("entry %d (%v) at %d overlaps %v ending at %d", i, e.w, e.pos, prev.w, prev.pos+prev.length)
			}
		}
		if e.w.Bounds() != g.rect(e) {
			t.Fatalf("%v bounds = %v, grid has %v", e.w, e.w.Bounds(), g.rect(e))
		}
	}
	if need := g.lanes(g.end(entries)); need > g.state.flowLen {
		t.Fatalf("flow length %d cannot hold %d lanes", g.state.flowLen, need)
	}
	if g.cfg.MaxFlowAxis > 0 && g.state.flowLen > g.cfg.MaxFlowAxis {
		t.Fatalf("flow length %d exceeds max %d", g.state.flowLen, g.cfg.MaxFlowAxis)
	}
}
