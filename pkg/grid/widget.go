package grid

import "fmt"

// Cell addresses a single grid cell by column (X) and row (Y).
type Cell struct {
	X, Y int
}

// Rect is a widget rectangle in cell units. X and Y address the top-left
// cell; Width and Height are never negative.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Right returns the first column to the right of the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether c lies inside the rectangle.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.Right() && c.Y >= r.Y && c.Y < r.Bottom()
}

// Overlaps reports whether the two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Constraints bounds a widget's size. A zero minimum means 1 and a zero
// maximum means unbounded.
type Constraints struct {
	MinWidth, MaxWidth   int
	MinHeight, MaxHeight int
}

// Clamp returns width and height forced into the constraint ranges.
func (c Constraints) Clamp(width, height int) (int, int) {
	return clampSize(width, c.MinWidth, c.MaxWidth), clampSize(height, c.MinHeight, c.MaxHeight)
}

func clampSize(v, lo, hi int) int {
	if lo < 1 {
		lo = 1
	}
	if hi > 0 && hi < lo {
		hi = lo
	}
	if v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}

// Widget is the handle a grid places. The grid reads position, size,
// constraints and draggability, and commits new rectangles only through
// SetBounds. It never owns the widget.
type Widget interface {
	Bounds() Rect
	Constraints() Constraints
	Draggable() bool
	SetBounds(Rect)
}

// Item is a plain Widget implementation for callers without a richer
// entity of their own.
type Item struct {
	ID     string
	Rect   Rect
	Limits Constraints
	Fixed  bool // not draggable
}

// NewItem creates a draggable item with the given initial rectangle.
func NewItem(id string, r Rect) *Item {
	return &Item{ID: id, Rect: r}
}

// Bounds returns the item's rectangle.
func (it *Item) Bounds() Rect { return it.Rect }

// Constraints returns the item's size constraints.
func (it *Item) Constraints() Constraints { return it.Limits }

// Draggable reports whether colliding placements may displace the item.
func (it *Item) Draggable() bool { return !it.Fixed }

// SetBounds commits a new rectangle.
func (it *Item) SetBounds(r Rect) { it.Rect = r }

func (it *Item) String() string { return it.ID }

// PlaceOption configures a single placement request.
type PlaceOption func(*placement)

type placement struct {
	x, y          int
	width, height int
	positioned    bool
	sized         bool
}

// At requests the widget's top-left cell.
func At(x, y int) PlaceOption {
	return func(p *placement) {
		p.x, p.y = x, y
		p.positioned = true
	}
}

// Size requests the widget's width and height.
func Size(width, height int) PlaceOption {
	return func(p *placement) {
		p.width, p.height = width, height
		p.sized = true
	}
}

// AtCell is At for a Cell value.
func AtCell(c Cell) PlaceOption { return At(c.X, c.Y) }

// resolvePlacement applies opts on top of the widget's current rectangle.
// Width and height fall back to the widget's size, then to the constraint
// minimum.
func resolvePlacement(w Widget, opts []PlaceOption) placement {
	b := w.Bounds()
	p := placement{width: b.Width, height: b.Height}
	for _, opt := range opts {
		opt(&p)
	}
	p.width, p.height = w.Constraints().Clamp(p.width, p.height)
	return p
}
