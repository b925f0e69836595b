package board

import "github.com/matzehuels/dashgrid/pkg/grid"

// Widget is a dashboard widget. Its rectangle is owned by the grid of the
// target it sits on and only changes through SetBounds.
type Widget struct {
	ID       string
	Type     string
	Metadata map[string]any

	rect   grid.Rect
	limits grid.Constraints
	fixed  bool
}

// Bounds returns the committed rectangle.
func (w *Widget) Bounds() grid.Rect { return w.rect }

// Constraints returns the size limits inherited from the widget type.
func (w *Widget) Constraints() grid.Constraints { return w.limits }

// Draggable reports whether other placements may displace the widget.
func (w *Widget) Draggable() bool { return !w.fixed }

// SetBounds commits a new rectangle.
func (w *Widget) SetBounds(r grid.Rect) { w.rect = r }

func (w *Widget) String() string { return w.ID }

// Spec describes a widget to add. Zero Width and Height fall back to the
// widget type's default size. A nil Position lets the target choose.
type Spec struct {
	ID       string
	Type     string
	Width    int
	Height   int
	Position *grid.Cell
	Fixed    bool
	Metadata map[string]any
}

// At is a helper for Spec.Position.
func At(x, y int) *grid.Cell { return &grid.Cell{X: x, Y: y} }
