package grid

import (
	"fmt"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// LayoutType selects a grid variant.
type LayoutType string

const (
	// LayoutFree places widgets at explicit coordinates and allows gaps.
	LayoutFree LayoutType = "free"
	// LayoutFlow packs widgets in order along a flow axis without gaps.
	LayoutFlow LayoutType = "flow"
)

// Grid is the placement contract shared by both variants. It is the only
// surface a target controller depends on.
//
// A false result from TryPlace or Remove means nothing changed: occupancy,
// dimensions and every widget rectangle are exactly as before the call.
// Grids are not safe for concurrent use.
type Grid interface {
	// TryPlace places w, displacing or shifting other widgets as the
	// variant requires. An error reports a caller contract violation.
	TryPlace(w Widget, opts ...PlaceOption) (bool, error)

	// Remove evicts w from all bookkeeping.
	Remove(w Widget) bool

	// Snapshot captures the full grid state.
	Snapshot() Snapshot

	// Restore replaces the grid state with s and recommits every
	// snapshotted widget rectangle.
	Restore(s Snapshot) error

	// Clear evicts every widget and resets the dimensions to their floors.
	Clear()

	// MapRawCell converts a hovered cell into the cell a drop there would
	// occupy.
	MapRawCell(c Cell) Cell

	// Rows returns the current row count.
	Rows() int

	// Columns returns the current column count.
	Columns() int

	// Widgets returns the placed widgets in reading (or flow) order.
	Widgets() []Widget

	// Bounds returns the committed rectangle of a placed widget.
	Bounds(w Widget) (Rect, bool)

	// SetShadow marks w as the drag preview widget, or clears the mark
	// when w is nil.
	SetShadow(w Widget)

	// Observe registers fn to be called after every committed mutation.
	Observe(fn Observer)
}

// Config selects and configures a grid variant.
type Config struct {
	Type LayoutType
	Free FreeConfig
	Flow FlowConfig
}

// New builds the grid variant selected by cfg.Type.
func New(cfg Config) (Grid, error) {
	switch cfg.Type {
	case LayoutFree, "":
		return NewFree(cfg.Free), nil
	case LayoutFlow:
		return NewFlow(cfg.Flow), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown layout type %q", cfg.Type)
	}
}

// Op names a committed grid mutation.
type Op int

const (
	OpPlace Op = iota
	OpRemove
	OpRestore
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpPlace:
		return "place"
	case OpRemove:
		return "remove"
	case OpRestore:
		return "restore"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Change describes a committed mutation. Widget is nil for restore and
// clear.
type Change struct {
	Op     Op
	Widget Widget
}

// Observer receives on-committed notifications. It is never called for a
// placement or removal that failed.
type Observer func(Change)

// Snapshot is an opaque, immutable copy of a grid's state. Only the grid
// variant that produced a snapshot can restore it.
type Snapshot interface {
	variant() LayoutType
}

// base holds what both variants share: observers and the shadow widget.
type base struct {
	observers []Observer
	shadow    Widget
}

func (b *base) Observe(fn Observer) {
	if fn != nil {
		b.observers = append(b.observers, fn)
	}
}

func (b *base) SetShadow(w Widget) { b.shadow = w }

func (b *base) notify(op Op, w Widget) {
	c := Change{Op: op, Widget: w}
	for _, fn := range b.observers {
		fn(c)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
