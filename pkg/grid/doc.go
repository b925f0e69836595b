// Package grid implements the placement and collision engine behind a
// dashboard target: a rectangular grid of cells holding widgets.
//
// # Variants
//
// Two variants implement the [Grid] contract:
//
//   - [FreeGrid] places widgets at explicit cells and allows gaps. Row
//     occupancy is a uint32 bitmask, so a free grid never exceeds
//     [MaxColumns] columns. A placement that collides with other widgets
//     pushes them right, or down when the right is blocked, recursively.
//   - [FlowGrid] keeps widgets in an ordered list packed along a flow axis
//     without gaps. Coordinates only choose a widget's position in the
//     order; every successor shifts to make room.
//
// # Atomicity
//
// TryPlace either commits a complete, collision-free layout or changes
// nothing. Displacement is computed on a private copy of the grid state
// and only reaches widgets through [Widget.SetBounds] once it has
// succeeded. Observers registered with Observe run after the commit.
//
//	g := grid.NewFree(grid.FreeConfig{MinRows: 2, MinColumns: 3})
//	a := grid.NewItem("a", grid.Rect{Width: 1, Height: 1})
//	ok, err := g.TryPlace(a, grid.At(1, 0))
//
// # Snapshots
//
// Snapshot returns an opaque deep copy that Restore can reinstate any
// number of times. A drag preview takes a snapshot on grab and restores it
// on cancel; see package board.
package grid
