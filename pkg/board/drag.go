package board

import (
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Drag is an open drag session on one widget. A board allows one drag at
// a time; other mutations fail with ErrCodeDragInProgress until the drag
// is committed or cancelled.
type Drag struct {
	b    *Board
	t    *Target
	w    *Widget
	save savepoint
	ok   bool
}

// Grab starts dragging the widget id on target key.
func (b *Board) Grab(key, id string) (*Drag, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.idle(); err != nil {
		return nil, err
	}
	t, err := b.Target(key)
	if err != nil {
		return nil, err
	}
	w, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if !w.Draggable() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "widget %s is fixed", id)
	}
	d := &Drag{b: b, t: t, w: w, save: t.save(), ok: true}
	t.grid.SetShadow(w)
	b.drag = d
	b.Logger.Debug("drag started", "target", key, "widget", id)
	return d, nil
}

// Widget returns the dragged widget.
func (d *Drag) Widget() *Widget { return d.w }

// Accepted reports whether the last preview was possible.
func (d *Drag) Accepted() bool {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	return d.ok
}

// Target returns the target the widget is dragged on.
func (d *Drag) Target() *Target { return d.t }

// Preview shows the widget dropped at the hovered cell (x, y), starting
// from the layout at grab time. It reports whether that drop is possible;
// an impossible drop shows the original layout.
func (d *Drag) Preview(x, y int) (bool, error) {
	return d.preview(x, y, nil)
}

// PreviewSize is Preview with a new widget size.
func (d *Drag) PreviewSize(x, y, width, height int) (bool, error) {
	return d.preview(x, y, []grid.PlaceOption{grid.Size(width, height)})
}

func (d *Drag) preview(x, y int, extra []grid.PlaceOption) (bool, error) {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if err := d.active(); err != nil {
		return false, err
	}
	d.save.restore()
	g := d.t.grid
	g.SetShadow(d.w)
	cell := g.MapRawCell(grid.Cell{X: x, Y: y})
	err := d.t.place(d.w, append([]grid.PlaceOption{grid.AtCell(cell)}, extra...)...)
	switch {
	case err == nil:
		d.ok = true
	case errors.Is(err, errors.ErrCodePlacementRejected):
		d.ok = false
	default:
		return false, err
	}
	return d.ok, nil
}

// Commit ends the drag and keeps the last successful preview. If the last
// preview was rejected the original layout stays.
func (d *Drag) Commit() error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if err := d.active(); err != nil {
		return err
	}
	d.end()
	d.b.Logger.Debug("drag committed", "target", d.t.cfg.Key, "widget", d.w.ID, "rect", d.w.rect)
	return nil
}

// Cancel ends the drag and restores the layout from grab time.
func (d *Drag) Cancel() error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if err := d.active(); err != nil {
		return err
	}
	d.save.restore()
	d.end()
	d.b.Logger.Debug("drag cancelled", "target", d.t.cfg.Key, "widget", d.w.ID)
	return nil
}

func (d *Drag) active() error {
	if d.b.drag != d {
		return errors.New(errors.ErrCodeInvalidInput, "drag of %s has ended", d.w.ID)
	}
	return nil
}

func (d *Drag) end() {
	d.t.grid.SetShadow(nil)
	d.b.drag = nil
}
