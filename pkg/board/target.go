package board

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/observability"
)

// Target is one grid of a board together with the widgets placed on it.
// Its methods take the board lock.
type Target struct {
	b       *Board
	cfg     config.Target
	grid    grid.Grid
	widgets map[string]*Widget
}

func newTarget(b *Board, cfg config.Target) (*Target, error) {
	g, err := grid.New(cfg.GridConfig())
	if err != nil {
		return nil, err
	}
	t := &Target{b: b, cfg: cfg, grid: g, widgets: make(map[string]*Widget)}
	g.Observe(func(c grid.Change) {
		id := ""
		if w, ok := c.Widget.(*Widget); ok {
			id = w.ID
		}
		b.notify(Change{Target: cfg.Key, Op: c.Op, Widget: id})
	})
	return t, nil
}

// Key returns the target key.
func (t *Target) Key() string { return t.cfg.Key }

// Config returns the target configuration.
func (t *Target) Config() config.Target { return t.cfg }

// Grid returns the underlying grid. Callers must not mutate it while other
// goroutines use the board.
func (t *Target) Grid() grid.Grid { return t.grid }

// Widget returns the widget with the given ID.
func (t *Target) Widget(id string) (*Widget, bool) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	w, ok := t.widgets[id]
	return w, ok
}

// Widgets returns the placed widgets in grid order.
func (t *Target) Widgets() []*Widget {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	return t.list()
}

func (t *Target) list() []*Widget {
	ws := t.grid.Widgets()
	out := make([]*Widget, 0, len(ws))
	for _, w := range ws {
		if bw, ok := w.(*Widget); ok {
			out = append(out, bw)
		}
	}
	return out
}

// Add creates a widget from spec and places it. A placement the grid
// rejects returns an ErrCodePlacementRejected error and adds nothing.
func (t *Target) Add(spec Spec) (*Widget, error) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if err := t.b.idle(); err != nil {
		return nil, err
	}
	return t.add(spec)
}

func (t *Target) add(spec Spec) (*Widget, error) {
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	if err := errors.ValidateKey("widget id", spec.ID); err != nil {
		return nil, err
	}
	if _, _, exists := t.b.find(spec.ID); exists {
		return nil, errors.New(errors.ErrCodeInvalidInput, "widget %s already exists", spec.ID)
	}

	w := &Widget{ID: spec.ID, Type: spec.Type, Metadata: spec.Metadata, fixed: spec.Fixed}
	width, height := spec.Width, spec.Height
	if wt, ok := t.b.cfg.Type(spec.Type); ok {
		w.limits = wt.Constraints()
		w.fixed = w.fixed || wt.Fixed
		if width == 0 {
			width = wt.Width
		}
		if height == 0 {
			height = wt.Height
		}
	}
	w.rect = grid.Rect{Width: width, Height: height}

	pos := spec.Position
	if pos == nil && t.cfg.GridConfig().Type != grid.LayoutFlow {
		pos = t.firstFit(w)
	}
	opts := []grid.PlaceOption{grid.Size(width, height)}
	if pos != nil {
		opts = append(opts, grid.AtCell(*pos))
	}
	if err := t.place(w, opts...); err != nil {
		return nil, err
	}
	t.widgets[w.ID] = w
	return w, nil
}

// firstFit returns the first cell in reading order where w fits without
// displacing anything, or the first column below the last row.
func (t *Target) firstFit(w *Widget) *grid.Cell {
	width, height := w.limits.Clamp(w.rect.Width, w.rect.Height)
	rows, cols := t.grid.Rows(), t.grid.Columns()
	placed := t.grid.Widgets()
	for y := 0; y+height <= rows; y++ {
		for x := 0; x+width <= cols; x++ {
			r := grid.Rect{X: x, Y: y, Width: width, Height: height}
			free := true
			for _, o := range placed {
				if ob, _ := t.grid.Bounds(o); ob.Overlaps(r) {
					free = false
					break
				}
			}
			if free {
				return &grid.Cell{X: x, Y: y}
			}
		}
	}
	return &grid.Cell{X: 0, Y: rows}
}

// place runs one TryPlace with hooks and logging.
func (t *Target) place(w *Widget, opts ...grid.PlaceOption) error {
	start := time.Now()
	ok, err := t.grid.TryPlace(w, opts...)
	observability.Board().OnPlace(t.cfg.Key, w.ID, ok, time.Since(start))
	if err != nil {
		return err
	}
	if !ok {
		t.b.Logger.Debug("placement rejected", "target", t.cfg.Key, "widget", w.ID)
		return errors.New(errors.ErrCodePlacementRejected, "widget %s does not fit on target %s", w.ID, t.cfg.Key)
	}
	t.b.Logger.Debug("placed", "target", t.cfg.Key, "widget", w.ID, "rect", w.rect)
	return nil
}

// Move places the widget at (x, y), displacing or shifting others.
func (t *Target) Move(id string, x, y int) error {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if err := t.b.idle(); err != nil {
		return err
	}
	w, err := t.lookup(id)
	if err != nil {
		return err
	}
	return t.place(w, grid.At(x, y))
}

// Resize changes the widget's size in place.
func (t *Target) Resize(id string, width, height int) error {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if err := t.b.idle(); err != nil {
		return err
	}
	w, err := t.lookup(id)
	if err != nil {
		return err
	}
	return t.place(w, grid.At(w.rect.X, w.rect.Y), grid.Size(width, height))
}

// Delete removes the widget from the target.
func (t *Target) Delete(id string) error {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if err := t.b.idle(); err != nil {
		return err
	}
	w, err := t.lookup(id)
	if err != nil {
		return err
	}
	t.remove(w)
	return nil
}

func (t *Target) remove(w *Widget) {
	t.grid.Remove(w)
	delete(t.widgets, w.ID)
	observability.Board().OnRemove(t.cfg.Key, w.ID)
	t.b.Logger.Debug("removed", "target", t.cfg.Key, "widget", w.ID)
}

func (t *Target) lookup(id string) (*Widget, error) {
	w, ok := t.widgets[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeWidgetNotFound, "widget %s not found on target %s", id, t.cfg.Key)
	}
	return w, nil
}

// savepoint captures the grid and widget set for rollback.
type savepoint struct {
	t       *Target
	snap    grid.Snapshot
	widgets map[string]*Widget
}

func (t *Target) save() savepoint {
	return savepoint{t: t, snap: t.grid.Snapshot(), widgets: maps.Clone(t.widgets)}
}

func (s savepoint) restore() {
	if err := s.t.grid.Restore(s.snap); err != nil {
		// Snapshots always come from the same grid.
		panic(err)
	}
	s.t.widgets = maps.Clone(s.widgets)
	observability.Board().OnRestore(s.t.cfg.Key)
}
