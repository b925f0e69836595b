// Package board manages dashboards: named sets of targets, each a grid
// holding widgets.
//
// A Board is built from a [config.Board] and replays a [layout.Layout]
// into its grids. It is the only layer that knows widget IDs and widget
// types; the grid engine below it only sees [grid.Widget] handles.
//
// A grid reports an impossible placement as a plain false. The board turns
// that into an error with code [errors.ErrCodePlacementRejected], so that
// HTTP handlers and CLI commands can surface it.
//
// # Drag sessions
//
// [Board.Grab] starts a drag: the target's grid is snapshotted, and every
// [Drag.Preview] restores that snapshot before trying the new position, so
// previews never accumulate displacement. [Drag.Cancel] restores the
// original layout; [Drag.Commit] keeps the last preview.
//
// A Board is safe for concurrent use. Callbacks registered with OnCommit
// run with the board lock held and must not call back into the board.
package board

import (
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/layout"
)

// Change is a committed mutation of one target. Widget is empty for
// restores and clears.
type Change struct {
	Target string
	Op     grid.Op
	Widget string
}

// Board is a dashboard.
type Board struct {
	// Logger receives debug output for every mutation.
	Logger *log.Logger

	cfg       config.Board
	mu        sync.Mutex
	targets   map[string]*Target
	observers []func(Change)
	drag      *Drag
}

// New builds an empty board from cfg.
func New(cfg config.Board) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		Logger:  log.Default(),
		cfg:     cfg,
		targets: make(map[string]*Target, len(cfg.Targets)),
	}
	for _, tc := range cfg.Targets {
		t, err := newTarget(b, tc)
		if err != nil {
			return nil, err
		}
		b.targets[tc.Key] = t
	}
	return b, nil
}

// Load builds a board from cfg and imports l into it.
func Load(cfg config.Board, l layout.Layout) (*Board, error) {
	b, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := b.Import(l); err != nil {
		return nil, err
	}
	return b, nil
}

// Name returns the configured board name.
func (b *Board) Name() string { return b.cfg.Name }

// Config returns the board configuration.
func (b *Board) Config() config.Board { return b.cfg }

// Keys returns the target keys in configuration order.
func (b *Board) Keys() []string {
	keys := make([]string, len(b.cfg.Targets))
	for i, tc := range b.cfg.Targets {
		keys[i] = tc.Key
	}
	return keys
}

// Target returns the target called key.
func (b *Board) Target(key string) (*Target, error) {
	t, ok := b.targets[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeTargetNotFound, "target %s not found", key)
	}
	return t, nil
}

// Find returns the target holding the widget with the given ID.
func (b *Board) Find(id string) (*Target, *Widget, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.find(id)
}

func (b *Board) find(id string) (*Target, *Widget, bool) {
	for _, key := range b.Keys() {
		t := b.targets[key]
		if w, ok := t.widgets[id]; ok {
			return t, w, true
		}
	}
	return nil, nil, false
}

// Inspect runs fn with the board lock held. fn may use Keys, Target and
// the targets' grids, but must not mutate them or call methods that lock
// the board (Find, Widgets, Widget and every mutation).
func (b *Board) Inspect(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// OnCommit registers fn to be called after every committed change.
func (b *Board) OnCommit(fn func(Change)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn != nil {
		b.observers = append(b.observers, fn)
	}
}

func (b *Board) notify(c Change) {
	for _, fn := range b.observers {
		fn(c)
	}
}

// idle fails while a drag session is open.
func (b *Board) idle() error {
	if b.drag != nil {
		return errors.New(errors.ErrCodeDragInProgress, "widget %s is being dragged", b.drag.w.ID)
	}
	return nil
}

// Transfer moves a widget from one target to another at (x, y). Either
// both grids change or neither does.
func (b *Board) Transfer(id, from, to string, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.idle(); err != nil {
		return err
	}
	src, err := b.Target(from)
	if err != nil {
		return err
	}
	dst, err := b.Target(to)
	if err != nil {
		return err
	}
	w, err := src.lookup(id)
	if err != nil {
		return err
	}
	if src == dst {
		return src.place(w, grid.At(x, y))
	}

	saves := []savepoint{src.save(), dst.save()}
	src.remove(w)
	if err := dst.place(w, grid.At(x, y)); err != nil {
		for _, s := range saves {
			s.restore()
		}
		return err
	}
	dst.widgets[w.ID] = w
	b.Logger.Debug("transferred", "widget", id, "from", from, "to", to)
	return nil
}

// Export returns the current layout of every target.
func (b *Board) Export() layout.Layout {
	b.mu.Lock()
	defer b.mu.Unlock()
	l := layout.Layout{Name: b.cfg.Name, Targets: make(map[string][]layout.Entry, len(b.targets))}
	for _, key := range b.Keys() {
		ws := b.targets[key].list()
		entries := make([]layout.Entry, len(ws))
		for i, w := range ws {
			entries[i] = layout.Entry{
				ID:       w.ID,
				Type:     w.Type,
				X:        w.rect.X,
				Y:        w.rect.Y,
				Width:    w.rect.Width,
				Height:   w.rect.Height,
				Fixed:    w.fixed,
				Metadata: maps.Clone(w.Metadata),
			}
		}
		l.Targets[key] = entries
	}
	return l
}

// Import replaces every target's widgets with the entries of l. If any
// entry is rejected the board is left exactly as it was.
func (b *Board) Import(l layout.Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.idle(); err != nil {
		return err
	}
	for _, key := range l.Keys() {
		if _, err := b.Target(key); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout %s", l.Name)
		}
	}

	saves := make([]savepoint, 0, len(b.targets))
	for _, key := range b.Keys() {
		saves = append(saves, b.targets[key].save())
	}
	rollback := func() {
		for _, s := range saves {
			s.restore()
		}
	}

	for _, key := range b.Keys() {
		t := b.targets[key]
		t.grid.Clear()
		t.widgets = make(map[string]*Widget)
	}
	for _, key := range l.Keys() {
		t := b.targets[key]
		for _, e := range importOrder(t.cfg.GridConfig(), l.Targets[key]) {
			spec := Spec{
				ID:       e.ID,
				Type:     e.Type,
				Width:    e.Width,
				Height:   e.Height,
				Position: At(e.X, e.Y),
				Fixed:    e.Fixed,
				Metadata: e.Metadata,
			}
			if _, err := t.add(spec); err != nil {
				rollback()
				return err
			}
		}
	}
	b.Logger.Debug("imported layout", "name", l.Name, "widgets", l.Len())
	return nil
}

// importOrder returns entries in the order that reproduces them: reading
// order for free grids, stored order for flow grids. A flow grid that
// prepends and ignores coordinates is fed in reverse.
func importOrder(cfg grid.Config, entries []layout.Entry) []layout.Entry {
	out := slices.Clone(entries)
	if cfg.Type != grid.LayoutFlow {
		slices.SortStableFunc(out, func(a, b layout.Entry) int {
			if a.Y != b.Y {
				return a.Y - b.Y
			}
			return a.X - b.X
		})
		return out
	}
	if cfg.Flow.DisallowInsert && cfg.Flow.Strategy == grid.StrategyPrepend {
		slices.Reverse(out)
	}
	return out
}
