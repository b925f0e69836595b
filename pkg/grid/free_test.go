package grid

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestFreeConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   FreeConfig
		want FreeConfig
	}{
		{"zero", FreeConfig{}, FreeConfig{MaxColumns: 32}},
		{"column cap", FreeConfig{MaxColumns: 64}, FreeConfig{MaxColumns: 32}},
		{"min above max", FreeConfig{MinColumns: 40, MaxColumns: 12}, FreeConfig{MinColumns: 12, MaxColumns: 12}},
		{"max rows below floor", FreeConfig{MinRows: 4, MaxRows: 2}, FreeConfig{MinRows: 4, MaxRows: 4, MaxColumns: 32}},
		{"negative", FreeConfig{MinRows: -1, MaxRows: -3}, FreeConfig{MaxColumns: 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFreeRequiresPosition(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 1})
	a := item("a", 1, 1)

	ok, err := g.TryPlace(a)
	if ok {
		t.Error("TryPlace without position = true, want false")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPlacement) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidPlacement)
	}
	if _, placed := g.Bounds(a); placed {
		t.Error("widget should not be placed")
	}

	if _, err := g.TryPlace(nil, At(0, 0)); !errors.Is(err, errors.ErrCodeInvalidPlacement) {
		t.Errorf("nil widget error = %v, want %s", err, errors.ErrCodeInvalidPlacement)
	}
}

// A widget pushed along X must not drag a neighbour down with it: when the
// rightward cascade runs out of columns the pushed widget moves down
// instead.
func TestFreeCascadeFallsBackToY(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 2, MinColumns: 3, MaxColumns: 3})
	a, b, c := item("a", 1, 1), item("b", 1, 1), item("c", 1, 1)
	mustPlace(t, g, a, At(0, 1))
	mustPlace(t, g, b, At(1, 1))
	mustPlace(t, g, c, At(2, 1))

	d := item("d", 1, 1)
	mustPlace(t, g, d, At(1, 1))
	assertRect(t, b, Rect{X: 1, Y: 2, Width: 1, Height: 1})
	assertRect(t, c, Rect{X: 2, Y: 1, Width: 1, Height: 1})

	e := item("e", 1, 1)
	mustPlace(t, g, e, At(2, 1))
	assertRect(t, c, Rect{X: 2, Y: 2, Width: 1, Height: 1})

	assertRows(t, g, "---", "ade", "-bc")
	checkFree(t, g)
}

func TestFreeBlockedRightPushesDown(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 2, MinColumns: 3})
	wall := fixed("A", 1, 1)
	a := item("a", 1, 2)
	mustPlace(t, g, wall, At(2, 0))
	mustPlace(t, g, a, At(1, 0))

	b := item("b", 2, 1)
	ok, err := g.TryPlace(b, At(0, 0))
	if err != nil || !ok {
		t.Fatalf("TryPlace(b) = %v, %v; want true, nil", ok, err)
	}

	assertRect(t, a, Rect{X: 1, Y: 1, Width: 1, Height: 2})
	assertRect(t, wall, Rect{X: 2, Y: 0, Width: 1, Height: 1})
	assertRows(t, g, "bbA", "-a-", "-a-")
	checkFree(t, g)
}

func TestFreeFixedColliderFails(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 2})
	wall := fixed("A", 1, 1)
	mustPlace(t, g, wall, At(0, 0))

	b := &recorder{Item: item("b", 1, 1)}
	ok, err := g.TryPlace(b, At(0, 0))
	if err != nil || ok {
		t.Fatalf("TryPlace = %v, %v; want false, nil", ok, err)
	}
	if b.commits != 0 {
		t.Errorf("SetBounds called %d times on rejected widget", b.commits)
	}
	assertRows(t, g, "A-")
	checkFree(t, g)
}

func TestFreeFailureIsSideEffectFree(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MaxRows: 1, MinColumns: 3, MaxColumns: 3})
	a := &recorder{Item: item("a", 1, 1)}
	b := &recorder{Item: item("b", 1, 1)}
	c := &recorder{Item: item("c", 1, 1)}
	mustPlace(t, g, a, At(0, 0))
	mustPlace(t, g, b, At(1, 0))
	mustPlace(t, g, c, At(2, 0))

	changes := 0
	g.Observe(func(Change) { changes++ })
	before := []int{a.commits, b.commits, c.commits}

	d := item("d", 1, 1)
	ok, err := g.TryPlace(d, At(0, 0))
	if err != nil || ok {
		t.Fatalf("TryPlace = %v, %v; want false, nil", ok, err)
	}

	after := []int{a.commits, b.commits, c.commits}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("widget %d committed during a failed placement", i)
		}
	}
	if changes != 0 {
		t.Errorf("observer called %d times for a failed placement", changes)
	}
	if g.Rows() != 1 || g.Columns() != 3 {
		t.Errorf("dimensions = %dx%d, want 3x1", g.Columns(), g.Rows())
	}
	assertRows(t, g, "abc")
	checkFree(t, g)
}

func TestFreeBoundary(t *testing.T) {
	t.Run("wider than max columns", func(t *testing.T) {
		g := NewFree(FreeConfig{MinColumns: 4, MaxColumns: 4})
		ok, err := g.TryPlace(item("a", 5, 1), At(0, 0))
		if err != nil || ok {
			t.Errorf("TryPlace = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("wider than bitmask", func(t *testing.T) {
		g := NewFree(FreeConfig{})
		ok, err := g.TryPlace(item("a", 33, 1), At(0, 0))
		if err != nil || ok {
			t.Errorf("TryPlace = %v, %v; want false, nil", ok, err)
		}
		mustPlace(t, g, item("b", 32, 1), At(0, 0))
		if g.Columns() != 32 {
			t.Errorf("Columns() = %d, want 32", g.Columns())
		}
	})

	t.Run("max rows", func(t *testing.T) {
		g := NewFree(FreeConfig{MinRows: 1, MaxRows: 2, MinColumns: 1})
		ok, _ := g.TryPlace(item("a", 1, 3), At(0, 0))
		if ok {
			t.Error("TryPlace taller than max rows = true, want false")
		}
	})

	t.Run("min width clamps up", func(t *testing.T) {
		g := NewFree(FreeConfig{MinRows: 1, MinColumns: 4})
		a := item("a", 1, 1)
		a.Limits = Constraints{MinWidth: 3, MaxHeight: 1}
		mustPlace(t, g, a, At(0, 0), Size(1, 2))
		assertRect(t, a, Rect{X: 0, Y: 0, Width: 3, Height: 1})
	})

	t.Run("clamped width collides", func(t *testing.T) {
		g := NewFree(FreeConfig{MinRows: 1, MinColumns: 3, MaxColumns: 3})
		wall := fixed("A", 1, 1)
		mustPlace(t, g, wall, At(2, 0))
		a := item("a", 1, 1)
		a.Limits = Constraints{MinWidth: 3}
		ok, _ := g.TryPlace(a, At(0, 0))
		if ok {
			t.Error("clamped widget overlapping a fixed widget was placed")
		}
	})

	t.Run("missing size defaults to one", func(t *testing.T) {
		g := NewFree(FreeConfig{MinRows: 1, MinColumns: 1})
		a := item("a", 0, 0)
		mustPlace(t, g, a, At(0, 0))
		assertRect(t, a, Rect{Width: 1, Height: 1})
	})
}

func TestFreeClampsToCurrentBounds(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 2})
	a := item("a", 1, 1)
	mustPlace(t, g, a, At(10, 10))

	assertRect(t, a, Rect{X: 2, Y: 1, Width: 1, Height: 1})
	if g.Columns() != 3 || g.Rows() != 2 {
		t.Errorf("dimensions = %dx%d, want 3x2", g.Columns(), g.Rows())
	}

	if got := g.MapRawCell(Cell{X: 99, Y: -4}); got != (Cell{X: 3, Y: 0}) {
		t.Errorf("MapRawCell() = %v, want {3 0}", got)
	}
	checkFree(t, g)
}

func TestFreeMoveWidget(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 3})
	a, b := item("a", 1, 1), item("b", 1, 1)
	mustPlace(t, g, a, At(0, 0))
	mustPlace(t, g, b, At(1, 0))

	// Moving onto a neighbour displaces it, moving onto itself is a no-op.
	mustPlace(t, g, a, At(1, 0))
	assertRows(t, g, "-ab")
	mustPlace(t, g, a, At(1, 0))
	assertRows(t, g, "-ab")
	checkFree(t, g)
}

func TestFreeDisplacementExpands(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 1})
	a := item("a", 1, 1)
	mustPlace(t, g, a, At(0, 0))

	b := item("b", 2, 1)
	mustPlace(t, g, b, At(0, 0))
	assertRect(t, a, Rect{X: 2, Y: 0, Width: 1, Height: 1})
	if g.Columns() != 3 {
		t.Errorf("Columns() = %d, want 3", g.Columns())
	}
	checkFree(t, g)
}

func TestFreeRemoveTrims(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 1})
	a, b, c := item("a", 1, 1), item("b", 1, 1), item("c", 1, 1)
	mustPlace(t, g, a, At(0, 0))
	mustPlace(t, g, b, At(1, 0))
	mustPlace(t, g, c, At(2, 1))
	assertRows(t, g, "ab-", "--c")

	steps := []struct {
		remove     *Item
		rows, cols int
	}{
		{c, 1, 2},
		{b, 1, 1},
		{a, 1, 1},
	}
	for _, st := range steps {
		if !g.Remove(st.remove) {
			t.Fatalf("Remove(%s) = false", st.remove.ID)
		}
		if g.Rows() != st.rows || g.Columns() != st.cols {
			t.Errorf("after removing %s: %dx%d, want %dx%d", st.remove.ID, g.Columns(), g.Rows(), st.cols, st.rows)
		}
		checkFree(t, g)
	}

	if g.Remove(a) {
		t.Error("Remove of an absent widget = true")
	}
}

func TestFreeRemoveKeepsInteriorGaps(t *testing.T) {
	g := NewFree(FreeConfig{})
	a, b := item("a", 1, 1), item("b", 1, 1)
	mustPlace(t, g, a, At(0, 0))
	mustPlace(t, g, b, At(1, 1))
	g.Remove(a)

	if g.Rows() != 2 || g.Columns() != 2 {
		t.Errorf("dimensions = %dx%d, want 2x2", g.Columns(), g.Rows())
	}
	assertRows(t, g, "--", "-b")
}

func TestFreeClear(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 2, MinColumns: 2})
	mustPlace(t, g, item("a", 3, 3), At(0, 0))

	var got []Op
	g.Observe(func(c Change) { got = append(got, c.Op) })
	g.Clear()

	if g.Rows() != 2 || g.Columns() != 2 || len(g.Widgets()) != 0 {
		t.Errorf("after Clear: %dx%d with %d widgets", g.Columns(), g.Rows(), len(g.Widgets()))
	}
	if len(got) != 1 || got[0] != OpClear {
		t.Errorf("observed %v, want [clear]", got)
	}
	checkFree(t, g)
}

func TestFreeObserverOrder(t *testing.T) {
	g := NewFree(FreeConfig{MinRows: 1, MinColumns: 2})
	a, b := item("a", 1, 1), item("b", 1, 1)

	var ops []Op
	var committedA bool
	g.Observe(func(c Change) {
		ops = append(ops, c.Op)
		if c.Widget == b {
			// Displaced widgets are committed before observers run.
			committedA = a.Rect.X == 1
		}
	})
	mustPlace(t, g, a, At(0, 0))
	mustPlace(t, g, b, At(0, 0))
	g.Remove(b)

	want := []Op{OpPlace, OpPlace, OpRemove}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %v, want %v", i, ops[i], want[i])
		}
	}
	if !committedA {
		t.Error("displaced widget was not committed before notification")
	}
}

// Random placements and removals must keep occupancy consistent and leave
// the grid untouched whenever a placement is rejected.
func TestFreeRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewFree(FreeConfig{MinRows: 2, MinColumns: 3, MaxRows: 10, MaxColumns: 8})

	pool := make([]*Item, 12)
	for i := range pool {
		pool[i] = item(string(rune('a'+i)), 1+rng.Intn(3), 1+rng.Intn(3))
		if i%5 == 4 {
			pool[i].Fixed = true
		}
	}

	for step := 0; step < 400; step++ {
		w := pool[rng.Intn(len(pool))]
		if _, placed := g.Bounds(w); placed && rng.Intn(4) == 0 {
			g.Remove(w)
			checkFree(t, g)
			continue
		}

		before := make(map[*Item]Rect, len(pool))
		for _, it := range pool {
			before[it] = it.Rect
		}
		rows, cols := g.Rows(), g.Columns()
		cells := dump(g)

		ok, err := g.TryPlace(w, At(rng.Intn(9), rng.Intn(9)), Size(1+rng.Intn(3), 1+rng.Intn(3)))
		if err != nil {
			t.Fatalf("step %d: TryPlace error: %v", step, err)
		}
		if !ok {
			for _, it := range pool {
				if it.Rect != before[it] {
					t.Fatalf("step %d: %s moved from %v to %v during a rejected placement", step, it.ID, before[it], it.Rect)
				}
			}
			if g.Rows() != rows || g.Columns() != cols {
				t.Fatalf("step %d: dimensions changed during a rejected placement", step)
			}
			if got := dump(g); !slices.Equal(got, cells) {
				t.Fatalf("step %d: occupancy changed during a rejected placement: %v, want %v", step, got, cells)
			}
		}
		checkFree(t, g)
	}
}
