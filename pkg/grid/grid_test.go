package grid

import (
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		typ     LayoutType
		want    string
		wantErr bool
	}{
		{"", "*grid.FreeGrid", false},
		{LayoutFree, "*grid.FreeGrid", false},
		{LayoutFlow, "*grid.FlowGrid", false},
		{"masonry", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			g, err := New(Config{Type: tt.typ})
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidConfig) {
					t.Errorf("New(%q) error = %v, want %s", tt.typ, err, errors.ErrCodeInvalidConfig)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q): %v", tt.typ, err)
			}
			switch g.(type) {
			case *FreeGrid:
				if tt.want != "*grid.FreeGrid" {
					t.Errorf("New(%q) = %T", tt.typ, g)
				}
			case *FlowGrid:
				if tt.want != "*grid.FlowGrid" {
					t.Errorf("New(%q) = %T", tt.typ, g)
				}
			}
		})
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 1, Y: 2, Width: 3, Height: 2}
	if r.Right() != 4 || r.Bottom() != 4 {
		t.Errorf("Right/Bottom = %d/%d", r.Right(), r.Bottom())
	}
	if !r.Contains(Cell{X: 3, Y: 3}) || r.Contains(Cell{X: 4, Y: 3}) {
		t.Error("Contains is not half-open")
	}
	if !r.Overlaps(Rect{X: 3, Y: 3, Width: 5, Height: 5}) {
		t.Error("expected overlap")
	}
	if r.Overlaps(Rect{X: 4, Y: 2, Width: 1, Height: 1}) {
		t.Error("adjacent rectangles overlap")
	}
	if r.Overlaps(Rect{X: 1, Y: 2}) {
		t.Error("empty rectangle overlaps")
	}
	if got := r.String(); got != "(1,2 3x2)" {
		t.Errorf("String() = %q", got)
	}
}

func TestConstraintsClamp(t *testing.T) {
	tests := []struct {
		name string
		c    Constraints
		w, h int
		ww   int
		wh   int
	}{
		{"unbounded", Constraints{}, 5, 7, 5, 7},
		{"zero size", Constraints{}, 0, -2, 1, 1},
		{"minimum", Constraints{MinWidth: 3, MinHeight: 2}, 1, 1, 3, 2},
		{"maximum", Constraints{MaxWidth: 2, MaxHeight: 1}, 4, 4, 2, 1},
		{"max below min", Constraints{MinWidth: 3, MaxWidth: 2}, 1, 1, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.c.Clamp(tt.w, tt.h)
			if w != tt.ww || h != tt.wh {
				t.Errorf("Clamp(%d, %d) = %d, %d; want %d, %d", tt.w, tt.h, w, h, tt.ww, tt.wh)
			}
		})
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{OpPlace: "place", OpRemove: "remove", OpRestore: "restore", OpClear: "clear", Op(9): "op(9)"} {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(op), got, want)
		}
	}
}
