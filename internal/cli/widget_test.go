package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestPlace(t *testing.T) {
	ws := newWorkspace(t)
	place := func(args ...string) error {
		t.Helper()
		_, err := execute(t, append([]string{"place", ws.layout, "--config", ws.config}, args...)...)
		return err
	}

	if err := place("--id", "a", "--type", "stat", "-x", "0", "-y", "0"); err != nil {
		t.Fatalf("place a: %v", err)
	}
	l := readLayout(t, ws.layout)
	if e, ok := entry(l, "main", "a"); !ok || e.Type != "stat" || e.Width != 2 || e.Height != 1 {
		t.Fatalf("a = %+v", e)
	}

	// Moving onto an occupied cell pushes the occupant down.
	if err := place("--id", "b", "--width", "2", "-x", "2", "-y", "0"); err != nil {
		t.Fatalf("place b: %v", err)
	}
	if err := place("--id", "a", "-x", "2", "-y", "0"); err != nil {
		t.Fatalf("move a: %v", err)
	}
	l = readLayout(t, ws.layout)
	if e, _ := entry(l, "main", "b"); e.X != 2 || e.Y != 1 {
		t.Errorf("b = %+v, want (2,1)", e)
	}

	if err := place("--id", "b", "--width", "1"); err != nil {
		t.Fatalf("resize b: %v", err)
	}
	if e, _ := entry(readLayout(t, ws.layout), "main", "b"); e.Width != 1 || e.Height != 1 {
		t.Errorf("resized b = %+v", e)
	}

	if err := place("--target", "side", "--width", "2"); err != nil {
		t.Fatalf("place generated id: %v", err)
	}
	if n := len(readLayout(t, ws.layout).Targets["side"]); n != 1 {
		t.Errorf("side holds %d widgets", n)
	}
}

func TestPlaceOutput(t *testing.T) {
	ws := newWorkspace(t)
	out, err := execute(t, "place", ws.layout, "--config", ws.config, "--target", "side", "--id", "s", "--width", "1")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Placed", "on side", ws.layout, "free 4x2, 0 widgets", "flow 2x1, 1 widget"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPlaceRejected(t *testing.T) {
	ws := newWorkspace(t)
	if _, err := execute(t, "place", ws.layout, "--config", ws.config, "--id", "a", "-W", "2", "-x", "0", "-y", "0"); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(ws.layout)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"too wide", []string{"--id", "big", "-W", "9", "-x", "0", "-y", "0"}, errors.ErrCodePlacementRejected},
		{"x without y", []string{"--id", "c", "-x", "1"}, errors.ErrCodeInvalidInput},
		{"unknown target", []string{"--target", "nope"}, errors.ErrCodeTargetNotFound},
		{"duplicate id elsewhere", []string{"--target", "side", "--id", "a"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"place", ws.layout, "--config", ws.config}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	after, _ := os.ReadFile(ws.layout)
	if !bytes.Equal(before, after) {
		t.Errorf("layout changed by failed placements:\n%s", after)
	}
}

func TestRemove(t *testing.T) {
	ws := newWorkspace(t)
	if _, err := execute(t, "place", ws.layout, "--config", ws.config, "--id", "a", "-x", "0", "-y", "0"); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "remove", ws.layout, "--config", ws.config); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("remove without --id = %v", err)
	}
	if _, err := execute(t, "remove", ws.layout, "--config", ws.config, "--id", "nope"); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("remove nope = %v", err)
	}
	if _, err := execute(t, "remove", ws.layout, "--config", ws.config, "--id", "a", "-t", "side"); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("remove from wrong target = %v", err)
	}
	if _, err := execute(t, "remove", ws.layout, "--config", ws.config, "--id", "a"); err != nil {
		t.Fatalf("remove a: %v", err)
	}
	if l := readLayout(t, ws.layout); l.Len() != 0 {
		t.Errorf("layout still holds %d widgets", l.Len())
	}
}
