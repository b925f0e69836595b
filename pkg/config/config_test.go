package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

const sampleTOML = `
name = "ops"

[[targets]]
key = "main"
layout = "free"
min_rows = 2
min_columns = 4
max_columns = 12

[[targets]]
key = "sidebar"
layout = "flow"
flow_axis = "column"
placement = "prepend"
disallow_insert = true
max_flow_axis = 4
rows = 3

[[types]]
name = "chart"
width = 2
min_width = 2
max_height = 3
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Name != "ops" || len(cfg.Targets) != 2 {
		t.Fatalf("got %+v", cfg)
	}

	main, ok := cfg.Target("main")
	if !ok {
		t.Fatal("main target missing")
	}
	gc := main.GridConfig()
	if gc.Type != grid.LayoutFree || gc.Free.MinRows != 2 || gc.Free.MinColumns != 4 || gc.Free.MaxColumns != 12 {
		t.Errorf("main grid config = %+v", gc)
	}

	side, _ := cfg.Target("sidebar")
	fc := side.GridConfig().Flow
	want := grid.FlowConfig{Axis: grid.FlowColumn, Strategy: grid.StrategyPrepend, DisallowInsert: true, MaxFlowAxis: 4, Rows: 3}
	if fc != want {
		t.Errorf("sidebar flow config = %+v, want %+v", fc, want)
	}

	chart, ok := cfg.Type("chart")
	if !ok {
		t.Fatal("chart type missing")
	}
	if c := chart.Constraints(); c.MinWidth != 2 || c.MaxHeight != 3 {
		t.Errorf("chart constraints = %+v", c)
	}
	if _, ok := cfg.Type("gauge"); ok {
		t.Error("unexpected gauge type")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"syntax", `name = `, "decode config"},
		{"unknown key", "[[targets]]\nkey = \"a\"\nmax_colums = 3\n", "unknown keys"},
		{"no targets", `name = "x"`, "no targets"},
		{"duplicate key", "[[targets]]\nkey = \"a\"\n[[targets]]\nkey = \"a\"\n", "duplicate target"},
		{"bad layout", "[[targets]]\nkey = \"a\"\nlayout = \"masonry\"\n", "unknown layout"},
		{"too wide", "[[targets]]\nkey = \"a\"\nmax_columns = 33\n", "exceeds 32"},
		{"bad axis", "[[targets]]\nkey = \"a\"\nlayout = \"flow\"\nflow_axis = \"diagonal\"\ncolumns = 2\n", "unknown flow_axis"},
		{"bad placement", "[[targets]]\nkey = \"a\"\nlayout = \"flow\"\nplacement = \"middle\"\ncolumns = 2\n", "unknown placement"},
		{"missing lane", "[[targets]]\nkey = \"a\"\nlayout = \"flow\"\n", "needs columns"},
		{"negative", "[[targets]]\nkey = \"a\"\nmin_rows = -1\n", "cannot be negative"},
		{"bad key", "[[targets]]\nkey = \"a/b\"\n", "path separators"},
		{"type limits", "[[targets]]\nkey = \"a\"\n[[types]]\nname = \"t\"\nmin_width = 3\nmax_width = 2\n", "below its minimum"},
		{"duplicate type", "[[targets]]\nkey = \"a\"\n[[types]]\nname = \"t\"\n[[types]]\nname = \"t\"\n", "duplicate widget type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil {
				t.Fatal("Parse() succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want it to contain %q", err, tt.want)
			}
			code := errors.GetCode(err)
			if code != errors.ErrCodeInvalidConfig && code != errors.ErrCodeInvalidKey {
				t.Errorf("code = %q", code)
			}
		})
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Default()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	path := filepath.Join(t.TempDir(), "board.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v\n%s", err, buf.String())
	}
	if len(cfg.Targets) != len(Default().Targets) || len(cfg.Types) != len(Default().Types) {
		t.Errorf("round trip lost entries: %+v", cfg)
	}
	for i, want := range Default().Targets {
		if cfg.Targets[i] != want {
			t.Errorf("target %d = %+v, want %+v", i, cfg.Targets[i], want)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}
