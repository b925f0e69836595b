// Package config loads board configuration from TOML.
//
// A board names its targets and the grid variant each one uses:
//
//	name = "ops"
//
//	[[targets]]
//	key = "main"
//	layout = "free"
//	min_rows = 2
//	min_columns = 4
//	max_columns = 12
//
//	[[targets]]
//	key = "sidebar"
//	layout = "flow"
//	flow_axis = "row"
//	placement = "append"
//	columns = 3
//
//	[[types]]
//	name = "chart"
//	width = 2
//	min_width = 2
//	max_height = 3
//
// Unknown keys are rejected so that typos surface at load time instead of
// silently producing an unbounded grid.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Board is the configuration of one dashboard.
type Board struct {
	Name    string       `toml:"name" json:"name" bson:"name"`
	Targets []Target     `toml:"targets" json:"targets" bson:"targets"`
	Types   []WidgetType `toml:"types,omitempty" json:"types,omitempty" bson:"types,omitempty"`
}

// Target configures one grid. Free-form keys (min_rows, min_columns,
// max_rows, max_columns) and flow keys (flow_axis, placement,
// disallow_insert, max_flow_axis, rows, columns) are read according to
// Layout.
type Target struct {
	Key    string `toml:"key" json:"key" bson:"key"`
	Layout string `toml:"layout" json:"layout" bson:"layout"`

	MinRows    int `toml:"min_rows,omitempty" json:"min_rows,omitempty" bson:"min_rows,omitempty"`
	MinColumns int `toml:"min_columns,omitempty" json:"min_columns,omitempty" bson:"min_columns,omitempty"`
	MaxRows    int `toml:"max_rows,omitempty" json:"max_rows,omitempty" bson:"max_rows,omitempty"`
	MaxColumns int `toml:"max_columns,omitempty" json:"max_columns,omitempty" bson:"max_columns,omitempty"`

	FlowAxis       string `toml:"flow_axis,omitempty" json:"flow_axis,omitempty" bson:"flow_axis,omitempty"`
	Placement      string `toml:"placement,omitempty" json:"placement,omitempty" bson:"placement,omitempty"`
	DisallowInsert bool   `toml:"disallow_insert,omitempty" json:"disallow_insert,omitempty" bson:"disallow_insert,omitempty"`
	MaxFlowAxis    int    `toml:"max_flow_axis,omitempty" json:"max_flow_axis,omitempty" bson:"max_flow_axis,omitempty"`
	Rows           int    `toml:"rows,omitempty" json:"rows,omitempty" bson:"rows,omitempty"`
	Columns        int    `toml:"columns,omitempty" json:"columns,omitempty" bson:"columns,omitempty"`
}

// WidgetType holds the default size and size limits of a widget type.
type WidgetType struct {
	Name      string `toml:"name" json:"name" bson:"name"`
	Width     int    `toml:"width,omitempty" json:"width,omitempty" bson:"width,omitempty"`
	Height    int    `toml:"height,omitempty" json:"height,omitempty" bson:"height,omitempty"`
	MinWidth  int    `toml:"min_width,omitempty" json:"min_width,omitempty" bson:"min_width,omitempty"`
	MaxWidth  int    `toml:"max_width,omitempty" json:"max_width,omitempty" bson:"max_width,omitempty"`
	MinHeight int    `toml:"min_height,omitempty" json:"min_height,omitempty" bson:"min_height,omitempty"`
	MaxHeight int    `toml:"max_height,omitempty" json:"max_height,omitempty" bson:"max_height,omitempty"`
	Fixed     bool   `toml:"fixed,omitempty" json:"fixed,omitempty" bson:"fixed,omitempty"`
}

// Constraints converts the type's limits.
func (t WidgetType) Constraints() grid.Constraints {
	return grid.Constraints{
		MinWidth:  t.MinWidth,
		MaxWidth:  t.MaxWidth,
		MinHeight: t.MinHeight,
		MaxHeight: t.MaxHeight,
	}
}

// Default returns the configuration written by "dashgrid config init".
func Default() Board {
	return Board{
		Name: "dashboard",
		Targets: []Target{
			{Key: "main", Layout: string(grid.LayoutFree), MinRows: 4, MinColumns: 12, MaxColumns: 12},
			{Key: "sidebar", Layout: string(grid.LayoutFlow), FlowAxis: string(grid.FlowRow), Placement: string(grid.StrategyAppend), Rows: 1, Columns: 3},
		},
		Types: []WidgetType{
			{Name: "chart", Width: 4, Height: 2, MinWidth: 2, MinHeight: 2},
			{Name: "stat", Width: 2, Height: 1, MaxHeight: 1},
			{Name: "text", Width: 3, Height: 1},
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Board{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates TOML configuration data.
func Parse(data []byte) (Board, error) {
	var cfg Board
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Board{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Board{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Board{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML to w.
func Write(w io.Writer, cfg Board) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks every target and widget type.
func (b Board) Validate() error {
	if len(b.Targets) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "board has no targets")
	}
	keys := make(map[string]bool, len(b.Targets))
	for _, t := range b.Targets {
		if err := t.Validate(); err != nil {
			return err
		}
		if keys[t.Key] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate target %q", t.Key)
		}
		keys[t.Key] = true
	}
	names := make(map[string]bool, len(b.Types))
	for _, wt := range b.Types {
		if wt.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "widget type without a name")
		}
		if names[wt.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate widget type %q", wt.Name)
		}
		names[wt.Name] = true
		if wt.Width < 0 || wt.Height < 0 || wt.MinWidth < 0 || wt.MinHeight < 0 || wt.MaxWidth < 0 || wt.MaxHeight < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "widget type %q has negative sizes", wt.Name)
		}
		if wt.MaxWidth > 0 && wt.MaxWidth < wt.MinWidth || wt.MaxHeight > 0 && wt.MaxHeight < wt.MinHeight {
			return errors.New(errors.ErrCodeInvalidConfig, "widget type %q has a maximum below its minimum", wt.Name)
		}
	}
	return nil
}

// Validate checks a single target.
func (t Target) Validate() error {
	if err := errors.ValidateKey("target key", t.Key); err != nil {
		return err
	}
	for name, v := range map[string]int{
		"min_rows": t.MinRows, "min_columns": t.MinColumns, "max_rows": t.MaxRows, "max_columns": t.MaxColumns,
		"max_flow_axis": t.MaxFlowAxis, "rows": t.Rows, "columns": t.Columns,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "target %q: %s cannot be negative", t.Key, name)
		}
	}

	switch grid.LayoutType(t.Layout) {
	case "", grid.LayoutFree:
		if t.MaxColumns > grid.MaxColumns {
			return errors.New(errors.ErrCodeInvalidConfig, "target %q: max_columns %d exceeds %d", t.Key, t.MaxColumns, grid.MaxColumns)
		}
		if t.MinColumns > grid.MaxColumns {
			return errors.New(errors.ErrCodeInvalidConfig, "target %q: min_columns %d exceeds %d", t.Key, t.MinColumns, grid.MaxColumns)
		}
	case grid.LayoutFlow:
		switch grid.FlowAxis(t.FlowAxis) {
		case "", grid.FlowRow:
			if t.Columns == 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "target %q: row flow needs columns", t.Key)
			}
		case grid.FlowColumn:
			if t.Rows == 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "target %q: column flow needs rows", t.Key)
			}
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "target %q: unknown flow_axis %q", t.Key, t.FlowAxis)
		}
		switch grid.Strategy(t.Placement) {
		case "", grid.StrategyAppend, grid.StrategyPrepend:
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "target %q: unknown placement %q", t.Key, t.Placement)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "target %q: unknown layout %q", t.Key, t.Layout)
	}
	return nil
}

// GridConfig converts the target into the engine configuration.
func (t Target) GridConfig() grid.Config {
	return grid.Config{
		Type: grid.LayoutType(t.Layout),
		Free: grid.FreeConfig{
			MinRows:    t.MinRows,
			MinColumns: t.MinColumns,
			MaxRows:    t.MaxRows,
			MaxColumns: t.MaxColumns,
		},
		Flow: grid.FlowConfig{
			Axis:           grid.FlowAxis(t.FlowAxis),
			Strategy:       grid.Strategy(t.Placement),
			DisallowInsert: t.DisallowInsert,
			MaxFlowAxis:    t.MaxFlowAxis,
			Rows:           t.Rows,
			Columns:        t.Columns,
		},
	}
}

// Target returns the target configured under key.
func (b Board) Target(key string) (Target, bool) {
	for _, t := range b.Targets {
		if t.Key == key {
			return t, true
		}
	}
	return Target{}, false
}

// Type returns the widget type called name.
func (b Board) Type(name string) (WidgetType, bool) {
	for _, wt := range b.Types {
		if wt.Name == name {
			return wt, true
		}
	}
	return WidgetType{}, false
}
