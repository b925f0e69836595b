// Package layout defines the persisted shape of a board: the widgets of
// every target with their committed rectangles.
//
// A Layout is what the CLI reads and writes as JSON, what the store keeps
// next to a board's configuration, and what the render pipeline hashes for
// its cache keys. It carries no placement logic; package board replays a
// Layout into live grids and exports it back.
//
//	{
//	  "name": "ops",
//	  "targets": {
//	    "main": [
//	      {"id": "cpu", "type": "chart", "x": 0, "y": 0, "width": 2, "height": 1}
//	    ]
//	  }
//	}
package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Layout is the serialized state of a board.
type Layout struct {
	Name    string             `json:"name,omitempty" bson:"name,omitempty"`
	Targets map[string][]Entry `json:"targets" bson:"targets"`
}

// Entry is one placed widget. Width and Height of zero fall back to the
// widget's minimum size when the entry is replayed.
type Entry struct {
	ID       string         `json:"id" bson:"id"`
	Type     string         `json:"type,omitempty" bson:"type,omitempty"`
	X        int            `json:"x" bson:"x"`
	Y        int            `json:"y" bson:"y"`
	Width    int            `json:"width" bson:"width"`
	Height   int            `json:"height" bson:"height"`
	Fixed    bool           `json:"fixed,omitempty" bson:"fixed,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Keys returns the target keys in sorted order.
func (l Layout) Keys() []string {
	keys := make([]string, 0, len(l.Targets))
	for k := range l.Targets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of entries across all targets.
func (l Layout) Len() int {
	n := 0
	for _, entries := range l.Targets {
		n += len(entries)
	}
	return n
}

// Validate checks keys, IDs and geometry. Widget IDs must be unique across
// the whole layout since a widget may move between targets.
func (l Layout) Validate() error {
	seen := make(map[string]string)
	for _, key := range l.Keys() {
		if err := errors.ValidateKey("target", key); err != nil {
			return err
		}
		for i, e := range l.Targets[key] {
			if err := errors.ValidateKey("widget", e.ID); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidLayout, err, "target %s entry %d", key, i)
			}
			if prev, dup := seen[e.ID]; dup {
				return errors.New(errors.ErrCodeInvalidLayout, "widget %s appears in targets %s and %s", e.ID, prev, key)
			}
			seen[e.ID] = key
			if e.X < 0 || e.Y < 0 {
				return errors.New(errors.ErrCodeInvalidLayout, "widget %s has negative position (%d,%d)", e.ID, e.X, e.Y)
			}
			if e.Width < 0 || e.Height < 0 {
				return errors.New(errors.ErrCodeInvalidLayout, "widget %s has negative size %dx%d", e.ID, e.Width, e.Height)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the layout. Metadata maps are copied one
// level deep.
func (l Layout) Clone() Layout {
	out := Layout{Name: l.Name, Targets: make(map[string][]Entry, len(l.Targets))}
	for k, entries := range l.Targets {
		cp := make([]Entry, len(entries))
		for i, e := range entries {
			cp[i] = e
			if e.Metadata != nil {
				cp[i].Metadata = make(map[string]any, len(e.Metadata))
				for mk, mv := range e.Metadata {
					cp[i].Metadata[mk] = mv
				}
			}
		}
		out.Targets[k] = cp
	}
	return out
}

// Marshal serializes a layout to pretty-printed JSON.
func Marshal(l Layout) ([]byte, error) {
	if l.Targets == nil {
		l.Targets = map[string][]Entry{}
	}
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal decodes and validates a layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidLayout, err, "unmarshal layout")
	}
	if l.Targets == nil {
		l.Targets = map[string][]Entry{}
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Write encodes l as JSON to w.
func Write(w io.Writer, l Layout) error {
	data, err := Marshal(l)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// Read decodes and validates a layout from r. Read does not close r.
func Read(r io.Reader) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return Unmarshal(data)
}

// WriteFile writes l to path.
func WriteFile(path string, l Layout) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadFile reads a layout from path. A missing file yields an empty layout
// so that commands can build a board from scratch.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{Targets: map[string][]Entry{}}, nil
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
