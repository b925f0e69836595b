// Package pipeline renders boards into output artifacts.
//
// The CLI and the HTTP server both render through this package, so a
// board looks the same whichever entry point produced it.
//
// # Usage
//
// Create a Runner and render a board:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	artifacts, err := runner.Render(ctx, b, pipeline.Options{
//	    Formats: []string{"text", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := artifacts["svg"]
//
// Renders are cached by a hash of the board configuration and its exported
// layout, so an unchanged board is served from the cache.
package pipeline

import (
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/render"
)

// DefaultFormat is used when Options.Formats is empty.
const DefaultFormat = render.FormatText

// DefaultPNGScale is the PNG zoom factor passed to rsvg-convert.
const DefaultPNGScale = 2.0

// Options configures a render.
type Options struct {
	// Formats lists the artifacts to produce (see render.Formats).
	Formats []string `json:"formats,omitempty"`

	// Target restricts the render to one target. Empty renders all
	// targets in configuration order.
	Target string `json:"target,omitempty"`

	// Styled renders text with lipgloss colours instead of plain runes.
	Styled bool `json:"styled,omitempty"`
}

// Validate applies defaults and checks the options.
func (o *Options) Validate() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	seen := make(map[string]bool, len(o.Formats))
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
		if seen[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "format %q requested twice", f)
		}
		seen[f] = true
	}
	if o.Target != "" {
		if err := errors.ValidateKey("target", o.Target); err != nil {
			return err
		}
	}
	return nil
}
