package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/errors"
)

// placeOpts holds the flags of the place command. Negative coordinates
// and sizes mean "not given".
type placeOpts struct {
	files  boardFiles
	target string
	id     string
	typ    string
	x, y   int
	width  int
	height int
	fixed  bool
}

// placeCommand creates the place command.
func (c *CLI) placeCommand() *cobra.Command {
	opts := placeOpts{x: -1, y: -1, width: -1, height: -1}

	cmd := &cobra.Command{
		Use:   "place <layout.json>",
		Short: "Add or move a widget",
		Long: `Add a widget to a target, or move and resize it if the ID already exists.

Widgets in the way are pushed aside. If the placement cannot fit the
layout file is left unchanged and the command fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd.Context(), newConsole(cmd.OutOrStdout()), args[0], &opts)
		},
	}

	opts.files.register(cmd)
	cmd.Flags().StringVarP(&opts.target, "target", "t", "main", "target key")
	cmd.Flags().StringVar(&opts.id, "id", "", "widget ID (generated when adding without one)")
	cmd.Flags().StringVar(&opts.typ, "type", "", "widget type from the configuration")
	cmd.Flags().IntVarP(&opts.x, "x", "x", opts.x, "column")
	cmd.Flags().IntVarP(&opts.y, "y", "y", opts.y, "row")
	cmd.Flags().IntVarP(&opts.width, "width", "W", opts.width, "width in cells")
	cmd.Flags().IntVarP(&opts.height, "height", "H", opts.height, "height in cells")
	cmd.Flags().BoolVar(&opts.fixed, "fixed", false, "never displace the new widget")

	return cmd
}

func runPlace(ctx context.Context, out console, path string, opts *placeOpts) error {
	if (opts.x < 0) != (opts.y < 0) {
		return errors.New(errors.ErrCodeInvalidInput, "--x and --y must be given together")
	}
	b, err := opts.files.load(ctx, path)
	if err != nil {
		return err
	}
	t, err := b.Target(opts.target)
	if err != nil {
		return err
	}

	var w *board.Widget
	if existing, ok := t.Widget(opts.id); ok && opts.id != "" {
		w = existing
		if err := moveWidget(t, w, opts); err != nil {
			return err
		}
	} else {
		spec := board.Spec{ID: opts.id, Type: opts.typ, Fixed: opts.fixed}
		spec.Width, spec.Height = max(opts.width, 0), max(opts.height, 0)
		if opts.x >= 0 {
			spec.Position = board.At(opts.x, opts.y)
		}
		if w, err = t.Add(spec); err != nil {
			return err
		}
	}

	if err := saveLayout(path, b); err != nil {
		return err
	}
	r := w.Bounds()
	out.ok("Placed %s on %s", styleWidget.Render(w.ID), t.Key())
	out.detail("at (%d,%d) size %dx%d", r.X, r.Y, r.Width, r.Height)
	out.file(path)
	out.targets(b)
	return nil
}

func moveWidget(t *board.Target, w *board.Widget, opts *placeOpts) error {
	if opts.x >= 0 {
		if err := t.Move(w.ID, opts.x, opts.y); err != nil {
			return err
		}
	}
	if opts.width >= 0 || opts.height >= 0 {
		r := w.Bounds()
		width, height := r.Width, r.Height
		if opts.width >= 0 {
			width = opts.width
		}
		if opts.height >= 0 {
			height = opts.height
		}
		if err := t.Resize(w.ID, width, height); err != nil {
			return err
		}
	}
	return nil
}

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	var files boardFiles
	var id, target string

	cmd := &cobra.Command{
		Use:   "remove <layout.json>",
		Short: "Remove a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--id is required")
			}
			b, err := files.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, _, ok := b.Find(id)
			if target != "" {
				if t, err = b.Target(target); err != nil {
					return err
				}
			} else if !ok {
				return errors.New(errors.ErrCodeWidgetNotFound, "widget %s not found", id)
			}
			if err := t.Delete(id); err != nil {
				return err
			}
			if err := saveLayout(args[0], b); err != nil {
				return err
			}
			out := newConsole(cmd.OutOrStdout())
			out.ok("Removed %s from %s", styleWidget.Render(id), t.Key())
			out.file(args[0])
			return nil
		},
	}

	files.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "widget ID")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target key (searched when empty)")

	return cmd
}

// describe formats a widget for status lines.
func describe(w *board.Widget) string {
	r := w.Bounds()
	if w.Type != "" {
		return fmt.Sprintf("%s (%s) %dx%d at %d,%d", w.ID, w.Type, r.Width, r.Height, r.X, r.Y)
	}
	return fmt.Sprintf("%s %dx%d at %d,%d", w.ID, r.Width, r.Height, r.X, r.Y)
}
