package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/pipeline"
	"github.com/matzehuels/dashgrid/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	files   boardFiles
	output  string   // output directory; stdout for text when empty
	formats []string // output formats: text, dot, svg, pdf, png
	target  string   // render a single target
	styled  bool     // coloured terminal text
	noCache bool     // bypass the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a board layout",
		Long: `Render a board layout to text, DOT, SVG, PDF or PNG.

Text with no --output is written to stdout. Every other format is written
next to the layout file, or into --output, named after the layout.
SVG needs no external tools; PDF and PNG need rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], &opts)
		},
	}

	opts.files.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), dot, svg, pdf, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "render only this target")
	cmd.Flags().BoolVar(&opts.styled, "styled", false, "colour text output for the terminal")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout, stderr io.Writer, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	elapsed := startTimer(logger)

	p := pipeline.Options{Formats: opts.formats, Target: opts.target, Styled: opts.styled}
	if err := p.Validate(); err != nil {
		return err
	}

	b, err := opts.files.load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	act := startActivity(ctx, stderr, fmt.Sprintf("Rendering %s (%s, %s)", input, count(len(b.Keys()), "target"), count(b.Export().Len(), "widget")))
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, b, p)
	act.Stop()
	if err != nil {
		return err
	}
	elapsed.done("rendered", "formats", strings.Join(p.Formats, ","), "cached", cached)

	if opts.output == "" && len(p.Formats) == 1 && p.Formats[0] == render.FormatText {
		_, err := stdout.Write(artifacts[render.FormatText])
		return err
	}

	dir := opts.output
	if dir == "" {
		dir = filepath.Dir(input)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	paths := make([]string, 0, len(p.Formats))
	for _, format := range p.Formats {
		path := outputPath(dir, input, format)
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		logger.Debug("wrote artifact", "format", format, "path", path, "bytes", len(artifacts[format]))
		paths = append(paths, path)
	}

	out := newConsole(stdout)
	out.ok("Rendered %s", input)
	for _, path := range paths {
		out.file(path)
	}
	out.targets(b)
	out.rendered(cached)
	return nil
}

// outputPath names the artifact of format for the layout file input.
func outputPath(dir, input, format string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"."+render.Extension(format))
}
