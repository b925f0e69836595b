// Package cli implements the dashgrid command-line interface.
//
// Commands operate on a layout file (JSON, see package layout) and a board
// configuration (TOML, see package config). A missing layout file is an
// empty board; commands that change the board write the layout back.
//
// # Commands
//
//   - config: write or check a board configuration
//   - render: render a layout as text, DOT, SVG, PDF or PNG
//   - place, remove: change one widget and save the layout
//   - edit: interactive terminal editor
//   - serve: run the HTTP API
//   - cache: manage the render cache
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/layout"
	"github.com/matzehuels/dashgrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dashgrid"

	// defaultAddr is the listen address of "dashgrid serve".
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Dashgrid lays out dashboard widgets on grids",
		Long:         `Dashgrid places, moves and resizes dashboard widgets on free-form and flow grids, pushing neighbours out of the way and rejecting placements that cannot fit.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.configCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/dashgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Board Files
// =============================================================================

// boardFiles holds the --config flag shared by commands that load a layout.
type boardFiles struct {
	config string
}

func (f *boardFiles) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "board configuration (TOML); built-in default if empty")
}

// loadConfig reads the board configuration, or returns the default one.
func (f *boardFiles) loadConfig() (config.Board, error) {
	if f.config == "" {
		return config.Default(), nil
	}
	return config.Load(f.config)
}

// load builds the board described by the configuration and the layout file
// at path. A missing layout file yields an empty board.
func (f *boardFiles) load(ctx context.Context, path string) (*board.Board, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	l, err := layout.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := board.Load(cfg, l)
	if err != nil {
		return nil, err
	}
	b.Logger = boardLogger(loggerFromContext(ctx), b, path)
	b.Logger.Debug("loaded board", "widgets", l.Len())
	return b, nil
}

// saveLayout writes the board's layout to path.
func saveLayout(path string, b *board.Board) error {
	return layout.WriteFile(path, b.Export())
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
