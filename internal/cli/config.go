package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check board configurations",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configValidateCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default board configuration",
		Long:  `Write the built-in board configuration as TOML to path, or to stdout when no path is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if len(args) == 0 {
				return config.Write(cmd.OutOrStdout(), cfg)
			}

			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := config.Write(f, cfg); err != nil {
				return err
			}

			out := newConsole(cmd.OutOrStdout())
			out.ok("Wrote board configuration")
			out.file(path)
			out.next("Place a widget", fmt.Sprintf("%s place board.json --config %s --type chart", appName, path))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// configValidateCommand creates the "config validate" subcommand.
func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check a board configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			b, err := board.New(cfg)
			if err != nil {
				return err
			}

			out := newConsole(cmd.OutOrStdout())
			out.ok("Configuration %s is valid", cfg.Name)
			out.targets(b)
			if len(cfg.Types) > 0 {
				out.field("types", count(len(cfg.Types), "widget type"))
			}
			return nil
		},
	}
}
