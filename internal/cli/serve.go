package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/pipeline"
	"github.com/matzehuels/dashgrid/pkg/server"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, storeURL, cacheURL string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve boards over HTTP",
		Long: `Serve the board API until interrupted.

--store selects where boards are kept:
  file:///path or a plain path   JSON files (default ~/.config/dashgrid/boards)
  redis://host:6379/0            Redis
  mongodb://host:27017/dashgrid  MongoDB

--cache redis://host:6379/1 shares rendered artifacts between instances
through Redis; without it renders are cached under the user cache
directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, err := store.Open(ctx, storeURL)
			if err != nil {
				return err
			}
			defer s.Close()

			runner, err := c.newServeRunner(ctx, cacheURL, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			out := newConsole(cmd.OutOrStdout())
			out.info("Serving boards on %s", styleLink.Render("http://"+addr))
			out.detail("Store: %s", storeURL)
			if cacheURL != "" && !noCache {
				out.detail("Cache: %s", cacheURL)
			}
			logger.Debug("starting server", "addr", addr, "store", storeURL, "cache", !noCache)
			return server.New(s, runner, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&storeURL, "store", "file://", "board store URL")
	cmd.Flags().StringVar(&cacheURL, "cache", "", "redis URL of a shared render cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// newServeRunner builds the server's render runner. A redis cache is
// shared between releases, so its keys are scoped by version.
func (c *CLI) newServeRunner(ctx context.Context, cacheURL string, noCache bool) (*pipeline.Runner, error) {
	if cacheURL == "" || noCache {
		return c.newRunner(noCache)
	}
	if !strings.HasPrefix(cacheURL, "redis://") && !strings.HasPrefix(cacheURL, "rediss://") {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported cache URL %q (want redis:// or rediss://)", cacheURL)
	}
	rc, err := cache.OpenRedis(ctx, cacheURL, appName+":cache:")
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}
