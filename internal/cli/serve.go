package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcptooling/mcpreg/internal/server"
	"github.com/mcptooling/mcpreg/pkg/cache"
	"github.com/mcptooling/mcpreg/pkg/registry"
)

// serveCommand creates the serve command, which runs the local caching
// proxy in front of the registry.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local caching proxy for the registry",
		Long: `Serve the registry's read endpoints from a local address. Every
response flows through the configured cache backend, so repeated lookups
do not hit the upstream registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			store, err := c.newStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := registry.New(cfg,
				registry.WithCache(store, cfg.CacheTTL),
				registry.WithLogger(c.Logger),
			)
			if err != nil {
				return err
			}
			defer client.Close()

			// Only the memory backend accumulates dead entries.
			var sweeper server.Sweeper
			if mem, ok := store.(*cache.MemoryCache); ok {
				sweeper = mem
			}

			srv, err := server.New(server.Options{
				Addr:    cfg.ListenAddr,
				Client:  client,
				Logger:  c.Logger,
				Sweeper: sweeper,
			})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "listen", "", "listen address (default from config)")
	return cmd
}
