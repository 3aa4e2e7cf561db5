package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/mcptooling/mcpreg/pkg/cache"
	"github.com/mcptooling/mcpreg/pkg/errors"
	"github.com/mcptooling/mcpreg/pkg/registry"
)

// hitRecorder wraps a cache backend and remembers whether any read hit,
// so the CLI can tell the user when results came from the cache.
type hitRecorder struct {
	cache.Cache
	hit atomic.Bool
}

func (h *hitRecorder) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := h.Cache.Get(ctx, key)
	if hit {
		h.hit.Store(true)
	}
	return data, hit, err
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		jsonOut     bool
		interactive bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the registry for MCP servers",
		Long: `Search the registry for servers whose name matches the term.
Only active servers are shown. Results are cached; use --refresh to force
a fresh registry call.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := args[0]
			if err := errors.ValidateSearchTerm(term); err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			recorder := &hitRecorder{Cache: store}

			client, err := registry.New(cfg,
				registry.WithCache(recorder, cfg.CacheTTL),
				registry.WithLogger(c.Logger),
				registry.WithRefresh(refresh),
			)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := withLogger(cmd.Context(), c.Logger)

			var spinner *Spinner
			if !jsonOut {
				spinner = newSpinner(ctx, fmt.Sprintf("Searching for %q", term))
				spinner.Start()
			}

			track := newProgress(loggerFromContext(ctx))
			resp, err := client.Search(ctx, term)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			track.done(fmt.Sprintf("Found %d servers", len(resp.Servers)))

			if jsonOut {
				return printJSON(resp)
			}

			if len(resp.Servers) == 0 {
				printInfo("No servers found for %q", term)
				return nil
			}

			if interactive {
				return c.pickAndShow(ctx, client, resp.Servers)
			}

			fmt.Println(renderSearchTable(resp.Servers))
			printStats(len(resp.Servers), recorder.hit.Load())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a result interactively")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}

// pickAndShow runs the interactive picker and renders the chosen server.
func (c *CLI) pickAndShow(ctx context.Context, client *registry.Client, servers []registry.Server) error {
	picked, err := pickServer(servers)
	if err != nil {
		return err
	}
	if picked == nil {
		return nil
	}

	spinner := newSpinner(ctx, "Fetching "+picked.Name)
	spinner.Start()
	srv, err := client.GetByID(ctx, picked.ID())
	spinner.Stop()
	if err != nil {
		return err
	}
	if srv == nil {
		return errors.New(errors.ErrCodeServerNotFound, "server %s is no longer available", picked.Name)
	}
	printServer(srv)
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode output")
	}
	fmt.Println(string(data))
	return nil
}
