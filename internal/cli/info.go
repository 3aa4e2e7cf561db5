package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcptooling/mcpreg/pkg/errors"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		jsonOut bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show details for one MCP server",
		Long: `Look up a server by name and show its full registry record:
version, repository, remotes, packages and their environment variables.
An exact name match is preferred, falling back to a substring match; when
several versions share the name, the latest active one is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errors.ValidateServerName(name); err != nil {
				return err
			}

			client, store, err := c.newClient(refresh)
			if err != nil {
				return err
			}
			defer store.Close()
			defer client.Close()

			ctx := withLogger(cmd.Context(), c.Logger)
			track := newProgress(loggerFromContext(ctx))

			var spinner *Spinner
			if !jsonOut {
				spinner = newSpinner(ctx, "Looking up "+name)
				spinner.Start()
			}

			srv, err := client.GetByName(ctx, name)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			track.done(fmt.Sprintf("Looked up %q", name))
			if srv == nil {
				return errors.New(errors.ErrCodeServerNotFound, "no active server named %q", name)
			}

			if jsonOut {
				return printJSON(srv)
			}
			printServer(srv)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output raw JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}
