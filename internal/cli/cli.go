// Package cli implements the mcpreg command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mcptooling/mcpreg/pkg/buildinfo"
	"github.com/mcptooling/mcpreg/pkg/cache"
	"github.com/mcptooling/mcpreg/pkg/config"
	"github.com/mcptooling/mcpreg/pkg/registry"
)

// appName is the application name used for directories and display.
const appName = "mcpreg"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// NoCache disables the response cache for the current invocation.
	// Bound to the persistent --no-cache flag.
	NoCache bool

	// ConfigPath overrides the config file location. Empty means the
	// default ~/.config/mcpreg/config.toml.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mcpreg searches the MCP server registry",
		Long:         `mcpreg is a CLI for the Model Context Protocol server registry: search for servers, inspect their packages and remotes, and run a local caching proxy.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVar(&c.NoCache, "no-cache", false, "disable the response cache")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/mcpreg/config.toml)")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the effective configuration for this invocation.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		path = config.Path()
	}
	return config.Load(path)
}

// newStore builds the cache backend the config asks for. When caching is
// off (flag, backend selector, or zero TTL) the null backend is used.
func (c *CLI) newStore(cfg config.Config) (cache.Cache, error) {
	if c.NoCache || cfg.Cache == config.CacheOff || cfg.CacheTTL == 0 {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache {
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(cfg.RedisAddr), nil
	default:
		dir, err := cfg.CacheDirOrDefault()
		if err != nil {
			// No resolvable cache dir just means no caching.
			printWarning("Cache directory unavailable, continuing without cache")
			c.Logger.Debug("cache directory unavailable", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newClient wires a registry client with the configured cache backend.
// The caller must Close both the client and the store.
func (c *CLI) newClient(refresh bool, extra ...registry.Option) (*registry.Client, cache.Cache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := c.newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := append([]registry.Option{
		registry.WithCache(store, cfg.CacheTTL),
		registry.WithLogger(c.Logger),
		registry.WithRefresh(refresh),
	}, extra...)

	client, err := registry.New(cfg, opts...)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return client, store, nil
}
