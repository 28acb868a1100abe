package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/server"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		redis   string
		prefix  string
		timeout time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

POST /v1/layout accepts {"graph": ..., "options": ..., "format": ...} and
returns the layout result or a rendering of it. GET /healthz reports
liveness.

Results are cached in Redis when --redis is given and in the local cache
directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			sc := cfg.Server
			if cmd.Flags().Changed("addr") || sc.Addr == "" {
				sc.Addr = addr
			}
			if cmd.Flags().Changed("redis") {
				sc.Redis = redis
			}
			if cmd.Flags().Changed("cache-prefix") {
				sc.Prefix = prefix
			}
			if cmd.Flags().Changed("timeout") || sc.Timeout.Duration == 0 {
				sc.Timeout.Duration = timeout
			}
			return c.runServe(cmd, sc, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&redis, "redis", "", "Redis address for the result cache")
	cmd.Flags().StringVar(&prefix, "cache-prefix", "", "prefix for cache keys in a shared Redis")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, sc ServerConfig, noCache bool) error {
	ctx := cmd.Context()

	var (
		store cache.Cache
		err   error
	)
	switch {
	case noCache:
		store = cache.NewNullCache()
	case sc.Redis != "":
		store, err = cache.NewRedisCache(ctx, sc.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis at %s: %w", sc.Redis, err)
		}
		c.Logger.Info("caching in redis", "addr", sc.Redis)
	default:
		store, err = newCache(false)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	var keyer cache.Keyer
	if sc.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, sc.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Runner:  runner,
		Logger:  c.Logger,
		Timeout: sc.Timeout.Duration,
	})
	printInfo("Serving on %s", sc.Addr)
	return srv.ListenAndServe(ctx, sc.Addr)
}
