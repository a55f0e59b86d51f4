package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/impactgraph/impactgraph/internal/api"
	"github.com/impactgraph/impactgraph/pkg/cache"
	"github.com/impactgraph/impactgraph/pkg/pipeline"
	"github.com/impactgraph/impactgraph/pkg/store"
	"github.com/impactgraph/impactgraph/pkg/watch"
)

// newServeCmd creates the serve command running the HTTP API.
//
// Configuration merges defaults, an optional TOML file, IMPACTGRAPH_*
// environment variables, and flags, with later sources winning.
func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve impact networks over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "TOML config file (default: impactgraph.toml when present)")
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().StringP("data", "d", demoLocator, "store locator: demo, CSV directory, SQLite file, or mongodb:// URI")
	cmd.Flags().String("theme", "", "theme TOML file (default: built-in theme)")
	cmd.Flags().String("cache", "file", "artifact cache backend: file, redis, none")
	cmd.Flags().String("cachedir", "", "file cache directory (default: XDG cache dir)")
	cmd.Flags().String("redis", "localhost:6379", "redis address for the redis cache backend")
	cmd.Flags().Bool("watch", false, "watch CSV table files and refresh on change")

	return cmd
}

func runServe(ctx context.Context, cfg *ServeConfig) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, cfg.Data)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := serveCache(ctx, cfg)
	if err != nil {
		return err
	}

	// CSV stores get a memoizing wrapper so the watcher has something
	// to invalidate; every other backend serves reads directly.
	if dir, ok := csvDir(cfg.Data); ok && cfg.Watch {
		cached := store.NewCached(st)
		st = cached

		w, err := watch.New(dir, logger)
		if err != nil {
			return err
		}
		w.OnChange(func(ev watch.Event) {
			logger.Info("tables changed, dropping snapshot", "paths", ev.Paths)
			cached.Invalidate()
		})
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Close()
	}

	// A shared redis instance gets namespaced keys; private backends
	// keep the default keyer.
	var keyer cache.Keyer
	if cfg.Cache == "redis" {
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}

	runner := pipeline.NewRunner(st, c, keyer, logger)
	defer runner.Close()

	if cfg.Theme != "" {
		// Fail fast on a broken theme instead of erroring per request
		if _, _, err := pipeline.LoadTheme(pipeline.Options{ThemePath: cfg.Theme}); err != nil {
			return err
		}
	}

	srv := api.NewServer(runner, logger)
	srv.ThemePath = cfg.Theme
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// serveCache builds the artifact cache named by the config. Redis
// connections retry with backoff, so a server racing its redis
// container still comes up.
func serveCache(ctx context.Context, cfg *ServeConfig) (cache.Cache, error) {
	switch cfg.Cache {
	case "none":
		return cache.NewNullCache(), nil

	case "redis":
		var rc cache.Cache
		err := cache.RetryWithBackoff(ctx, func() error {
			c, err := cache.NewRedisCache(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			rc = c
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis, err)
		}
		return rc, nil

	case "file", "":
		dir := cfg.CacheDir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)

	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis, or none)", cfg.Cache)
	}
}
