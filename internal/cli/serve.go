package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moldraw/moldraw/internal/api"
	"github.com/moldraw/moldraw/pkg/cache"
	"github.com/moldraw/moldraw/pkg/gallery"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr           string
	redisAddr      string
	redisPassword  string
	redisDB        int
	mongoURI       string
	mongoDB        string
	requestTimeout time.Duration
	noCache        bool
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	o := serveOpts{
		addr:           api.DefaultAddr,
		requestTimeout: api.DefaultRequestTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the drawing API over HTTP",
		Long: `Serve the drawing API over HTTP.

Endpoints: POST /v1/draw renders molecules, /v1/gallery stores and lists
finished drawings, /healthz reports liveness, and /metrics exposes Prometheus
counters for pipeline stages, cache traffic, and gallery operations.

Without --redis the server caches on the local filesystem; without --mongo
the gallery lives in memory and is lost on restart.

Examples:
  moldraw serve
  moldraw serve --addr :9000 --redis localhost:6379
  moldraw serve --mongo mongodb://localhost:27017 --mongo-db moldraw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &o)
		},
	}

	cmd.Flags().StringVar(&o.addr, "addr", o.addr, "listen address")
	cmd.Flags().StringVar(&o.redisAddr, "redis", "", "Redis address for shared caching (file cache if empty)")
	cmd.Flags().StringVar(&o.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&o.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&o.mongoURI, "mongo", "", "MongoDB URI for the gallery (in-memory if empty)")
	cmd.Flags().StringVar(&o.mongoDB, "mongo-db", "", "MongoDB database name")
	cmd.Flags().DurationVar(&o.requestTimeout, "request-timeout", o.requestTimeout, "per-request timeout")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires cache, gallery, and metrics together and blocks until the
// context is cancelled or the listener fails.
func (c *CLI) runServe(ctx context.Context, o *serveOpts) error {
	cch, err := c.serveCache(ctx, o)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cch, nil, c.Logger)
	defer runner.Close()

	store, err := c.serveGallery(ctx, o)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	srv := api.New(api.Config{Addr: o.addr, RequestTimeout: o.requestTimeout}, runner, store, c.Logger)
	srv.UseMetrics(api.NewMetrics(nil))

	return srv.Start(ctx)
}

// serveCache picks the cache backend: Redis when configured, the local file
// cache otherwise.
func (c *CLI) serveCache(ctx context.Context, o *serveOpts) (cache.Cache, error) {
	if o.noCache {
		return cache.NewNullCache(), nil
	}
	if o.redisAddr != "" {
		cch, err := cache.NewRedisCache(ctx, o.redisAddr, o.redisPassword, o.redisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("caching in redis", "addr", o.redisAddr, "db", o.redisDB)
		return cch, nil
	}
	return newCache(false)
}

// serveGallery picks the gallery backend: MongoDB when configured, an
// in-memory store otherwise.
func (c *CLI) serveGallery(ctx context.Context, o *serveOpts) (gallery.Store, error) {
	if o.mongoURI == "" {
		printWarning("Gallery running in memory; drawings are lost on restart (set --mongo to persist)")
		return gallery.NewMemory(), nil
	}

	mg, err := gallery.Connect(ctx, o.mongoURI, o.mongoDB)
	if err != nil {
		return nil, err
	}
	if err := mg.EnsureIndexes(ctx); err != nil {
		c.Logger.Warn("gallery indexes", "error", err)
	}
	c.Logger.Info("gallery connected", "uri", o.mongoURI)
	return mg, nil
}
