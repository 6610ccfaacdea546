package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub000/pkg/observability"
	"github.com/juruladenbam/bam-sub000/pkg/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, backend string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve relationships and tree layouts over HTTP",
		Long: `Serve relationships and tree layouts over HTTP.

Routes:
  GET /healthz
  GET /api/branches
  GET /api/branches/{id}/tree
  GET /api/branches/{id}/tree.{svg,dot,json,pdf,png}
  GET /api/relationship?a={id}&b={id}

Records are re-read from the store on every request, so edits to the data
file show up without a restart. Set log.file in the config to also write a
rotating log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, backend)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: none, file, lru, redis (default: cache.backend)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, backend string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if backend != "" {
		cfg.Cache.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	var w io.Writer = os.Stderr
	if rot := rotatingWriter(cfg.Log); rot != nil {
		defer rot.Close()
		w = io.MultiWriter(os.Stderr, rot)
	}
	level := parseLevel(cfg.Log.Level, LogInfo)
	if c.Logger.GetLevel() == LogDebug {
		level = LogDebug
	}
	c.Logger = newLogger(w, level)
	if level == LogDebug {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Info("starting server",
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Backend,
		"timeout", cfg.RequestTimeout())

	srv := server.New(runner, c.Logger, server.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout(),
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
