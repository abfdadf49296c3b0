package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/internal/server"
)

// envListenAddr overrides the default listen address for the API server.
const envListenAddr = "FLOWSMITH_ADDR"

// serveCommand creates the serve command for running the conversion API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP API",
		Long: `Run the conversion HTTP API.

The server exposes the conversion pipeline over HTTP:

  POST /api/convert        submit a flow for conversion
  GET  /api/jobs/{id}      poll an asynchronous conversion job
  GET  /api/jobs/{id}/ws   stream job progress over WebSocket
  GET  /healthz            liveness probe

The cache backend follows the same environment configuration as the
CLI commands (FLOWSMITH_REDIS_URL, FLOWSMITH_MONGO_URI).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				if cfg, err := loadConfig(); err == nil && cfg.Addr != "" {
					addr = cfg.Addr
				}
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr(), "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// defaultAddr returns the listen address from the environment or ":8080".
func defaultAddr() string {
	if addr := os.Getenv(envListenAddr); addr != "" {
		return addr
	}
	return ":8080"
}

// runServe builds the runner and serves until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv, err := server.New(server.Config{
		Addr:   addr,
		Runner: runner,
		Logger: c.Logger,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	c.Logger.Infof("Listening on %s", addr)
	return srv.Run(ctx)
}
