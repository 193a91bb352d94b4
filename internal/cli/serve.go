package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyshuffle/internal/server"
	"github.com/matzehuels/storyshuffle/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	redisAddr string
	redisDB   int
	noCache   bool
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storyshuffle HTTP API",
		Long: `Serve runs the HTTP API used by the web preview: validate rules, shuffle
manuscripts, render constraint graphs, and manage workspaces.

Workspaces are held in memory by default. Pass --redis to share them across
instances.

Examples:
  storyshuffle serve                          # In-memory, port 8080
  storyshuffle serve --addr :9000
  storyshuffle serve --redis localhost:6379   # Shared workspaces`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for shared workspaces (host:port)")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable shuffle result caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var store session.Store
	if opts.redisAddr != "" {
		store, err = session.NewRedisStore(ctx, session.RedisConfig{
			Addr: opts.redisAddr,
			DB:   opts.redisDB,
		})
		if err != nil {
			return err
		}
		c.Logger.Info("using redis workspace store", "addr", opts.redisAddr)
	} else {
		store = session.NewMemoryStore()
	}
	defer store.Close()

	// Sweep expired workspaces periodically. Redis expires keys itself, so
	// its Cleanup is a no-op.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := store.Cleanup(ctx); err != nil {
					c.Logger.Warn("workspace cleanup failed", "err", err)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           server.New(runner, store, c.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
