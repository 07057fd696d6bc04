package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/server"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/workspace"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playground web server",
	Long: `Start the playground HTTP server with the browser editor, the run API
and a WebSocket endpoint.

The editor is available at the root URL. API endpoints are under /api,
Prometheus metrics under /metrics.

Examples:
  playground serve
  playground serve --port 9090
  PORT=8080 playground serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	rec := openRecorder()
	defer rec.Close()

	if err := eng.Transpiler().Ensure(); err != nil {
		logger.Warn().Err(err).Msg("TypeScript runs will report a missing dependency")
	}

	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	ws := workspace.New(cfg.Workspace.Root, cfg.Workspace.Folders)
	srv := server.New(cfg, eng, ws, rec, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.WithoutCancel(ctx))
	})
	return g.Wait()
}
