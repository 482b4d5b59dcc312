package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xsplot/internal/adapters/httpapi"
	"xsplot/internal/export"
	"xsplot/internal/session"
)

const shutdownGrace = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog, the interactive view and exports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				c.cfg.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ln, err := net.Listen("tcp", c.cfg.Listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", c.cfg.Listen, err)
			}
			return c.serve(ctx, ln)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

// serve runs the HTTP server on ln until ctx is cancelled.
func (c *cli) serve(ctx context.Context, ln net.Listener) error {
	a, err := newApp(ctx, c.cfg, c.logger, true)
	if err != nil {
		_ = ln.Close()
		return err
	}

	worker := export.NewWorker(a.blobs, export.WorkerOptions{
		QueueSize: c.cfg.Export.QueueSize,
		Logger:    c.logger.Named("export"),
		Recorder:  a.metrics,
	})
	worker.Start()

	view := session.New(a.catalog, c.cfg.PageSize)
	handler := httpapi.NewHandler(a.catalog, session.NewService(view, a.resolver, c.logger.Named("session")), c.logger.Named("http"))
	handler.Exports = worker
	handler.Metrics = a.metrics.Handler()
	handler.PageSize = c.cfg.PageSize

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	c.logger.Info("xsplot listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("records", a.catalog.Len()),
		zap.Strings("libraries", c.cfg.LibraryMap().Names()))

	select {
	case err := <-errCh:
		_ = worker.Stop(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.logger.Warn("http shutdown", zap.Error(err))
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		c.logger.Warn("export worker shutdown", zap.Error(err))
	}
	return nil
}
