package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within the configured shutdown timeout.
func (app *application) serve(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              net.JoinHostPort(app.config.Server.Host, strconv.Itoa(app.config.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: app.config.Server.RequestTimeout,
		ConnState:         app.metrics.TrackConnState,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		app.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		app.logger.Info("Server shutdown completed")
		return nil
	})

	return g.Wait()
}
