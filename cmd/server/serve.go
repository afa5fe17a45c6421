package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// serve runs srv and the background worker until ctx is done or srv fails.
// The worker runs on its own context, cancelled only after srv.Shutdown has
// returned, so events emitted by requests finishing during shutdown are
// still delivered.
func serve(ctx context.Context, srv httpServer, runWorker func(context.Context) error, shutdownTimeout time.Duration, log *slog.Logger) error {
	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorker()

	var workers errgroup.Group
	if runWorker != nil {
		workers.Go(func() error { return runWorker(workerCtx) })
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	serveErr := g.Wait()

	stopWorker()
	return errors.Join(serveErr, workers.Wait())
}
