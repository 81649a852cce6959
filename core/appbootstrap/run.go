package appbootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownGrace = 10 * time.Second

// Run serves HTTP and the background workers until ctx is cancelled or an
// interrupt arrives, then shuts everything down within the grace period.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, w := range a.Workers {
		w.StartWithContext(ctx)
	}

	srv := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           a.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Printf("listening on %s", a.Config.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	for _, w := range a.Workers {
		if err := w.StopWithContext(shutdownCtx); err != nil {
			a.Logger.Errorf("worker stop: %v", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Logger.Printf("shutdown complete")
	return nil
}
