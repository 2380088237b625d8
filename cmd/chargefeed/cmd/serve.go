package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/evatlas/chargefeed/internal/adapter/http"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Rebuild the feed on an interval and serve it over HTTP",
		Long: "Runs the feed build on the configured rebuild interval and exposes\n" +
			"the current feed, health, readiness, and metrics endpoints.",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := newRuntime(cfgFile)
			if err != nil {
				return err
			}
			defer rt.close()
			return runServe(rt)
		},
	}
}

// buildState tracks the outcome of the most recent build for the readiness
// endpoint. The service is not ready until the first build lands.
type buildState struct {
	mu      sync.Mutex
	built   bool
	lastErr error
}

func (s *buildState) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.built = true
	}
	s.lastErr = err
}

func (s *buildState) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		if s.lastErr != nil {
			return fmt.Errorf("no feed built yet: %w", s.lastErr)
		}
		return errors.New("no feed built yet")
	}
	return nil
}

func runServe(rt *runtime) error {
	state := &buildState{}
	srv := httpadapter.NewServer(rt.cfg.HTTPAddr, state, rt.cfg.OutputPath, rt.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("http server error", "error", err)
		}
	}()

	// Rebuild loop: one build immediately, then on the configured interval.
	// A failed build keeps the previous feed file in place and is retried on
	// the next tick.
	go func() {
		ticker := time.NewTicker(rt.cfg.RebuildInterval.Std())
		defer ticker.Stop()

		for {
			_, err := rt.buildOnce(ctx)
			state.record(err)
			if err != nil && ctx.Err() == nil {
				rt.logger.Error("feed build failed", "error", err)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	<-ctx.Done()
	rt.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.logger.Error("http server shutdown error", "error", err)
	}

	rt.logger.Info("shutdown complete")
	return nil
}
