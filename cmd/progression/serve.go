package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/guild-progression/internal/orchestrators/activity"
	"github.com/KirkDiggler/guild-progression/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

var (
	metricsAddr  string
	resetOnStart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily reset scheduler",
	Long: `Run the daily reset scheduler until interrupted. When a metrics address is
configured, Prometheus metrics are served on /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "metrics listen address (overrides METRICS_ADDR)")
	serveCmd.Flags().BoolVar(&resetOnStart, "reset-on-start", false, "run the daily reset once at startup")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			slog.Info("received shutdown signal, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if metricsAddr != "" {
		a.cfg.MetricsAddr = metricsAddr
	}

	loc, err := a.cfg.Schedule.Location()
	if err != nil {
		return fmt.Errorf("failed to load reset time zone: %w", err)
	}

	daily, err := scheduler.NewDaily(&scheduler.DailyConfig{
		Trigger:    resetTrigger(a.activity),
		Location:   loc,
		Spec:       a.cfg.Schedule.Spec,
		RunOnStart: a.cfg.Schedule.RunOnStart || resetOnStart,
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	errChan := make(chan error, 2)

	var srv *http.Server
	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		srv = &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			slog.Info("metrics server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server failed: %w", err)
			}
		}()
	}

	go func() {
		if err := daily.Run(ctx); err != nil {
			errChan <- fmt.Errorf("scheduler stopped: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errChan:
		slog.Error("serve failed", "error", err)
	}
	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			slog.Warn("metrics server did not stop cleanly", "error", shutdownErr)
		}
	}

	return err
}

// resetTrigger adapts the activity reset to the scheduler. Per-record
// failures are logged by the orchestrator and do not fail the trigger.
func resetTrigger(svc activity.Service) scheduler.TriggerFunc {
	return func(ctx context.Context) error {
		_, err := svc.ResetDaily(ctx, &activity.ResetDailyInput{})
		return err
	}
}
