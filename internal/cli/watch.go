package cli

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

	"github.com/ogulcanaydogan/slotwatch/internal/server"
	"github.com/ogulcanaydogan/slotwatch/pkg/metrics"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check slot availability repeatedly until interrupted",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationP("interval", "i", 0, "Time between checks (default from config)")
	watchCmd.Flags().StringP("listen", "l", "", "Serve health, state and metrics on this address (default from config)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.Watch.Interval = interval
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Watch.Listen = listen
	}

	logger := newLogger(cfg)
	collector := metrics.NewCollector()

	runner, store, err := initRunner(cfg, logger, tracker.WithObserver(collector))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		apiServer *server.Server
		srv       *http.Server
	)
	errCh := make(chan error, 1)
	if cfg.Watch.Listen != "" {
		apiServer = server.NewServer(store, collector.Handler(), logger)
		srv = &http.Server{
			Addr:              cfg.Watch.Listen,
			Handler:           apiServer.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("api server started", "listen", cfg.Watch.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	check := func(ctx context.Context) {
		fmt.Printf("Checking visa slots at %s\n", time.Now().Format("2006-01-02 15:04:05"))
		res := runner.Run(ctx)
		if apiServer != nil {
			apiServer.ObserveRun(res)
		}
		printResult(os.Stdout, res, cfg.Target.Location, cfg.Target.CutoffDate)
	}

	logger.Info("watching", "location", cfg.Target.Location, "interval", cfg.Watch.Interval.String())
	loopErr := watchLoop(ctx, cfg.Watch.Interval, check, errCh, logger)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("watch stopped")
	return loopErr
}

// watchLoop calls check once, then on every tick until ctx is done or the
// server reports an error.
func watchLoop(ctx context.Context, interval time.Duration, check func(context.Context), serverErr <-chan error, logger *slog.Logger) error {
	check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-ticker.C:
			check(ctx)
		}
	}
}
