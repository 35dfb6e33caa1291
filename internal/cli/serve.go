package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"flightperf/internal/api"
	"flightperf/internal/config"
	"flightperf/internal/engine"
	"flightperf/internal/observability"
	"flightperf/internal/source"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Long: `Start the HTTP API. The server answers immediately; report endpoints
return 503 until the first dataset load finishes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g, cmd.Flags())
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
	cmd.Flags().Bool("watch", false, "Reload when the dataset file changes (overrides DATASET_WATCH)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	store := engine.NewStore(nil)
	agg := engine.NewAggregator(engine.Options{
		Workers:           cfg.AggregateWorkers,
		ParallelThreshold: cfg.ParallelThreshold,
	})

	src := source.New(cfg.DatasetSource)
	loader := source.NewLoader(src, store, engine.LoadOptions{Encoding: cfg.DatasetEncoding}, metrics, logger)

	// Load in the background so health checks answer right away.
	go func() {
		if _, err := loader.LoadWithRetry(ctx, time.Second, time.Minute); err != nil {
			logger.Error("initial dataset load abandoned", "error", err)
		}
	}()

	if cfg.DatasetWatch {
		if fs, ok := src.(*source.FileSource); ok {
			w, err := source.NewWatcher(fs.Path, loader, logger)
			if err != nil {
				return err
			}
			go func() {
				if err := w.Watch(ctx); err != nil {
					logger.Error("dataset watcher stopped", "error", err)
				}
			}()
		} else {
			logger.Warn("DATASET_WATCH ignored for non-file source", "source", src.Name())
		}
	}

	if cfg.DatasetRefresh > 0 {
		sched, err := source.NewScheduler(ctx, cfg.DatasetRefresh, loader, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	h := api.NewHandler(store, agg, metrics, logger, cfg.Years())
	e := api.NewServer(h, store, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
