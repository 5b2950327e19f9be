package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prototyp3-dev/ornithologist/internal/adapters/rollup"
	app "github.com/prototyp3-dev/ornithologist/internal/app"
	"github.com/prototyp3-dev/ornithologist/internal/config"
	"github.com/prototyp3-dev/ornithologist/internal/domain/species"
	"github.com/prototyp3-dev/ornithologist/pkg/logger"
	"github.com/prototyp3-dev/ornithologist/pkg/metrics"
)

// Metrics HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load the species trait table. The node cannot classify encounters
	// without it, so a missing dataset is fatal.
	table, err := species.LoadTable(cfg.DatasetFile)
	if err != nil {
		log.Error(ctx, "failed to load species dataset", logger.String("dataset_file", cfg.DatasetFile), logger.Error(err))
		return
	}

	client := rollup.New(cfg.RollupURL, rollup.WithLogger(log.Named("rollup")))

	svc := app.New(client, table,
		app.WithLogger(log.Named("app")),
		app.WithEncounterInterval(cfg.EncounterInterval),
		app.WithVisionRange(cfg.VisionRange),
		app.WithDuelTimeout(cfg.DuelTimeout),
	)

	// Metrics endpoint.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()

	// Drive the finish loop until the process is signalled.
	log.Info(ctx, "starting rollup loop", logger.String("rollup_url", cfg.RollupURL))
	if err := client.Run(ctx, svc); err != nil && ctx.Err() == nil {
		log.Error(ctx, "rollup loop failed", logger.Error(err))
	}

	log.Info(ctx, "shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "node stopped")
}
