package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-index/internal/handlers"
	"photo-index/internal/logging"
	"photo-index/internal/metrics"
	"photo-index/internal/middleware"
	"photo-index/internal/sampling"
	"photo-index/internal/startup"
	"photo-index/internal/watcher"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout        = 30 * time.Second
	metricsCollectInterval = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the photo index HTTP server.
The server loads the index snapshots, serves the index, display renditions
and random chunks, and runs builds requested through the API.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().Bool("build-on-start", false, "Start a background build when the index is empty")
	serveCmd.Flags().Bool("incremental", true, "Make the start-up build incremental")
}

func runServe(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()

	cfg, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	c, err := openComponents(ctx, cfg)
	if err != nil {
		return err
	}

	metrics.InitializeMetrics()

	h := handlers.New(c.store, c.builder, c.images, sampling.New(nil))

	router := h.NewRouter()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks

	var handler http.Handler = router
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           handlers.MetricsHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()

		collector = metrics.NewCollector(c.store, metricsCollectInterval)
		collector.Start()

		go func() {
			ticker := time.NewTicker(metricsCollectInterval)
			defer ticker.Stop()
			for range ticker.C {
				c.db.UpdateDBMetrics()
			}
		}()
	}

	// Background work shares one context so shutdown can stop it first.
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if cfg.EnrichInterval > 0 {
		go runEnrichLoop(bgCtx, c, cfg.EnrichInterval)
	}

	if cfg.WatchMedia {
		w := watcher.New(watcher.Config{MediaDir: cfg.MediaDir, Debounce: cfg.WatchDebounce}, c.builder)
		go func() {
			if err := w.Run(bgCtx); err != nil {
				logging.Error("Media watcher stopped: %v", err)
			}
		}()
	}

	if mustGetBool(cmd, "build-on-start") && c.store.Len() == 0 {
		if err := c.builder.StartBackground(mustGetBool(cmd, "incremental")); err != nil {
			logging.Warn("Start-up build not started: %v", err)
		}
	}

	h.SetReady(true)

	shutdownDone := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, collector, stopBackground, c)
		close(shutdownDone)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Port,
		MetricsPort:     cfg.MetricsPort,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		c.close(ctx)
		return err
	}

	<-shutdownDone
	return nil
}

// runEnrichLoop completes queued enrichment on every tick until ctx ends.
func runEnrichLoop(ctx context.Context, c *components, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.builder.EnrichPending(ctx)
			switch {
			case err == nil:
				if n > 0 {
					logging.Info("Background enrichment completed %d entries", n)
				}
			case ctx.Err() != nil:
				return
			default:
				logging.Warn("Background enrichment failed: %v", err)
			}
		}
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, stopBackground context.CancelFunc, c *components) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping index builder")
	stopBackground()
	c.builder.Stop()
	startup.LogShutdownStepComplete("Index builder stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		collector.Stop()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownStep("Flushing index store and closing database")
	c.close(ctx)
	startup.LogShutdownStepComplete("Storage closed")

	startup.LogShutdownComplete()
}
