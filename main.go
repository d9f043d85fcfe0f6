package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reodash/internal/database"
	"reodash/internal/handlers"
	"reodash/internal/hls"
	"reodash/internal/indexer"
	"reodash/internal/logging"
	"reodash/internal/media"
	"reodash/internal/metrics"
	"reodash/internal/middleware"
	"reodash/internal/probe"
	"reodash/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration failed: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())

	startup.LogToolCheck()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, config.DatabasePath)
	cancel()
	if err != nil {
		startup.LogFatal("Database initialization failed: %v", err)
	}

	startup.LogIndexerInit(config.IndexInterval)
	idx := indexer.New(db, config.RecordingsDir, config.IndexInterval)
	go func() {
		if err := idx.Start(); err != nil {
			logging.Error("Indexer stopped with error: %v", err)
		}
	}()

	prober := probe.New()
	manager := hls.NewManager(hls.DefaultConfig(config.HLSDir, config.MaxTranscodes), prober)
	thumbs := media.NewThumbnailGenerator(config.ThumbnailDir, config.ThumbnailsEnabled)

	h := handlers.New(db, idx, manager, thumbs, config.RecordingsDir, config.HLSDir, startup.GetBuildInfo())
	router := setupRouter(h, config)

	server := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Long write timeouts: segment requests may block up to a minute
		// waiting for the encoder, and origin streams run for minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go handleShutdown(server, idx, manager, db)

	startup.LogServerStarted(config.Port, time.Since(startTime))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		startup.LogFatal("Server failed: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Logger(middleware.LoggingConfig{
		LogHealthChecks: config.LogHealthChecks,
	}))
	if config.MetricsEnabled {
		router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	router.HandleFunc("/api/hls/{path:.*}", h.StartStream).Methods("GET")
	router.HandleFunc("/api/hls/{job}", h.StopStream).Methods("DELETE")
	router.HandleFunc("/api/files/{path:.*}", h.ServeFile).Methods("GET", "HEAD")
	router.HandleFunc("/api/tree", h.GetTree).Methods("GET")
	router.HandleFunc("/api/thumbnail/{path:.*}", h.GetThumbnail).Methods("GET")
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/api/reindex", h.TriggerReindex).Methods("POST")
	router.HandleFunc("/video-info/{path:.*}", h.VideoInfo).Methods("GET")
	router.HandleFunc("/transcode-status", h.TranscodeStatus).Methods("GET")

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	router.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	router.HandleFunc("/version", h.GetVersion).Methods("GET")

	return router
}

func handleShutdown(server *http.Server, idx *indexer.Indexer, manager *hls.Manager, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	idx.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	manager.CancelAll()
	startup.LogShutdownStepComplete("Transcode jobs cancelled")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error: %v", err)
	}
	startup.LogShutdownStepComplete("HTTP server stopped")

	if err := db.Close(); err != nil {
		logging.Error("Database close error: %v", err)
	}
	startup.LogShutdownStepComplete("Database closed")

	startup.LogShutdownComplete()
}
