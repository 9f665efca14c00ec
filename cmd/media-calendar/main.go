package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-calendar/internal/database"
	"media-calendar/internal/filesystem"
	"media-calendar/internal/handlers"
	"media-calendar/internal/indexer"
	"media-calendar/internal/logging"
	"media-calendar/internal/memory"
	"media-calendar/internal/metadata"
	"media-calendar/internal/metrics"
	"media-calendar/internal/middleware"
	"media-calendar/internal/startup"
	"media-calendar/internal/workers"
)

const (
	collectInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	startTime := time.Now()
	defer logging.Sync()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	memory.ConfigureFromEnv()
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	count, err := db.Count(ctx)
	if err != nil {
		startup.LogFatal("Failed to read database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), count)

	dirs := config.Directories()
	pipelineConfig := indexer.DefaultPipelineConfig()
	pipelineConfig.Gate = monitor
	idx := indexer.New(db, metadata.New(), dirs, pipelineConfig)
	idx.SetOnIndexComplete(func(indexer.Summary) { db.UpdateDBMetrics() })
	if err := idx.Prime(ctx); err != nil {
		logging.Warn("Failed to prime indexer: %v", err)
	}

	startup.LogIndexerInit(pipelineConfig.NumWorkers, workers.Source(), indexer.DefaultWarmUp, dirs.Interval())
	sched := indexer.NewScheduler(idx, indexer.DefaultWarmUp, dirs)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()
	startup.LogIndexerStarted()

	collector := metrics.NewCollector(&dbStatsAdapter{db: db}, collectInterval)
	collector.Start()

	h := handlers.New(db, idx, sched)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go handleShutdown(shutdownDone, shutdownDeps{
		cancel:     cancel,
		schedDone:  schedDone,
		monitor:    monitor,
		collector:  collector,
		srv:        srv,
		metricsSrv: metricsSrv,
		db:         db,
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/days/{month:[0-9]+}/{day:[0-9]+}", h.GetDay).Methods("GET")
	api.HandleFunc("/today", h.GetToday).Methods("GET")
	api.HandleFunc("/media/{hash}", h.GetMedia).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/reindex", h.TriggerReindex).Methods("POST")

	return r
}

func newMetricsServer(port string) *http.Server {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + port,
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// dbStatsAdapter exposes the cached database statistics to the metrics
// collector and refreshes the database file gauges on each collection.
type dbStatsAdapter struct {
	db interface {
		GetStats() database.IndexStats
		UpdateDBMetrics()
	}
}

func (a *dbStatsAdapter) GetStats() metrics.Stats {
	a.db.UpdateDBMetrics()
	s := a.db.GetStats()
	return metrics.Stats{
		TotalRecords: s.TotalRecords,
		Photos:       s.Photos,
		Videos:       s.Videos,
		Companions:   s.Companions,
		Years:        s.Years,
		BySource:     s.BySource,
	}
}

type shutdownDeps struct {
	cancel     context.CancelFunc
	schedDone  <-chan struct{}
	monitor    *memory.Monitor
	collector  *metrics.Collector
	srv        *http.Server
	metricsSrv *http.Server
	db         *database.Database
}

func handleShutdown(done chan<- struct{}, deps shutdownDeps) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := deps.srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping scan scheduler")
	deps.cancel()
	select {
	case <-deps.schedDone:
		startup.LogShutdownStepComplete("Scan scheduler stopped")
	case <-ctx.Done():
		logging.Warn("Scan scheduler did not stop within %v", shutdownTimeout)
	}

	deps.monitor.Stop()
	deps.collector.Stop()

	if deps.metricsSrv != nil {
		if err := deps.metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownStep("Closing database")
	if err := deps.db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
