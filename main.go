package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-browser/internal/gallery"
	"image-browser/internal/handlers"
	"image-browser/internal/logging"
	"image-browser/internal/metrics"
	"image-browser/internal/middleware"
	"image-browser/internal/startup"
	"image-browser/internal/web"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
)

var imageDirFlag string

var rootCmd = &cobra.Command{
	Use:   "image-browser [directory]",
	Short: "Local web gallery for a directory of images",
	Long: `image-browser serves a directory of images as a paginated web gallery
with cached thumbnails, sidecar captions, and a single-image viewer.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(_ *cobra.Command, args []string) error {
		dir := imageDirFlag
		if len(args) > 0 {
			dir = args[0]
		}
		return run(dir)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&imageDirFlag, "image-dir", "d", "", "directory of images to browse (default: current directory)")
	rootCmd.Version = startup.Version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(imageDir string) error {
	startTime := time.Now()

	// Load configuration; a bad image directory is fatal before any
	// request is served.
	config, err := startup.LoadConfig(imageDir)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()

	// libvips is a fast path only; the pure-Go pipeline covers every
	// supported format without it.
	if err := gallery.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using pure-Go image pipeline: %v", err)
	}
	defer gallery.ShutdownVips()

	scanner := gallery.NewScanner(config.ImageDir)
	captions := gallery.NewCaptionLoader(config.CaptionDir)

	thumbs, err := gallery.NewThumbnailCache(config.CacheDir, config.ImageDir, config.SizeTiers)
	if err != nil {
		startup.LogFatal("Failed to initialize thumbnail cache: %v", err)
	}

	renderer, err := web.NewRenderer(config.TemplateDir)
	if err != nil {
		startup.LogFatal("Template error: %v", err)
	}

	h := handlers.New(scanner, captions, thumbs, renderer, config)

	// The watcher keeps the image count gauge current between page loads.
	go scanner.Watch()

	collector := metrics.NewCollector(h, config.CollectInterval)
	collector.Start()

	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics are served on their own port so the gallery can be exposed
	// without exposing operational data.
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", h.MetricsHandler()).Methods("GET")
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsRouter,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}

	return nil
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Gallery routes
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/view/{file}", h.View).Methods("GET")
	r.HandleFunc("/image/{file}", h.ServeImage).Methods("GET")
	r.HandleFunc("/cache/{file}", h.ServeThumbnail).Methods("GET")
	r.HandleFunc("/delete/{file}", h.Delete).Methods("POST")

	// Static assets
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(config.StaticDir))))

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping stats collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Stats collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
