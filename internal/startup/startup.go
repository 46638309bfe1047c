package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"image-browser/internal/gallery"
	"image-browser/internal/logging"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration. It is constructed once at
// startup and passed by reference into each component; no package carries
// its own mutable copy of these values.
type Config struct {
	ImageDir        string
	CacheDir        string
	CaptionDir      string
	TemplateDir     string
	StaticDir       string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool
	CollectInterval time.Duration

	SizeTiers map[gallery.SizeTier]gallery.BoundingBox
}

// LoadConfig loads and validates configuration. The imageDir argument
// comes from the command line and takes precedence over the IMAGE_DIR
// environment variable; an empty value falls back to the current working
// directory. The process must not serve requests when the image directory
// does not exist or is not a directory, so that is a hard error here.
func LoadConfig(imageDir string) (*Config, error) {
	// A .env file is optional; environment variables win when both exist.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded configuration from .env")
	}

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	if imageDir == "" {
		imageDir = getEnv("IMAGE_DIR", "")
	}
	if imageDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		imageDir = wd
	}

	cacheDir := getEnv("CACHE_DIR", "cache")
	captionDir := getEnv("CAPTION_DIR", "captions")
	templateDir := getEnv("TEMPLATE_DIR", "templates")
	staticDir := getEnv("STATIC_DIR", "static")
	port := getEnv("PORT", "5055")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	collectIntervalStr := getEnv("COLLECT_INTERVAL", "1m")

	logging.Info("  IMAGE_DIR:        %s", imageDir)
	logging.Info("  CACHE_DIR:        %s", cacheDir)
	logging.Info("  CAPTION_DIR:      %s", captionDir)
	logging.Info("  TEMPLATE_DIR:     %s", templateDir)
	logging.Info("  STATIC_DIR:       %s", staticDir)
	logging.Info("  PORT:             %s", port)
	logging.Info("  METRICS_PORT:     %s", metricsPort)
	logging.Info("  METRICS_ENABLED:  %v", metricsEnabled)
	logging.Info("  COLLECT_INTERVAL: %s", collectIntervalStr)
	logging.Info("  LOG_STATIC_FILES: %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:%v", logHealthChecks)
	logging.Info("  LOG_LEVEL:        %s", logging.GetLevel())

	collectInterval, err := time.ParseDuration(collectIntervalStr)
	if err != nil {
		logging.Warn("  Invalid COLLECT_INTERVAL, using default: 1m")
		collectInterval = time.Minute
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	imageDir, err = filepath.Abs(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image directory path: %w", err)
	}
	info, err := os.Stat(imageDir)
	if err != nil {
		return nil, fmt.Errorf("image directory %q does not exist", imageDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", imageDir)
	}
	logging.Info("  Image directory (absolute): %s", imageDir)

	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", cacheDir)

	// Captions live at captions/<base>.txt relative to the working
	// directory, independent of which directory is being browsed.
	captionDir, err = filepath.Abs(captionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caption directory path: %w", err)
	}
	logging.Info("  Caption directory (absolute): %s", captionDir)

	if err := ensureDirectory(cacheDir, "cache"); err != nil {
		return nil, fmt.Errorf("cache directory error: %w", err)
	}
	if err := testWriteAccess(cacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable: %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	config := &Config{
		ImageDir:        imageDir,
		CacheDir:        cacheDir,
		CaptionDir:      captionDir,
		TemplateDir:     templateDir,
		StaticDir:       staticDir,
		Port:            port,
		MetricsPort:     metricsPort,
		MetricsEnabled:  metricsEnabled,
		LogStaticFiles:  logStaticFiles,
		LogHealthChecks: logHealthChecks,
		CollectInterval: collectInterval,
		SizeTiers:       gallery.DefaultSizeTiers(),
	}

	logging.Info("")
	logging.Info("  Size tiers:")
	for _, tier := range gallery.Tiers {
		box := config.SizeTiers[tier]
		logging.Info("    %-7s %dx%d", tier, box.Width, box.Height)
	}

	return config, nil
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })

		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, route := range routes {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
		logging.Debug("")
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:  %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Gallery:     http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:     http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:     DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____                              ____
   /  _/___ ___  ____ _____ ____     / __ )_________ _      __________  _____
   / // __ '__ \/ __ '/ __ '/ _ \   / __  / ___/ __ \ | /| / / ___/ _ \/ ___/
 _/ // / / / / / /_/ / /_/ /  __/  / /_/ / /  / /_/ / |/ |/ (__  )  __/ /
/___/_/ /_/ /_/\__,_/\__, /\___/  /_____/_/   \____/|__/|__/____/\___/_/
                    /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed regardless.
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
