package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"photo-index/internal/logging"
	"photo-index/internal/memory"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Object store backends accepted by OBJECT_STORE.
const (
	StoreS3     = "s3"
	StoreLocal  = "local"
	StoreMemory = "memory"
)

// GeocoderDisabled turns reverse geocoding off when used as GEOCODER_URL.
const GeocoderDisabled = "off"

const defaultGeocoderURL = "https://nominatim.openstreetmap.org"

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

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// S3Config holds the S3 connection settings.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Config holds all application configuration
type Config struct {
	MediaDir     string
	CacheDir     string
	DatabasePath string
	Port         string
	MetricsPort  string

	MetricsEnabled  bool
	LogHealthChecks bool

	// Derived image storage
	ObjectStore     string
	LocalStoreDir   string
	S3              S3Config
	OriginalsPrefix string
	CachePrefix     string

	// Collaborators
	FaceDetectorURL     string
	GeocoderURL         string
	GeocoderUserAgent   string
	GeocoderMinInterval time.Duration
	ExifToolPath        string
	CollaboratorTimeout time.Duration

	// Index builds
	IndexWorkers       int
	CheckpointInterval int
	OrientationMaxYear int
	EnrichOnIngest     bool
	EnrichInterval     time.Duration
	WatchMedia         bool
	WatchDebounce      time.Duration

	AllowedOrigins []string
}

// FaceDetectionEnabled reports whether a face detector is configured.
func (c *Config) FaceDetectionEnabled() bool {
	return c.FaceDetectorURL != ""
}

// GeocodingEnabled reports whether reverse geocoding is configured.
func (c *Config) GeocodingEnabled() bool {
	return c.GeocoderURL != "" && !strings.EqualFold(c.GeocoderURL, GeocoderDisabled)
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	if c.MetricsEnabled {
		if _, err := strconv.Atoi(c.MetricsPort); err != nil {
			errs = append(errs, fmt.Errorf("METRICS_PORT must be numeric, got %q", c.MetricsPort))
		}
	}

	switch c.ObjectStore {
	case StoreS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when OBJECT_STORE=s3"))
		}
		if c.S3.Endpoint == "" {
			errs = append(errs, errors.New("S3_ENDPOINT is required when OBJECT_STORE=s3"))
		}
	case StoreLocal:
		if c.LocalStoreDir == "" {
			errs = append(errs, errors.New("LOCAL_STORE_DIR is required when OBJECT_STORE=local"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("OBJECT_STORE must be one of s3, local, memory; got %q", c.ObjectStore))
	}

	if c.IndexWorkers < 0 {
		errs = append(errs, fmt.Errorf("INDEX_WORKERS must not be negative, got %d", c.IndexWorkers))
	}
	if c.CheckpointInterval <= 0 {
		errs = append(errs, fmt.Errorf("CHECKPOINT_INTERVAL must be positive, got %d", c.CheckpointInterval))
	}
	if c.OrientationMaxYear < 0 {
		errs = append(errs, fmt.Errorf("ORIENTATION_MAX_YEAR must not be negative, got %d", c.OrientationMaxYear))
	}
	if c.WatchMedia && c.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("WATCH_DEBOUNCE must be positive, got %v", c.WatchDebounce))
	}
	if c.EnrichInterval < 0 {
		errs = append(errs, fmt.Errorf("ENRICH_INTERVAL must not be negative, got %v", c.EnrichInterval))
	}

	return errors.Join(errs...)
}

// ReadConfig reads the configuration from the environment without touching
// the filesystem or logging.
func ReadConfig() *Config {
	cacheDir := getEnv("CACHE_DIR", "/cache")
	return &Config{
		MediaDir:        getEnv("MEDIA_DIR", "/media"),
		CacheDir:        cacheDir,
		DatabasePath:    getEnv("DATABASE_PATH", filepath.Join(cacheDir, "photo_index.db")),
		Port:            getEnv("PORT", "8001"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", false),

		ObjectStore:   strings.ToLower(getEnv("OBJECT_STORE", StoreLocal)),
		LocalStoreDir: getEnv("LOCAL_STORE_DIR", filepath.Join(cacheDir, "objects")),
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			UseSSL:    getEnvBool("S3_USE_SSL", true),
		},
		OriginalsPrefix: getEnv("ORIGINALS_PREFIX", "photos/originals"),
		CachePrefix:     getEnv("CACHE_PREFIX", "cache-image/600px"),

		FaceDetectorURL:     getEnv("FACE_DETECTOR_URL", ""),
		GeocoderURL:         getEnv("GEOCODER_URL", defaultGeocoderURL),
		GeocoderUserAgent:   getEnv("GEOCODER_USER_AGENT", "photo-index/"+Version),
		GeocoderMinInterval: getEnvDuration("GEOCODER_MIN_INTERVAL", time.Second),
		ExifToolPath:        getEnv("EXIFTOOL_PATH", ""),
		CollaboratorTimeout: getEnvDuration("COLLABORATOR_TIMEOUT", 30*time.Second),

		IndexWorkers:       getEnvInt("INDEX_WORKERS", 0),
		CheckpointInterval: getEnvInt("CHECKPOINT_INTERVAL", 1000),
		OrientationMaxYear: getEnvInt("ORIENTATION_MAX_YEAR", 2008),
		EnrichOnIngest:     getEnvBool("ENRICH_ON_INGEST", false),
		EnrichInterval:     getEnvDuration("ENRICH_INTERVAL", 0),
		WatchMedia:         getEnvBool("WATCH_MEDIA", false),
		WatchDebounce:      getEnvDuration("WATCH_DEBOUNCE", 5*time.Second),

		AllowedOrigins: getEnvList("WEB_ALLOWED_ORIGINS", nil),
	}
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := ReadConfig()

	logging.Info("  MEDIA_DIR:             %s", config.MediaDir)
	logging.Info("  CACHE_DIR:             %s", config.CacheDir)
	logging.Info("  DATABASE_PATH:         %s", config.DatabasePath)
	logging.Info("  PORT:                  %s", config.Port)
	logging.Info("  METRICS_PORT:          %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", config.MetricsEnabled)
	logging.Info("  OBJECT_STORE:          %s", config.ObjectStore)
	logging.Info("  ORIGINALS_PREFIX:      %s", config.OriginalsPrefix)
	logging.Info("  CACHE_PREFIX:          %s", config.CachePrefix)
	logging.Info("  FACE_DETECTOR_URL:     %s", valueOrNone(config.FaceDetectorURL))
	logging.Info("  GEOCODER_URL:          %s", valueOrNone(config.GeocoderURL))
	logging.Info("  INDEX_WORKERS:         %s", workersString(config.IndexWorkers))
	logging.Info("  CHECKPOINT_INTERVAL:   %d", config.CheckpointInterval)
	logging.Info("  ORIENTATION_MAX_YEAR:  %d", config.OrientationMaxYear)
	logging.Info("  ENRICH_ON_INGEST:      %v", config.EnrichOnIngest)
	logging.Info("  ENRICH_INTERVAL:       %v", config.EnrichInterval)
	logging.Info("  WATCH_MEDIA:           %v", config.WatchMedia)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())
	if config.ObjectStore == StoreS3 {
		logging.Info("  S3_ENDPOINT:           %s", config.S3.Endpoint)
		logging.Info("  S3_BUCKET:             %s", config.S3.Bucket)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	var err error
	config.MediaDir, err = filepath.Abs(config.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", config.MediaDir)

	config.CacheDir, err = filepath.Abs(config.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", config.CacheDir)

	// Media directory is mounted, never created.
	if err := checkMediaDir(config.MediaDir); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	if err := ensureDirectory(config.CacheDir, "cache"); err != nil {
		return nil, fmt.Errorf("cache directory error: %w", err)
	}
	logging.Debug("  Testing cache directory write access...")
	if err := testWriteAccess(config.CacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable (required for the index): %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	if err := ensureDirectory(filepath.Dir(config.DatabasePath), "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	if config.ObjectStore == StoreLocal {
		if err := ensureDirectory(config.LocalStoreDir, "object store"); err != nil {
			return nil, fmt.Errorf("object store directory error: %w", err)
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Index store:     ENABLED (required)")
	logging.Info("    Face detection:  %s", enabledString(config.FaceDetectionEnabled()))
	logging.Info("    Geocoding:       %s", enabledString(config.GeocodingEnabled()))
	logging.Info("    Metrics:         %s", enabledString(config.MetricsEnabled))
	logging.Info("    Background enrichment: %s", enabledString(config.EnrichInterval > 0))
	logging.Info("    Media watcher:   %s", enabledString(config.WatchMedia))

	return config, nil
}

// ConfigureLogging applies LOG_FILE and its rotation settings. It is a
// no-op when LOG_FILE is unset.
func ConfigureLogging() error {
	path := getEnv("LOG_FILE", "")
	if path == "" {
		return nil
	}
	return logging.EnableFile(logging.FileConfig{
		Path:       path,
		MaxSizeMB:  getEnvInt("LOG_FILE_MAX_MB", 50),
		MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 5),
		MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 0),
		Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
	})
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func workersString(n int) string {
	if n == 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogMemoryConfig logs the memory limit chosen at startup.
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if !result.Configured {
		logging.Info("  No memory limit configured (set MEMORY_LIMIT or GOMEMLIMIT)")
		logging.Info("")
		return
	}
	switch result.Source {
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %d bytes", result.ContainerLimit)
		logging.Info("  Ratio:           %.2f", result.Ratio)
		logging.Info("  [OK] GOMEMLIMIT set to %d bytes", result.GoMemLimit)
	default:
		logging.Info("  [OK] GOMEMLIMIT from environment: %d bytes", result.GoMemLimit)
	}
	logging.Info("")
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogIndexStoreInit logs how many entries were loaded from the snapshots.
func LogIndexStoreInit(entries, deleted int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INDEX STORE")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Loaded %d entries (%d deleted) in %v", entries, deleted, duration)
}

// LogCollaboratorsInit checks exiftool and logs which optional enrichment
// services are configured.
func LogCollaboratorsInit(config *Config) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("COLLABORATORS")
	logging.Info("------------------------------------------------------------")

	if err := checkExifTool(config.ExifToolPath); err != nil {
		logging.Warn("  exiftool check failed: %v", err)
		logging.Warn("  Falling back to the built-in EXIF decoder")
	} else {
		logging.Info("  [OK] exiftool is available")
	}

	if config.FaceDetectionEnabled() {
		logging.Info("  [OK] Face detector: %s", config.FaceDetectorURL)
	} else {
		logging.Info("  Face detection disabled (FACE_DETECTOR_URL not set)")
	}

	if config.GeocodingEnabled() {
		logging.Info("  [OK] Geocoder: %s (min interval %v)", config.GeocoderURL, config.GeocoderMinInterval)
	} else {
		logging.Info("  Geocoding disabled")
	}
}

// LogObjectStoreInit logs the derived image storage backend.
func LogObjectStoreInit(name string) {
	logging.Info("  [OK] Object store: %s", name)
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
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(path, "/")
	return first
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
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
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

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __           ____          __
   / __ \/ /_  ____  / /_____     /  _/___  ____/ /__  _  __
  / /_/ / __ \/ __ \/ __/ __ \    / // __ \/ __  / _ \| |/_/
 / ____/ / / / /_/ / /_/ /_/ /  _/ // / / / /_/ /  __/>  <
/_/   /_/ /_/\____/\__/\____/  /___/_/ /_/\__,_/\___/_/|_|

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

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

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

func checkMediaDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	if logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount, dirCount := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}
	return nil
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
	}
	return nil
}

func checkExifTool(bin string) error {
	if bin == "" {
		bin = "exiftool"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", bin)
	}
	logging.Debug("  exiftool path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-ver").Output()
	if err != nil {
		return fmt.Errorf("failed to get exiftool version: %w", err)
	}
	logging.Debug("  exiftool version: %s", strings.TrimSpace(string(output)))

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
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
