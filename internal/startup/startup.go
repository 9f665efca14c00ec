package startup

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"media-calendar/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// DefaultRescanInterval is used when RESCAN_INTERVAL_HOURS is unset or invalid.
const DefaultRescanInterval = 6 * time.Hour

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

// Config holds all application configuration
type Config struct {
	MediaDirs       []string
	ConfigFile      string
	DatabaseDir     string
	Port            string
	MetricsPort     string
	RescanInterval  time.Duration
	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string
}

// Directories returns the source of scan roots and the rescan interval. It
// consults the optional config file on every call.
func (c *Config) Directories() *DirectorySource {
	return NewDirectorySource(c.MediaDirs, c.RescanInterval, c.ConfigFile)
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	return loadConfig()
}

func loadConfig() (*Config, error) {
	section("CONFIGURATION")

	mediaDirsStr := getEnv("MEDIA_DIRS", "/media")
	configFile := getEnv("CONFIG_FILE", "")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	intervalStr := getEnv("RESCAN_INTERVAL_HOURS", "6")
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  MEDIA_DIRS:             %s", mediaDirsStr)
	logging.Info("  CONFIG_FILE:            %s", valueOrUnset(configFile))
	logging.Info("  DATABASE_DIR:           %s", databaseDir)
	logging.Info("  PORT:                   %s", port)
	logging.Info("  METRICS_PORT:           %s", metricsPort)
	logging.Info("  METRICS_ENABLED:        %v", metricsEnabled)
	logging.Info("  RESCAN_INTERVAL_HOURS:  %s", intervalStr)
	logging.Info("  LOG_HEALTH_CHECKS:      %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	interval, err := parseHours(intervalStr)
	if err != nil {
		logging.Warn("  Invalid RESCAN_INTERVAL_HOURS (%v), using default: %v", err, DefaultRescanInterval)
		interval = DefaultRescanInterval
	}

	section("DIRECTORY SETUP")

	mediaDirs := SplitDirs(mediaDirsStr)
	if len(mediaDirs) == 0 {
		logging.Warn("  No media directories configured, scans will do nothing")
	}
	for _, dir := range mediaDirs {
		if err := checkMediaDirectory(dir); err != nil {
			logging.Warn("  Media directory %s: %v", dir, err)
		}
	}

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	config := &Config{
		MediaDirs:       mediaDirs,
		ConfigFile:      configFile,
		DatabaseDir:     databaseDir,
		Port:            port,
		MetricsPort:     metricsPort,
		RescanInterval:  interval,
		LogHealthChecks: logHealthChecks,
		MetricsEnabled:  metricsEnabled,
		DatabasePath:    filepath.Join(databaseDir, "media.db"),
	}

	// Ensure base database directory exists (required for database)
	if err := ensureDirectory(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	if configFile != "" {
		if _, err := readFileConfig(configFile); err != nil {
			logging.Warn("  Config file %s: %v (environment values are used until it is readable)", configFile, err)
		} else {
			logging.Info("  [OK] Config file is readable, re-read before every scan")
		}
	}

	return config, nil
}

// SplitDirs splits a root list on ';' and ',' and makes every entry
// absolute. Empty entries are dropped.
func SplitDirs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	dirs := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		dirs = append(dirs, f)
	}
	return dirs
}

// maxIntervalHours is the largest interval a time.Duration can hold.
const maxIntervalHours = float64(math.MaxInt64) / float64(time.Hour)

// parseHours parses a positive, possibly fractional number of hours.
func parseHours(s string) (time.Duration, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return hoursToInterval(hours)
}

// hoursToInterval converts an hour count to a rescan interval. It rejects
// non-finite values, values a Duration cannot hold, and values that round
// to under a second.
func hoursToInterval(hours float64) (time.Duration, error) {
	switch {
	case math.IsNaN(hours) || math.IsInf(hours, 0):
		return 0, fmt.Errorf("not a finite number: %v", hours)
	case hours <= 0:
		return 0, fmt.Errorf("must be positive: %v", hours)
	case hours >= maxIntervalHours:
		return 0, fmt.Errorf("too large: %v", hours)
	}
	d := time.Duration(hours * float64(time.Hour))
	if d < time.Second {
		return 0, fmt.Errorf("shorter than a second: %v", hours)
	}
	return d, nil
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

// checkMediaDirectory reports a media root that is missing or not a
// directory. Media roots are mounted, never created.
func checkMediaDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Info("  [OK] Media directory: %s", path)
	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("    Contents: %d entries (top level)", len(entries))
		}
	}
	return nil
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
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
