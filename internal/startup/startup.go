package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"reodash/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
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
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	RecordingsDir   string
	HLSDir          string
	DataDir         string
	Port            string
	MaxTranscodes   int
	IndexInterval   time.Duration
	MetricsEnabled  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string
	ThumbnailDir string

	// Feature flags based on directory availability
	ThumbnailsEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	recordingsDir := getEnv("RECORDINGS_PATH", "/recordings")
	hlsDir := getEnv("HLS_PATH", "/tmp/reodash_hls")
	dataDir := getEnv("DATA_DIR", "/data")
	port := getEnv("PORT", "5000")
	maxTranscodesStr := getEnv("MAX_CONCURRENT_TRANSCODES", "3")
	indexIntervalStr := getEnv("INDEX_INTERVAL", "5m")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", false)

	logging.Info("  RECORDINGS_PATH:           %s", recordingsDir)
	logging.Info("  HLS_PATH:                  %s", hlsDir)
	logging.Info("  DATA_DIR:                  %s", dataDir)
	logging.Info("  PORT:                      %s", port)
	logging.Info("  MAX_CONCURRENT_TRANSCODES: %s", maxTranscodesStr)
	logging.Info("  INDEX_INTERVAL:            %s", indexIntervalStr)
	logging.Info("  METRICS_ENABLED:           %v", metricsEnabled)
	logging.Info("  LOG_LEVEL:                 %s", logging.GetLevel())

	maxTranscodes, err := strconv.Atoi(maxTranscodesStr)
	if err != nil || maxTranscodes < 1 {
		logging.Warn("  Invalid MAX_CONCURRENT_TRANSCODES, using default: 3")
		maxTranscodes = 3
	}

	indexInterval, err := time.ParseDuration(indexIntervalStr)
	if err != nil {
		logging.Warn("  Invalid INDEX_INTERVAL, using default: 5m")
		indexInterval = 5 * time.Minute
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	recordingsDir, err = filepath.Abs(recordingsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recordings path: %w", err)
	}
	hlsDir, err = filepath.Abs(hlsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HLS path: %w", err)
	}
	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data path: %w", err)
	}
	logging.Info("  Recordings directory (absolute): %s", recordingsDir)
	logging.Info("  HLS directory (absolute):        %s", hlsDir)
	logging.Info("  Data directory (absolute):       %s", dataDir)

	// Missing recordings directory is a warning: cameras may mount it later.
	if _, err := os.Stat(recordingsDir); err != nil {
		logging.Warn("  Recordings directory issue: %v", err)
	}

	// The HLS root must be writable; every job directory lives under it.
	if err := os.MkdirAll(hlsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create HLS directory: %w", err)
	}
	if err := testWriteAccess(hlsDir); err != nil {
		return nil, fmt.Errorf("HLS directory is not writable: %w", err)
	}
	logging.Info("  [OK] HLS directory is writable")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := testWriteAccess(dataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable (required for index database): %w", err)
	}
	logging.Info("  [OK] Data directory is writable")

	config := &Config{
		RecordingsDir:   recordingsDir,
		HLSDir:          hlsDir,
		DataDir:         dataDir,
		Port:            port,
		MaxTranscodes:   maxTranscodes,
		IndexInterval:   indexInterval,
		MetricsEnabled:  metricsEnabled,
		LogHealthChecks: logHealthChecks,
		DatabasePath:    filepath.Join(dataDir, "reodash.db"),
		ThumbnailDir:    filepath.Join(dataDir, "thumbnails"),
	}

	config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Index database: ENABLED (required)")
	logging.Info("    Thumbnails:     %s", enabledString(config.ThumbnailsEnabled))
	logging.Info("    Metrics:        %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// LogToolCheck verifies the external encoder and prober are reachable.
// Their absence is not fatal: origin serving and browsing still work.
func LogToolCheck() {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("TRANSCODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", tool, err)
			logging.Warn("  HLS playback will not work until %s is available", tool)
		} else {
			logging.Info("  [OK] %s is available", tool)
		}
	}
}

// LogIndexerInit logs indexer initialization
func LogIndexerInit(interval time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INDEXER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Index interval: %v", interval)
}

// LogServerStarted logs successful server start
func LogServerStarted(port string, startupDuration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time: %v", startupDuration)
	logging.Info("  Listening on: http://0.0.0.0:%s", port)
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
                         __           __
    ________  ____  ____/ /___ ______/ /_
   / ___/ _ \/ __ \/ __  / __ '/ ___/ __ \
  / /  /  __/ /_/ / /_/ / /_/ (__  ) / / /
 /_/   \___/\____/\__,_/\__,_/____/_/ /_/

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
	logging.Info("")
}

func setupOptionalDir(path, name string) bool {
	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
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

func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	logging.Debug("  %s path: %s", name, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, name, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", name, err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  %s version: %s", name, strings.TrimSpace(lines[0]))
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
