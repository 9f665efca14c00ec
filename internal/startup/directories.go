package startup

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"media-calendar/internal/logging"
)

// fileConfig is the optional YAML config file. Zero values defer to the
// environment.
type fileConfig struct {
	MediaDirs           []string `yaml:"media_dirs"`
	RescanIntervalHours float64  `yaml:"rescan_interval_hours"`
}

func readFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("invalid YAML: %w", err)
	}
	return fc, nil
}

// DirectorySource resolves the scan roots and rescan interval. When a config
// file is set it is read on every call, so edits apply at the next scan;
// values missing from the file fall back to the environment.
type DirectorySource struct {
	envDirs     []string
	envInterval time.Duration
	file        string

	mu      sync.Mutex
	lastErr string
}

// NewDirectorySource creates a DirectorySource. file may be empty.
func NewDirectorySource(envDirs []string, envInterval time.Duration, file string) *DirectorySource {
	if envInterval <= 0 {
		envInterval = DefaultRescanInterval
	}
	return &DirectorySource{envDirs: envDirs, envInterval: envInterval, file: file}
}

// Roots returns the media roots to scan.
func (d *DirectorySource) Roots() []string {
	if fc, ok := d.load(); ok && len(fc.MediaDirs) > 0 {
		var dirs []string
		for _, dir := range fc.MediaDirs {
			dirs = append(dirs, SplitDirs(dir)...)
		}
		return dirs
	}
	return append([]string(nil), d.envDirs...)
}

// Interval returns the pause between scans.
func (d *DirectorySource) Interval() time.Duration {
	fc, ok := d.load()
	if !ok || fc.RescanIntervalHours == 0 {
		return d.envInterval
	}
	interval, err := hoursToInterval(fc.RescanIntervalHours)
	if err != nil {
		logging.Warn("Ignoring rescan_interval_hours in %s: %v", d.file, err)
		return d.envInterval
	}
	return interval
}

// load reads the config file. Repeated identical failures are logged once.
func (d *DirectorySource) load() (fileConfig, bool) {
	if d.file == "" {
		return fileConfig{}, false
	}

	fc, err := readFileConfig(d.file)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		if msg := err.Error(); msg != d.lastErr {
			logging.Warn("Failed to read config file %s, using environment values: %v", d.file, err)
			d.lastErr = msg
		}
		return fileConfig{}, false
	}
	d.lastErr = ""
	return fc, true
}
