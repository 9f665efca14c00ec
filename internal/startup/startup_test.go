package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_SET_VAR", "custom")
	t.Setenv("TEST_EMPTY_VAR", "")

	if got := getEnv("TEST_SET_VAR", "default"); got != "custom" {
		t.Errorf("getEnv(set) = %q, want custom", got)
	}
	if got := getEnv("TEST_EMPTY_VAR", "default"); got != "default" {
		t.Errorf("getEnv(empty) = %q, want default", got)
	}
	if got := getEnv("TEST_NEVER_SET_VAR", "default"); got != "default" {
		t.Errorf("getEnv(unset) = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{name: "unset uses default", envValue: "", defaultValue: true, want: true},
		{name: "true", envValue: "true", defaultValue: false, want: true},
		{name: "false", envValue: "false", defaultValue: true, want: false},
		{name: "one", envValue: "1", defaultValue: false, want: true},
		{name: "invalid uses default", envValue: "maybe", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.envValue)
			if got := getEnvBool("TEST_BOOL_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitDirs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "/media", want: []string{"/media"}},
		{name: "semicolon", input: "/photos;/videos", want: []string{"/photos", "/videos"}},
		{name: "comma with spaces", input: "/photos, /videos ,", want: []string{"/photos", "/videos"}},
		{name: "mixed separators", input: "/a;/b,/c", want: []string{"/a", "/b", "/c"}},
		{name: "empty", input: "", want: []string{}},
		{name: "only separators", input: ";,;", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitDirs(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitDirs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitDirsMakesRelativePathsAbsolute(t *testing.T) {
	got := SplitDirs("photos")
	if len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Errorf("SplitDirs(relative) = %v", got)
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "6", want: 6 * time.Hour},
		{input: "0.5", want: 30 * time.Minute},
		{input: " 24 ", want: 24 * time.Hour},
		{input: "0", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "6h", wantErr: true},
		{input: "", wantErr: true},
		{input: "NaN", wantErr: true},
		{input: "Inf", wantErr: true},
		{input: "-Inf", wantErr: true},
		{input: "1e12", wantErr: true},
		{input: "1e-15", wantErr: true},
		{input: "2000000", want: 2000000 * time.Hour},
	}

	for _, tt := range tests {
		got, err := parseHours(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHours(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHours(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	photos := t.TempDir()
	dbDir := filepath.Join(t.TempDir(), "db")

	t.Setenv("MEDIA_DIRS", photos+";"+filepath.Join(t.TempDir(), "missing"))
	t.Setenv("DATABASE_DIR", dbDir)
	t.Setenv("RESCAN_INTERVAL_HOURS", "1.5")
	t.Setenv("PORT", "8181")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("CONFIG_FILE", "")

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if len(config.MediaDirs) != 2 || config.MediaDirs[0] != photos {
		t.Errorf("MediaDirs = %v", config.MediaDirs)
	}
	if config.RescanInterval != 90*time.Minute {
		t.Errorf("RescanInterval = %v, want 1h30m", config.RescanInterval)
	}
	if config.Port != "8181" || config.MetricsEnabled {
		t.Errorf("unexpected config: %+v", config)
	}
	if config.DatabasePath != filepath.Join(dbDir, "media.db") {
		t.Errorf("DatabasePath = %s", config.DatabasePath)
	}
	if info, err := os.Stat(dbDir); err != nil || !info.IsDir() {
		t.Error("database directory should have been created")
	}
}

func TestLoadConfigInvalidInterval(t *testing.T) {
	t.Setenv("MEDIA_DIRS", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("RESCAN_INTERVAL_HOURS", "soon")

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if config.RescanInterval != DefaultRescanInterval {
		t.Errorf("RescanInterval = %v, want default", config.RescanInterval)
	}
}

func TestLoadConfigDatabaseDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDIA_DIRS", t.TempDir())
	t.Setenv("DATABASE_DIR", file)

	if _, err := loadConfig(); err == nil {
		t.Error("expected an error when DATABASE_DIR is a file")
	}
}

func TestGetRoutes(t *testing.T) {
	ok := func(http.ResponseWriter, *http.Request) {}
	router := mux.NewRouter()
	router.HandleFunc("/healthz", ok).Methods("GET").Name("health")
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/days/{month}/{day}", ok).Methods("GET")
	api.HandleFunc("/reindex", ok).Methods("POST")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}

	found := make(map[string]string)
	for _, r := range routes {
		found[r.Method+" "+r.Path] = r.Name
	}
	for _, want := range []string{"GET /healthz", "GET /api/days/{month}/{day}", "POST /api/reindex"} {
		if _, ok := found[want]; !ok {
			t.Errorf("route %q not found in %v", want, routes)
		}
	}
	if found["GET /healthz"] != "health" {
		t.Error("route name not captured")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "healthz"},
		{"/api/days/{month}/{day}", "api/days"},
		{"/api/today", "api/today"},
		{"/api", "api"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
