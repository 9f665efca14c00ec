package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"media-calendar/internal/metrics"
)

func captureAccessLog(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	prev := accessLog
	accessLog = func(line string) { lines = append(lines, line) }
	t.Cleanup(func() { accessLog = prev })
	return &lines
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "/api/today", want: "/api/today"},
		{name: "newline forging", input: "/a\nFAKE 200", want: "/a FAKE 200"},
		{name: "carriage return", input: "a\rb", want: "a b"},
		{name: "null byte", input: "a\x00b", want: "ab"},
		{name: "ansi escape", input: "\x1b[31mred", want: "[31mred"},
		{name: "tab kept", input: "a\tb", want: "a\tb"},
		{name: "bell stripped", input: "a\x07b", want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerWritesW3CLine(t *testing.T) {
	lines := captureAccessLog(t)

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("12345"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/days/7/4?x=1", nil)
	req.Header.Set("User-Agent", "curl 8.0")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(*lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(*lines))
	}
	fields := strings.Fields((*lines)[0])
	want := map[int]string{2: "10.0.0.1", 3: "GET", 4: "/api/days/7/4", 5: "x=1", 6: "418", 7: "5"}
	for i, v := range want {
		if fields[i] != v {
			t.Errorf("field %d = %q, want %q (line %q)", i, fields[i], v, (*lines)[0])
		}
	}
	if !strings.HasSuffix((*lines)[0], `"curl 8.0"`) {
		t.Errorf("user agent not quoted: %q", (*lines)[0])
	}
}

func TestLoggerSkipsHealthChecksWhenDisabled(t *testing.T) {
	lines := captureAccessLog(t)
	config := DefaultLoggingConfig()
	config.LogHealthChecks = false

	handler := Logger(config)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/api/stats"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(*lines) != 1 || !strings.Contains((*lines)[0], "/api/stats") {
		t.Errorf("unexpected log lines: %v", *lines)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.168.1.5:5555", want: "192.168.1.5"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "172.16.0.9"}, remote: "1.1.1.1:1", want: "172.16.0.9"},
		{name: "x-forwarded-for wins", headers: map[string]string{"X-Forwarded-For": " 8.8.8.8 ", "X-Real-IP": "9.9.9.9"}, want: "8.8.8.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRequestDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/reindex", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusAccepted)

	line := formatRequest(req, rw, 1500*time.Millisecond, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC))
	want := "2024-03-01 10:20:30 127.0.0.1 POST /api/reindex - 202 0 1500 -"
	if line != want {
		t.Errorf("formatRequest() = %q, want %q", line, want)
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/api/days/{month}/{day}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	router.HandleFunc("/healthz", func(http.ResponseWriter, *http.Request) {}).Methods("GET")

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/days/{month}/{day}", "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/api/days/1/2", "/api/days/12/25", "/healthz"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("request counter grew by %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in-flight gauge = %v, want 0", got)
	}
}

func TestRouteLabelWithoutRoute(t *testing.T) {
	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/nope", nil)); got != "unmatched" {
		t.Errorf("routeLabel() = %q, want unmatched", got)
	}
}
