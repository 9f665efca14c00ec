package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-calendar/internal/indexer"
	"media-calendar/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string                 `json:"status"`
	Ready        bool                   `json:"ready"`
	Version      string                 `json:"version"`
	Uptime       string                 `json:"uptime"`
	Indexing     bool                   `json:"indexing"`
	LastIndexed  string                 `json:"lastIndexed,omitempty"`
	LastError    string                 `json:"lastError,omitempty"`
	FilesIndexed int64                  `json:"filesIndexed"`
	Progress     *indexer.IndexProgress `json:"progress,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	healthStatus := h.indexer.GetHealthStatus()

	response := HealthResponse{
		Status:       statusStarting,
		Ready:        healthStatus.Ready,
		Version:      startup.Version,
		Uptime:       healthStatus.Uptime,
		Indexing:     healthStatus.Indexing,
		FilesIndexed: healthStatus.FilesIndexed,
		Progress:     healthStatus.IndexProgress,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if healthStatus.Ready {
		response.Status = statusHealthy
	}
	if !healthStatus.LastIndexed.IsZero() {
		response.LastIndexed = healthStatus.LastIndexed.Format(time.RFC3339)
	}
	if healthStatus.LastError != "" {
		response.LastError = healthStatus.LastError
		response.Status = statusDegraded
	}

	// 503 only while the index is not ready at all
	code := http.StatusOK
	if !healthStatus.Ready {
		code = http.StatusServiceUnavailable
	}
	respond(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		respond(w, http.StatusOK, nil)
		return
	}
	respondStatus(w, http.StatusOK, "alive")
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsReady() {
		respondStatus(w, http.StatusOK, "ready")
		return
	}
	respondStatus(w, http.StatusServiceUnavailable, "not_ready")
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	respond(w, http.StatusOK, startup.GetBuildInfo())
}
