package handlers

import (
	"errors"
	"net/http"

	"media-calendar/internal/database"
	"media-calendar/internal/indexer"
	"media-calendar/internal/logging"
)

// StatsResponse is the index summary served by GetStats.
type StatsResponse struct {
	database.IndexStats
	LastScan *database.ScanSummary `json:"lastScan,omitempty"`
}

// GetStats returns the cached index statistics and the last persisted scan.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{IndexStats: h.db.GetStats()}

	last, err := h.db.GetLastScan(r.Context())
	if err != nil {
		logging.Warn("Failed to load last scan summary: %v", err)
	}
	response.LastScan = last

	w.Header().Set("Cache-Control", "no-cache")
	respond(w, http.StatusOK, response)
}

// TriggerReindex asks the scheduler to start a scan now.
func (h *Handlers) TriggerReindex(w http.ResponseWriter, _ *http.Request) {
	err := h.trigger.Trigger()
	switch {
	case err == nil:
		logging.Info("Manual rescan requested")
		respondStatus(w, http.StatusAccepted, "queued")
	case errors.Is(err, indexer.ErrScanInProgress):
		respondStatus(w, http.StatusConflict, "already_running")
	default:
		logging.Error("Failed to trigger scan: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to trigger scan")
	}
}
