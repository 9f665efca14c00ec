package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"media-calendar/internal/database"
	"media-calendar/internal/logging"
)

// DayResponse is the "on this day" view of one calendar day.
type DayResponse struct {
	Month int                 `json:"month"`
	Day   int                 `json:"day"`
	Total int                 `json:"total"`
	Years []database.DayGroup `json:"years"`
}

// GetDay returns the records captured on {month}/{day} of any year, newest
// year first.
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	month, errMonth := strconv.Atoi(vars["month"])
	day, errDay := strconv.Atoi(vars["day"])
	if errMonth != nil || errDay != nil || !validDay(month, day) {
		respondError(w, http.StatusBadRequest, "invalid month or day")
		return
	}
	h.writeDay(w, r, month, day)
}

// GetToday returns the records captured on today's local calendar day.
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	h.writeDay(w, r, int(now.Month()), now.Day())
}

func (h *Handlers) writeDay(w http.ResponseWriter, r *http.Request, month, day int) {
	groups, err := h.db.ListByDay(r.Context(), month, day)
	if err != nil {
		logging.Error("Failed to list records for %02d-%02d: %v", month, day, err)
		respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	if groups == nil {
		groups = []database.DayGroup{}
	}
	response := DayResponse{Month: month, Day: day, Years: groups}
	for _, g := range groups {
		response.Total += len(g.Records)
	}

	respond(w, http.StatusOK, response)
}

// validDay accepts any day that exists in some year, so 02-29 is valid.
func validDay(month, day int) bool {
	daysIn := [...]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	return month >= 1 && month <= 12 && day >= 1 && day <= daysIn[month-1]
}

// GetMedia returns one record by its content identifier.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	if hash == "" {
		respondError(w, http.StatusBadRequest, "missing hash")
		return
	}

	record, err := h.db.GetRecordByHash(r.Context(), hash)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		logging.Error("Failed to look up record %s: %v", hash, err)
		respondError(w, http.StatusInternalServerError, "failed to look up record")
		return
	}

	respond(w, http.StatusOK, record)
}
