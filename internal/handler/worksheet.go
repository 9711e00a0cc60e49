package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security"
	"github.com/yourorg/staffdesk/internal/security/middleware"
	"github.com/yourorg/staffdesk/internal/service"
)

// WorksheetHandler handles the work entry endpoints
type WorksheetHandler struct {
	worksheets *service.WorksheetService
	logger     *slog.Logger
}

// NewWorksheetHandler creates a new worksheet handler
func NewWorksheetHandler(worksheets *service.WorksheetService, logger *slog.Logger) *WorksheetHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &WorksheetHandler{
		worksheets: worksheets,
		logger:     logger,
	}
}

// AddWorksheetRequest represents a new work entry
type AddWorksheetRequest struct {
	Task        string  `json:"task"`
	HoursWorked float64 `json:"hoursWorked"`
	Date        string  `json:"date"`
}

// UpdateWorksheetRequest carries a partial update; absent fields stay nil so
// they are distinguishable from zero values.
type UpdateWorksheetRequest struct {
	Task        *string  `json:"task"`
	HoursWorked *float64 `json:"hoursWorked"`
	Date        *string  `json:"date"`
}

// Add handles POST /work-sheets
func (h *WorksheetHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req AddWorksheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request"})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid date"})
		return
	}

	entry, err := h.worksheets.Add(claims.UserID, claims.Email, req.Task, req.HoursWorked, date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Work added!",
		"workSheet": entry,
	})
}

// List handles GET /work-sheets with optional month, year and userId filters
func (h *WorksheetHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	filter := domain.WorkEntryFilter{
		UserID: r.URL.Query().Get("userId"),
	}
	if v := r.URL.Query().Get("month"); v != "" {
		filter.Month, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("year"); v != "" {
		filter.Year, _ = strconv.Atoi(v)
	}

	entries, err := h.worksheets.List(claims.UserID, security.Role(claims.Role), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.WorkEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"workSheets": entries})
}

// Update handles PATCH /work-sheets/{id}
func (h *WorksheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	var req UpdateWorksheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request"})
		return
	}

	upd := domain.WorkEntryUpdate{
		Task:        req.Task,
		HoursWorked: req.HoursWorked,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid date"})
			return
		}
		upd.Date = &date
	}

	if err := h.worksheets.Update(claims.UserID, id, upd); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Work sheet updated."})
}

// Delete handles DELETE /work-sheets/{id}
func (h *WorksheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.worksheets.Delete(claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Work sheet deleted."})
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
