package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security/audit"
	"github.com/yourorg/staffdesk/internal/security/middleware"
	"github.com/yourorg/staffdesk/internal/service"
)

// StaffHandler handles staff listings and admin lifecycle endpoints
type StaffHandler struct {
	staff    *service.StaffService
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staff *service.StaffService, auditLog *audit.Logger, logger *slog.Logger) *StaffHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &StaffHandler{
		staff:    staff,
		auditLog: auditLog,
		logger:   logger,
	}
}

// ListEmployees handles GET /employee-list (HR)
func (h *StaffHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.staff.ListEmployees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"employees": users})
}

// ListVerifiedStaff handles GET /all-employee-list (Admin)
func (h *StaffHandler) ListVerifiedStaff(w http.ResponseWriter, r *http.Request) {
	users, err := h.staff.ListVerifiedStaff(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Details handles GET /employee-details/{id} (HR)
func (h *StaffHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.staff.Details(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if details.Payments == nil {
		details.Payments = []*domain.PaymentRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        details.Name,
		"photo":       details.Photo,
		"designation": details.Designation,
		"payments":    details.Payments,
	})
}

// Fire handles PATCH /users/{id}/fire (Admin)
func (h *StaffHandler) Fire(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.staff.Fire(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.auditLog.LogFired(r.Context(), claims.UserID, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User fired."})
}

// MakeHR handles PATCH /users/{id}/make-hr (Admin)
func (h *StaffHandler) MakeHR(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.staff.PromoteToHR(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.auditLog.LogPromoted(r.Context(), claims.UserID, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User promoted to HR."})
}

// AdjustSalaryRequest represents a salary change
type AdjustSalaryRequest struct {
	NewSalary *float64 `json:"newSalary"`
}

// AdjustSalary handles PATCH /users/{id}/salary (Admin)
func (h *StaffHandler) AdjustSalary(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	var req AdjustSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewSalary == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid salary"})
		return
	}

	if err := h.staff.AdjustSalary(r.Context(), id, *req.NewSalary); err != nil {
		writeError(w, err)
		return
	}

	h.auditLog.LogSalaryChange(r.Context(), claims.UserID, id, fmt.Sprintf("%.2f", *req.NewSalary))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Salary updated."})
}
