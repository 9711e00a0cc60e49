package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security/audit"
	"github.com/yourorg/staffdesk/internal/security/middleware"
	"github.com/yourorg/staffdesk/internal/service"
)

// PayrollHandler handles the payroll workflow endpoints
type PayrollHandler struct {
	payroll  *service.PayrollService
	staff    *service.StaffService
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(
	payroll *service.PayrollService,
	staff *service.StaffService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *PayrollHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PayrollHandler{
		payroll:  payroll,
		staff:    staff,
		auditLog: auditLog,
		logger:   logger,
	}
}

// PayrollRequestBody represents a payroll request submission
type PayrollRequestBody struct {
	EmployeeID string  `json:"employeeId"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Amount     float64 `json:"amount"`
}

// Request handles POST /payroll (HR)
func (h *PayrollHandler) Request(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req PayrollRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request"})
		return
	}

	created, err := h.payroll.Request(claims.UserID, req.EmployeeID, req.Month, req.Year, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Payroll request created.",
		"payroll": created,
	})
}

// ListRequests handles GET /payroll (Admin)
func (h *PayrollHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.payroll.ListRequests()
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*domain.PayrollRequest{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payrolls": reqs})
}

// Pay handles PATCH /payroll/{id}/pay (Admin)
func (h *PayrollHandler) Pay(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	result, err := h.payroll.Pay(id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.auditLog.LogPayment(r.Context(), claims.UserID, id, result.TransactionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Payment successful.",
		"transactionId": result.TransactionID,
	})
}

// ListOwnPayments handles GET /payments (Employee)
func (h *PayrollHandler) ListOwnPayments(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.payroll.ListOwnPayments(claims.UserID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Payments == nil {
		result.Payments = []*domain.PaymentRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments": result.Payments,
		"total":    result.Total,
		"page":     result.Page,
		"pages":    result.Pages,
	})
}

// ToggleVerified handles PATCH /users/{id}/verify (HR or Admin)
func (h *PayrollHandler) ToggleVerified(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	newStatus, err := h.payroll.ToggleVerified(id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.staff.InvalidateDirectory(r.Context())
	h.auditLog.LogVerifyToggle(r.Context(), claims.UserID, id, strconv.FormatBool(newStatus))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Employee verification updated.",
		"isVerified": newStatus,
	})
}
