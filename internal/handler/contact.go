package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/featureflags"
	"github.com/yourorg/staffdesk/internal/service"
)

// ContactHandler handles visitor contact messages
type ContactHandler struct {
	contact *service.ContactService
	logger  *slog.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contact *service.ContactService, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ContactHandler{contact: contact, logger: logger}
}

// SubmitContactRequest represents a visitor message
type SubmitContactRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit handles POST /contact (public)
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if featureflags.Enabled(featureflags.ContactIntakeDisabled) {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: "contact intake temporarily disabled"})
		return
	}

	var req SubmitContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	msg, err := h.contact.Submit(req.Email, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("contact message received", "email", msg.Email)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Message received.",
		"contact": msg,
	})
}

// List handles GET /contact (Admin)
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.contact.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.ContactMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}
