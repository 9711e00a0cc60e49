package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/staffdesk/internal/featureflags"
	"github.com/yourorg/staffdesk/internal/service"
)

// AuthHandler handles the public registration and login endpoints
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	BankAccountNo string  `json:"bank_account_no"`
	Salary        float64 `json:"salary"`
	Designation   string  `json:"designation"`
	Photo         string  `json:"photo"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful registration or login
type AuthResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    service.PublicUser `json:"user"`
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if featureflags.Enabled(featureflags.RegistrationClosed) {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: "registration is temporarily closed"})
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request"})
		return
	}

	result, err := h.authService.Register(service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		Role:          req.Role,
		BankAccountNo: req.BankAccountNo,
		Salary:        req.Salary,
		Designation:   req.Designation,
		Photo:         req.Photo,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "Registration successful!",
		Token:   result.Token,
		User:    result.User,
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request"})
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful!",
		Token:   result.Token,
		User:    result.User,
	})
}
