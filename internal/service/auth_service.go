package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
	"github.com/yourorg/staffdesk/internal/security"
	"github.com/yourorg/staffdesk/internal/security/auth"
)

// AuthService handles registration, login and token verification
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 168 * time.Hour
	}

	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterInput carries the registration fields
type RegisterInput struct {
	Email         string
	Password      string
	Name          string
	Role          string
	BankAccountNo string
	Salary        float64
	Designation   string
	Photo         string
}

// PublicUser is the redacted user view returned by auth operations
type PublicUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AuthResult represents a successful registration or login
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// Register creates a new account. Self-registration as Admin is forbidden and
// the password must satisfy the complexity rules.
func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Role == "" {
		return nil, fmt.Errorf("%w: missing required fields", domain.ErrValidation)
	}
	if in.Role == string(security.RoleAdmin) {
		return nil, fmt.Errorf("%w: cannot register as Admin", domain.ErrForbidden)
	}
	if violations := auth.ValidatePassword(in.Password); len(violations) > 0 {
		metrics.ObserveRegistration("weak_password")
		return nil, fmt.Errorf("%w: %s", domain.ErrPolicy, strings.Join(violations, "; "))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		Email:         in.Email,
		PasswordHash:  hash,
		Name:          in.Name,
		Role:          in.Role,
		BankAccountNo: in.BankAccountNo,
		Salary:        in.Salary,
		Designation:   in.Designation,
		Photo:         in.Photo,
		IsVerified:    false,
		IsFired:       false,
	}

	// The unique index on users(email) backs this up under concurrency.
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.ObserveRegistration("duplicate")
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	metrics.ObserveRegistration("success")
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return &AuthResult{
		Token: token,
		User:  PublicUser{Email: user.Email, Name: user.Name, Role: user.Role},
	}, nil
}

// Login authenticates a user and issues a fresh token. Unknown email and wrong
// password produce the same generic error to prevent user enumeration.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		s.logger.Info("login attempt with non-existent email", slog.String("email", email))
		metrics.ObserveLogin("unknown_email")
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrAuth)
	}

	if user.IsFired {
		metrics.ObserveLogin("fired")
		return nil, fmt.Errorf("%w: you have been fired, contact admin", domain.ErrForbidden)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("bad_password")
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrAuth)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	metrics.ObserveLogin("success")
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return &AuthResult{
		Token: token,
		User:  PublicUser{Email: user.Email, Name: user.Name, Role: user.Role},
	}, nil
}

// VerifyToken verifies and parses a bearer token
func (s *AuthService) VerifyToken(tokenString string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrAuth)
	}
	return claims, nil
}
