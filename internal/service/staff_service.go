package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security"
)

// DirectoryCache is the subset of the Redis client the staff directory uses.
// A nil cache degrades to uncached reads.
type DirectoryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	cacheKeyEmployees = "directory:employees"
	cacheKeyVerified  = "directory:verified"
)

// StaffService handles admin lifecycle operations and staff listings
type StaffService struct {
	userRepo    domain.UserRepository
	payrollRepo domain.PayrollRepository
	cache       DirectoryCache
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(
	userRepo domain.UserRepository,
	payrollRepo domain.PayrollRepository,
	cache DirectoryCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *StaffService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &StaffService{
		userRepo:    userRepo,
		payrollRepo: payrollRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Fire marks a user fired. Irreversible: no operation clears the flag.
func (s *StaffService) Fire(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.IsFired {
		return fmt.Errorf("%w: user already fired", domain.ErrConflict)
	}

	if err := s.userRepo.SetFired(userID); err != nil {
		s.logger.Error("failed to fire user", slog.String("error", err.Error()))
		return errors.New("failed to fire user")
	}

	s.invalidateDirectory(ctx)
	s.logger.Info("user fired", slog.String("user_id", userID))
	return nil
}

// PromoteToHR promotes an employee to HR.
func (s *StaffService) PromoteToHR(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.Role == string(security.RoleHR) {
		return fmt.Errorf("%w: user is already HR", domain.ErrConflict)
	}

	if err := s.userRepo.SetRole(userID, string(security.RoleHR)); err != nil {
		s.logger.Error("failed to promote user", slog.String("error", err.Error()))
		return errors.New("failed to promote user")
	}

	s.invalidateDirectory(ctx)
	s.logger.Info("user promoted to HR", slog.String("user_id", userID))
	return nil
}

// AdjustSalary sets a new salary. Salaries only ever increase.
func (s *StaffService) AdjustSalary(ctx context.Context, userID string, newSalary float64) error {
	if newSalary <= 0 {
		return fmt.Errorf("%w: invalid salary", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if newSalary <= user.Salary {
		return fmt.Errorf("%w: salary can only be increased", domain.ErrPolicy)
	}

	if err := s.userRepo.SetSalary(userID, newSalary); err != nil {
		s.logger.Error("failed to update salary", slog.String("error", err.Error()))
		return errors.New("failed to update salary")
	}

	s.invalidateDirectory(ctx)
	s.logger.Info("salary updated",
		slog.String("user_id", userID),
		slog.Float64("salary", newSalary),
	)
	return nil
}

// ListEmployees returns all Employee-role users (HR view).
func (s *StaffService) ListEmployees(ctx context.Context) ([]*domain.User, error) {
	if users, ok := s.cachedList(ctx, cacheKeyEmployees); ok {
		return users, nil
	}

	users, err := s.userRepo.ListByRole(string(security.RoleEmployee))
	if err != nil {
		s.logger.Error("failed to list employees", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch employees")
	}

	s.storeList(ctx, cacheKeyEmployees, users)
	return users, nil
}

// ListVerifiedStaff returns all verified, not-fired users (Admin view).
func (s *StaffService) ListVerifiedStaff(ctx context.Context) ([]*domain.User, error) {
	if users, ok := s.cachedList(ctx, cacheKeyVerified); ok {
		return users, nil
	}

	users, err := s.userRepo.ListVerifiedActive()
	if err != nil {
		s.logger.Error("failed to list verified staff", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch users")
	}

	s.storeList(ctx, cacheKeyVerified, users)
	return users, nil
}

// EmployeeDetails is the HR view of one employee plus payment history for the
// salary chart.
type EmployeeDetails struct {
	Name        string
	Photo       string
	Designation string
	Payments    []*domain.PaymentRecord
}

// Details returns one employee's profile and payment history.
func (s *StaffService) Details(userID string) (*EmployeeDetails, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil || user.Role != string(security.RoleEmployee) {
		return nil, fmt.Errorf("%w: employee not found", domain.ErrNotFound)
	}

	payments, err := s.payrollRepo.ListAllPaymentsByEmployee(userID)
	if err != nil {
		s.logger.Error("failed to list payments", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch employee details")
	}

	return &EmployeeDetails{
		Name:        user.Name,
		Photo:       user.Photo,
		Designation: user.Designation,
		Payments:    payments,
	}, nil
}

// InvalidateDirectory is called after user mutations elsewhere (verify toggle).
func (s *StaffService) InvalidateDirectory(ctx context.Context) {
	s.invalidateDirectory(ctx)
}

func (s *StaffService) cachedList(ctx context.Context, key string) ([]*domain.User, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var users []*domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, false
	}
	return users, true
}

func (s *StaffService) storeList(ctx context.Context, key string, users []*domain.User) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logger.Debug("directory cache write failed", slog.String("error", err.Error()))
	}
}

func (s *StaffService) invalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyEmployees, cacheKeyVerified); err != nil {
		s.logger.Debug("directory cache invalidation failed", slog.String("error", err.Error()))
	}
}
