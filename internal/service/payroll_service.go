package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
	"github.com/yourorg/staffdesk/internal/security"
)

// PayrollService drives the request -> verification-gate -> payment workflow
type PayrollService struct {
	userRepo    domain.UserRepository
	payrollRepo domain.PayrollRepository
	pageSize    int
	logger      *slog.Logger
}

// NewPayrollService creates a new payroll service
func NewPayrollService(
	userRepo domain.UserRepository,
	payrollRepo domain.PayrollRepository,
	pageSize int,
	logger *slog.Logger,
) *PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 5
	}

	return &PayrollService{
		userRepo:    userRepo,
		payrollRepo: payrollRepo,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// Request creates a payroll request for a verified employee. At most one
// request may exist per (employee, month, year).
func (s *PayrollService) Request(actorID, employeeID string, month, year int, amount float64) (*domain.PayrollRequest, error) {
	if employeeID == "" || month < 1 || month > 12 || year <= 0 || amount <= 0 {
		return nil, fmt.Errorf("%w: missing required fields", domain.ErrValidation)
	}

	employee, err := s.userRepo.GetByID(employeeID)
	if err != nil || employee.Role != string(security.RoleEmployee) {
		return nil, fmt.Errorf("%w: employee not found", domain.ErrNotFound)
	}
	if !employee.IsVerified {
		return nil, fmt.Errorf("%w: employee not verified", domain.ErrPolicy)
	}

	exists, err := s.payrollRepo.RequestExists(employeeID, month, year)
	if err != nil {
		s.logger.Error("failed to check payroll request", slog.String("error", err.Error()))
		return nil, errors.New("failed to create payroll request")
	}
	if exists {
		return nil, fmt.Errorf("%w: payroll request already exists for this month/year", domain.ErrConflict)
	}

	req := &domain.PayrollRequest{
		EmployeeID:   employeeID,
		EmployeeName: employee.Name,
		Amount:       amount,
		Month:        month,
		Year:         year,
		RequestedBy:  actorID,
	}
	// CreateRequest maps a racing duplicate to ErrConflict via the unique index.
	if err := s.payrollRepo.CreateRequest(req); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create payroll request", slog.String("error", err.Error()))
		return nil, errors.New("failed to create payroll request")
	}

	s.logger.Info("payroll request created",
		slog.String("employee_id", employeeID),
		slog.Int("month", month),
		slog.Int("year", year),
	)
	return req, nil
}

// ListRequests returns all payroll requests, newest period first.
func (s *PayrollService) ListRequests() ([]*domain.PayrollRequest, error) {
	reqs, err := s.payrollRepo.ListRequests()
	if err != nil {
		s.logger.Error("failed to list payroll requests", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch payrolls")
	}
	return reqs, nil
}

// PayResult reports a completed payment
type PayResult struct {
	TransactionID string
	PaymentDate   time.Time
}

// Pay marks a request paid exactly once and appends a payment ledger row.
// The ledger check is independent of the request's own paid flag so two
// requests targeting the same period cannot both pay out.
func (s *PayrollService) Pay(requestID string) (*PayResult, error) {
	req, err := s.payrollRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req.Paid {
		return nil, fmt.Errorf("%w: already paid", domain.ErrConflict)
	}

	alreadyPaid, err := s.payrollRepo.PaymentExists(req.EmployeeID, req.Month, req.Year)
	if err != nil {
		s.logger.Error("failed to check payment", slog.String("error", err.Error()))
		return nil, errors.New("failed to process payment")
	}
	if alreadyPaid {
		return nil, fmt.Errorf("%w: payment already made for this month/year", domain.ErrConflict)
	}

	paidAt := time.Now()
	transactionID := generateTransactionID(paidAt)

	if err := s.payrollRepo.Pay(requestID, transactionID, paidAt); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to pay payroll", slog.String("error", err.Error()))
		return nil, errors.New("failed to process payment")
	}

	metrics.ObservePayrollPayment()
	s.logger.Info("payroll paid",
		slog.String("request_id", requestID),
		slog.String("employee_id", req.EmployeeID),
		slog.String("transaction_id", transactionID),
	)

	return &PayResult{TransactionID: transactionID, PaymentDate: paidAt}, nil
}

// ListOwnPayments returns one page of the actor's payment history, oldest
// period first.
func (s *PayrollService) ListOwnPayments(actorID string, page, limit int) (*domain.PaymentPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.pageSize
	}

	payments, total, err := s.payrollRepo.ListPaymentsByEmployee(actorID, (page-1)*limit, limit)
	if err != nil {
		s.logger.Error("failed to list payments", slog.String("error", err.Error()))
		return nil, errors.New("failed to fetch payments")
	}

	pages := (total + limit - 1) / limit
	return &domain.PaymentPage{Payments: payments, Total: total, Page: page, Pages: pages}, nil
}

// ToggleVerified flips an employee's verification flag and returns the new
// value.
func (s *PayrollService) ToggleVerified(targetID string) (bool, error) {
	user, err := s.userRepo.GetByID(targetID)
	if err != nil || user.Role != string(security.RoleEmployee) {
		return false, fmt.Errorf("%w: employee not found", domain.ErrNotFound)
	}

	newStatus := !user.IsVerified
	if err := s.userRepo.SetVerified(targetID, newStatus); err != nil {
		s.logger.Error("failed to toggle verification", slog.String("error", err.Error()))
		return false, errors.New("failed to update verification")
	}
	return newStatus, nil
}

// generateTransactionID builds an opaque payment reference. A timestamp alone
// can collide under concurrent payments, so a random suffix is appended.
func generateTransactionID(at time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TXN%d", at.UnixNano())
	}
	return fmt.Sprintf("TXN%d%s", at.UnixMilli(), hex.EncodeToString(buf))
}
