package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
)

// PostgresPayrollRepository implements domain.PayrollRepository using
// PostgreSQL. It owns both the payroll request table and the payments ledger
// because Pay mutates them in one transaction.
type PostgresPayrollRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPayrollRepository creates a new payroll repository
func NewPostgresPayrollRepository(db *sql.DB, logger *slog.Logger) *PostgresPayrollRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPayrollRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRequest inserts a payroll request. A duplicate (employee, month, year)
// tuple surfaces as domain.ErrConflict via the unique index, which closes the
// check-then-insert race the service pre-check alone cannot.
func (r *PostgresPayrollRepository) CreateRequest(req *domain.PayrollRequest) error {
	query := `
		INSERT INTO payroll (employee_id, employee_name, amount, month, year, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, requested_at
	`

	err := r.db.QueryRow(
		query,
		req.EmployeeID,
		req.EmployeeName,
		req.Amount,
		req.Month,
		req.Year,
		req.RequestedBy,
	).Scan(&req.ID, &req.RequestedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payroll request already exists for this month/year", domain.ErrConflict)
		}
		r.logger.Error("failed to create payroll request",
			slog.String("employee_id", req.EmployeeID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create payroll request: %w", err)
	}

	return nil
}

// GetRequestByID retrieves a payroll request by ID
func (r *PostgresPayrollRepository) GetRequestByID(id string) (*domain.PayrollRequest, error) {
	req := &domain.PayrollRequest{}
	var paymentDate sql.NullTime
	var transactionID sql.NullString

	query := `
		SELECT id, employee_id, employee_name, amount, month, year, requested_by, requested_at, payment_date, paid, transaction_id
		FROM payroll
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&req.ID,
		&req.EmployeeID,
		&req.EmployeeName,
		&req.Amount,
		&req.Month,
		&req.Year,
		&req.RequestedBy,
		&req.RequestedAt,
		&paymentDate,
		&req.Paid,
		&transactionID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: payroll request not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payroll request: %w", err)
	}

	if paymentDate.Valid {
		req.PaymentDate = &paymentDate.Time
	}
	if transactionID.Valid {
		req.TransactionID = &transactionID.String
	}
	return req, nil
}

// RequestExists reports whether any request covers the payroll period.
func (r *PostgresPayrollRepository) RequestExists(employeeID string, month, year int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payroll WHERE employee_id = $1 AND month = $2 AND year = $3)`
	if err := r.db.QueryRow(query, employeeID, month, year).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payroll request: %w", err)
	}
	return exists, nil
}

// ListRequests returns all payroll requests, newest period first.
func (r *PostgresPayrollRepository) ListRequests() ([]*domain.PayrollRequest, error) {
	query := `
		SELECT id, employee_id, employee_name, amount, month, year, requested_by, requested_at, payment_date, paid, transaction_id
		FROM payroll
		ORDER BY year DESC, month DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("failed to list payroll requests", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list payroll requests: %w", err)
	}
	defer rows.Close()

	var reqs []*domain.PayrollRequest
	for rows.Next() {
		req := &domain.PayrollRequest{}
		var paymentDate sql.NullTime
		var transactionID sql.NullString
		err := rows.Scan(
			&req.ID,
			&req.EmployeeID,
			&req.EmployeeName,
			&req.Amount,
			&req.Month,
			&req.Year,
			&req.RequestedBy,
			&req.RequestedAt,
			&paymentDate,
			&req.Paid,
			&transactionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll request: %w", err)
		}
		if paymentDate.Valid {
			req.PaymentDate = &paymentDate.Time
		}
		if transactionID.Valid {
			req.TransactionID = &transactionID.String
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

// Pay marks the request paid and appends the payment ledger row in one
// transaction. The request must still be unpaid; the payments unique index
// rejects a second payment for the same period under concurrency.
func (r *PostgresPayrollRepository) Pay(requestID, transactionID string, paidAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE payroll SET paid = true, payment_date = $1, transaction_id = $2 WHERE id = $3 AND paid = false`,
		paidAt, transactionID, requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payroll paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: already paid", domain.ErrConflict)
	}

	_, err = tx.Exec(
		`INSERT INTO payments (employee_id, name, amount, month, year, transaction_id, payment_date)
		 SELECT employee_id, employee_name, amount, month, year, $1, $2 FROM payroll WHERE id = $3`,
		transactionID, paidAt, requestID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment already made for this month/year", domain.ErrConflict)
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// PaymentExists reports whether the ledger already holds a payment for the
// payroll period, independently of any request's paid flag.
func (r *PostgresPayrollRepository) PaymentExists(employeeID string, month, year int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE employee_id = $1 AND month = $2 AND year = $3)`
	if err := r.db.QueryRow(query, employeeID, month, year).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payment: %w", err)
	}
	return exists, nil
}

// ListPaymentsByEmployee returns one page of an employee's payments, oldest
// period first, plus the total count.
func (r *PostgresPayrollRepository) ListPaymentsByEmployee(employeeID string, offset, limit int) ([]*domain.PaymentRecord, int, error) {
	query := `
		SELECT id, employee_id, name, amount, month, year, transaction_id, payment_date
		FROM payments
		WHERE employee_id = $1
		ORDER BY year ASC, month ASC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.db.Query(query, employeeID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments, err := scanPayments(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM payments WHERE employee_id = $1`, employeeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	return payments, total, nil
}

// ListAllPaymentsByEmployee returns the full payment history, oldest first.
func (r *PostgresPayrollRepository) ListAllPaymentsByEmployee(employeeID string) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, employee_id, name, amount, month, year, transaction_id, payment_date
		FROM payments
		WHERE employee_id = $1
		ORDER BY year ASC, month ASC
	`

	rows, err := r.db.Query(query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// CountPendingRequests counts unpaid payroll requests.
func (r *PostgresPayrollRepository) CountPendingRequests() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM payroll WHERE paid = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payroll requests: %w", err)
	}
	return count, nil
}

func scanPayments(rows *sql.Rows) ([]*domain.PaymentRecord, error) {
	var payments []*domain.PaymentRecord
	for rows.Next() {
		p := &domain.PaymentRecord{}
		err := rows.Scan(
			&p.ID,
			&p.EmployeeID,
			&p.Name,
			&p.Amount,
			&p.Month,
			&p.Year,
			&p.TransactionID,
			&p.PaymentDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
