package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/yourorg/staffdesk/internal/domain"
)

func newPayrollRepoWithMock(t *testing.T) (*PostgresPayrollRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresPayrollRepository(db, nil), mock
}

func TestCreateRequest(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payroll")).
		WithArgs("u-1", "Alice", 1200.0, 3, 2025, "hr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requested_at"}).AddRow("pr-1", time.Now()))

	req := &domain.PayrollRequest{
		EmployeeID:   "u-1",
		EmployeeName: "Alice",
		Amount:       1200,
		Month:        3,
		Year:         2025,
		RequestedBy:  "hr-1",
	}
	if err := repo.CreateRequest(req); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if req.ID != "pr-1" || req.RequestedAt.IsZero() {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestCreateRequestDuplicatePeriod(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payroll")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateRequest(&domain.PayrollRequest{EmployeeID: "u-1", Month: 3, Year: 2025})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetRequestByIDUnpaid(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)

	rows := sqlmock.NewRows([]string{
		"id", "employee_id", "employee_name", "amount", "month", "year",
		"requested_by", "requested_at", "payment_date", "paid", "transaction_id",
	}).AddRow("pr-1", "u-1", "Alice", 1200.0, 3, 2025, "hr-1", time.Now(), nil, false, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payroll")).
		WithArgs("pr-1").
		WillReturnRows(rows)

	req, err := repo.GetRequestByID("pr-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if req.Paid || req.PaymentDate != nil || req.TransactionID != nil {
		t.Fatalf("unpaid request should have nil payment fields: %+v", req)
	}
}

func TestGetRequestByIDNotFound(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payroll")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetRequestByID("missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPayCommitsBothWrites(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)
	paidAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payroll SET paid = true")).
		WithArgs(paidAt, "TXN1", "pr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs("TXN1", paidAt, "pr-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Pay("pr-1", "TXN1", paidAt); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPayAlreadyPaidRollsBack(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)
	paidAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payroll SET paid = true")).
		WithArgs(paidAt, "TXN1", "pr-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Pay("pr-1", "TXN1", paidAt)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPayLedgerConflictRollsBack(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)
	paidAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payroll SET paid = true")).
		WithArgs(paidAt, "TXN1", "pr-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Pay("pr-2", "TXN1", paidAt)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ledger conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListPaymentsByEmployee(t *testing.T) {
	repo, mock := newPayrollRepoWithMock(t)

	rows := sqlmock.NewRows([]string{
		"id", "employee_id", "name", "amount", "month", "year", "transaction_id", "payment_date",
	}).
		AddRow("pay-1", "u-1", "Alice", 1000.0, 1, 2025, "TXN1", time.Now()).
		AddRow("pay-2", "u-1", "Alice", 1000.0, 2, 2025, "TXN2", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments")).
		WithArgs("u-1", 0, 5).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	payments, total, err := repo.ListPaymentsByEmployee("u-1", 0, 5)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(payments) != 2 || total != 7 {
		t.Fatalf("got %d payments total=%d", len(payments), total)
	}
}
