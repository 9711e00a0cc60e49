package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security/audit"
	"github.com/yourorg/staffdesk/internal/service"
)

type payrollFixture struct {
	handler *PayrollHandler
	users   *memUserRepo
	payroll *memPayrollRepo
}

func newPayrollFixture() *payrollFixture {
	users := newMemUserRepo()
	payroll := newMemPayrollRepo()
	payrollSvc := service.NewPayrollService(users, payroll, 5, nil)
	staffSvc := service.NewStaffService(users, payroll, nil, 0, nil)
	h := NewPayrollHandler(payrollSvc, staffSvc, audit.NewLogger(slog.Default()), nil)
	return &payrollFixture{handler: h, users: users, payroll: payroll}
}

func (f *payrollFixture) seedEmployee(t *testing.T, email string, verified bool) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: "Worker", Role: "Employee", IsVerified: verified, Salary: 1000}
	if err := f.users.Create(u); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return u
}

func TestPayrollRequestEndpoint(t *testing.T) {
	f := newPayrollFixture()
	emp := f.seedEmployee(t, "worker@example.com", true)

	body := `{"employeeId":"` + emp.ID + `","month":3,"year":2025,"amount":1200}`
	req := authedRequest(http.MethodPost, "/payroll", body, "hr-1", "HR")
	rec := httptest.NewRecorder()
	f.handler.Request(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Payroll request created.") {
		t.Fatalf("missing message: %s", rec.Body.String())
	}

	// Same period again is a conflict.
	req = authedRequest(http.MethodPost, "/payroll", body, "hr-1", "HR")
	rec = httptest.NewRecorder()
	f.handler.Request(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPayrollRequestEndpointUnverified(t *testing.T) {
	f := newPayrollFixture()
	emp := f.seedEmployee(t, "new@example.com", false)

	body := `{"employeeId":"` + emp.ID + `","month":3,"year":2025,"amount":1200}`
	req := authedRequest(http.MethodPost, "/payroll", body, "hr-1", "HR")
	rec := httptest.NewRecorder()
	f.handler.Request(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unverified employee, got %d", rec.Code)
	}
}

func TestPayrollPayEndpoint(t *testing.T) {
	f := newPayrollFixture()
	emp := f.seedEmployee(t, "worker@example.com", true)

	pr := &domain.PayrollRequest{EmployeeID: emp.ID, EmployeeName: emp.Name, Amount: 1200, Month: 3, Year: 2025}
	if err := f.payroll.CreateRequest(pr); err != nil {
		t.Fatalf("seed request failed: %v", err)
	}

	pay := func() *httptest.ResponseRecorder {
		req := authedRequest(http.MethodPatch, "/payroll/"+pr.ID+"/pay", "", "admin-1", "Admin")
		req.SetPathValue("id", pr.ID)
		rec := httptest.NewRecorder()
		f.handler.Pay(rec, req)
		return rec
	}

	rec := pay()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message       string `json:"message"`
		TransactionID string `json:"transactionId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Message != "Payment successful." || !strings.HasPrefix(resp.TransactionID, "TXN") {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Second pay of the same request is a conflict.
	if rec := pay(); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double pay, got %d", rec.Code)
	}
}

func TestPayrollPayEndpointUnknownRequest(t *testing.T) {
	f := newPayrollFixture()

	req := authedRequest(http.MethodPatch, "/payroll/missing/pay", "", "admin-1", "Admin")
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	f.handler.Pay(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListOwnPaymentsEndpoint(t *testing.T) {
	f := newPayrollFixture()
	emp := f.seedEmployee(t, "worker@example.com", true)

	for month := 1; month <= 7; month++ {
		pr := &domain.PayrollRequest{EmployeeID: emp.ID, EmployeeName: emp.Name, Amount: 1000, Month: month, Year: 2025}
		if err := f.payroll.CreateRequest(pr); err != nil {
			t.Fatalf("seed request failed: %v", err)
		}
		if err := f.payroll.Pay(pr.ID, "TXN"+pr.ID, pr.RequestedAt); err != nil {
			t.Fatalf("seed payment failed: %v", err)
		}
	}

	req := authedRequest(http.MethodGet, "/payments?page=2&limit=5", "", emp.ID, "Employee")
	rec := httptest.NewRecorder()
	f.handler.ListOwnPayments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Payments []json.RawMessage `json:"payments"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
		Pages    int               `json:"pages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Payments) != 2 || resp.Total != 7 || resp.Page != 2 || resp.Pages != 2 {
		t.Fatalf("unexpected page: %+v", resp)
	}
}

func TestToggleVerifiedEndpoint(t *testing.T) {
	f := newPayrollFixture()
	emp := f.seedEmployee(t, "worker@example.com", false)

	toggle := func() *httptest.ResponseRecorder {
		req := authedRequest(http.MethodPatch, "/users/"+emp.ID+"/verify", "", "hr-1", "HR")
		req.SetPathValue("id", emp.ID)
		rec := httptest.NewRecorder()
		f.handler.ToggleVerified(rec, req)
		return rec
	}

	rec := toggle()
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"isVerified":true`) {
		t.Fatalf("expected verified true, got %d %s", rec.Code, rec.Body.String())
	}
	rec = toggle()
	if !strings.Contains(rec.Body.String(), `"isVerified":false`) {
		t.Fatalf("expected verified false, got %s", rec.Body.String())
	}
}
