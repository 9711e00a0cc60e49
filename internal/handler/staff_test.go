package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/security/audit"
	"github.com/yourorg/staffdesk/internal/service"
)

type staffFixture struct {
	handler *StaffHandler
	users   *memUserRepo
	payroll *memPayrollRepo
}

func newStaffFixture() *staffFixture {
	users := newMemUserRepo()
	payroll := newMemPayrollRepo()
	svc := service.NewStaffService(users, payroll, nil, 0, nil)
	h := NewStaffHandler(svc, audit.NewLogger(slog.Default()), nil)
	return &staffFixture{handler: h, users: users, payroll: payroll}
}

func (f *staffFixture) seedEmployee(t *testing.T, email string, verified bool) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: "Worker", Role: "Employee", IsVerified: verified, Salary: 1000, Designation: "Engineer"}
	if err := f.users.Create(u); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return u
}

func adminPatch(h http.HandlerFunc, path, id, body string) *httptest.ResponseRecorder {
	req := authedRequest(http.MethodPatch, path, body, "admin-1", "Admin")
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestFireEndpoint(t *testing.T) {
	f := newStaffFixture()
	emp := f.seedEmployee(t, "worker@example.com", true)

	rec := adminPatch(f.handler.Fire, "/users/"+emp.ID+"/fire", emp.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	u, _ := f.users.GetByID(emp.ID)
	if !u.IsFired {
		t.Fatalf("expected fired flag set")
	}

	// Second fire is a conflict, the flag is never cleared.
	rec = adminPatch(f.handler.Fire, "/users/"+emp.ID+"/fire", emp.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestMakeHREndpoint(t *testing.T) {
	f := newStaffFixture()
	emp := f.seedEmployee(t, "worker@example.com", true)

	rec := adminPatch(f.handler.MakeHR, "/users/"+emp.ID+"/make-hr", emp.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	u, _ := f.users.GetByID(emp.ID)
	if u.Role != "HR" {
		t.Fatalf("expected HR role, got %q", u.Role)
	}

	rec = adminPatch(f.handler.MakeHR, "/users/"+emp.ID+"/make-hr", emp.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat promote, got %d", rec.Code)
	}
}

func TestAdjustSalaryEndpoint(t *testing.T) {
	f := newStaffFixture()
	emp := f.seedEmployee(t, "worker@example.com", true) // salary 1000

	rec := adminPatch(f.handler.AdjustSalary, "/users/"+emp.ID+"/salary", emp.ID, `{"newSalary":1500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Decrease is rejected
	rec = adminPatch(f.handler.AdjustSalary, "/users/"+emp.ID+"/salary", emp.ID, `{"newSalary":1200}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on decrease, got %d", rec.Code)
	}

	// Missing body field is rejected before the service runs
	rec = adminPatch(f.handler.AdjustSalary, "/users/"+emp.ID+"/salary", emp.ID, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on missing salary, got %d", rec.Code)
	}

	u, _ := f.users.GetByID(emp.ID)
	if u.Salary != 1500 {
		t.Fatalf("expected salary 1500, got %v", u.Salary)
	}
}

func TestListEmployeesEndpoint(t *testing.T) {
	f := newStaffFixture()
	f.seedEmployee(t, "a@example.com", true)
	f.seedEmployee(t, "b@example.com", false)

	req := authedRequest(http.MethodGet, "/employee-list", "", "hr-1", "HR")
	rec := httptest.NewRecorder()
	f.handler.ListEmployees(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "a@example.com") || !strings.Contains(body, "b@example.com") {
		t.Fatalf("unexpected body: %s", body)
	}
	// The password hash never leaves the API.
	if strings.Contains(body, "password") {
		t.Fatalf("response leaks password material: %s", body)
	}
}

func TestDetailsEndpoint(t *testing.T) {
	f := newStaffFixture()
	emp := f.seedEmployee(t, "worker@example.com", true)

	pr := &domain.PayrollRequest{EmployeeID: emp.ID, EmployeeName: emp.Name, Amount: 500, Month: 1, Year: 2025}
	if err := f.payroll.CreateRequest(pr); err != nil {
		t.Fatalf("seed request failed: %v", err)
	}
	if err := f.payroll.Pay(pr.ID, "TXN1", pr.RequestedAt); err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}

	req := authedRequest(http.MethodGet, "/employee-details/"+emp.ID, "", "hr-1", "HR")
	req.SetPathValue("id", emp.ID)
	rec := httptest.NewRecorder()
	f.handler.Details(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Engineer") || !strings.Contains(body, "TXN1") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestDetailsEndpointNotFound(t *testing.T) {
	f := newStaffFixture()

	req := authedRequest(http.MethodGet, "/employee-details/missing", "", "hr-1", "HR")
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	f.handler.Details(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
