package handler

import (
	"fmt"
	"sort"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
)

// In-memory repositories backing the handler tests.

type memUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	if _, exists := m.byEmail[u.Email]; exists {
		return fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	m.nextID++
	u.ID = fmt.Sprintf("u-%d", m.nextID)
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
}

func (m *memUserRepo) SetVerified(id string, verified bool) error {
	u, err := m.GetByID(id)
	if err != nil {
		return err
	}
	u.IsVerified = verified
	return nil
}

func (m *memUserRepo) SetFired(id string) error {
	u, err := m.GetByID(id)
	if err != nil {
		return err
	}
	u.IsFired = true
	return nil
}

func (m *memUserRepo) SetRole(id, role string) error {
	u, err := m.GetByID(id)
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

func (m *memUserRepo) SetSalary(id string, salary float64) error {
	u, err := m.GetByID(id)
	if err != nil {
		return err
	}
	u.Salary = salary
	return nil
}

func (m *memUserRepo) ListByRole(role string) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) ListVerifiedActive() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.IsVerified && !u.IsFired {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) CountActive() (int, error) {
	count := 0
	for _, u := range m.byID {
		if !u.IsFired {
			count++
		}
	}
	return count, nil
}

type memEntryRepo struct {
	byID   map[string]*domain.WorkEntry
	nextID int
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{byID: map[string]*domain.WorkEntry{}}
}

func (m *memEntryRepo) Create(e *domain.WorkEntry) error {
	m.nextID++
	e.ID = fmt.Sprintf("ws-%d", m.nextID)
	e.CreatedAt = time.Now()
	m.byID[e.ID] = e
	return nil
}

func (m *memEntryRepo) GetByID(id string) (*domain.WorkEntry, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: worksheet not found", domain.ErrNotFound)
}

func (m *memEntryRepo) List(filter domain.WorkEntryFilter) ([]*domain.WorkEntry, error) {
	out := []*domain.WorkEntry{}
	for _, e := range m.byID {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Month != 0 && int(e.Date.Month()) != filter.Month {
			continue
		}
		if filter.Year != 0 && e.Date.Year() != filter.Year {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memEntryRepo) Update(id string, upd domain.WorkEntryUpdate) error {
	e, err := m.GetByID(id)
	if err != nil {
		return err
	}
	if upd.Task != nil {
		e.Task = *upd.Task
	}
	if upd.HoursWorked != nil {
		e.HoursWorked = *upd.HoursWorked
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	return nil
}

func (m *memEntryRepo) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: worksheet not found", domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

type memPayrollRepo struct {
	requests map[string]*domain.PayrollRequest
	payments []*domain.PaymentRecord
	nextID   int
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{requests: map[string]*domain.PayrollRequest{}}
}

func (m *memPayrollRepo) CreateRequest(req *domain.PayrollRequest) error {
	exists, _ := m.RequestExists(req.EmployeeID, req.Month, req.Year)
	if exists {
		return fmt.Errorf("%w: payroll request already exists for this month/year", domain.ErrConflict)
	}
	m.nextID++
	req.ID = fmt.Sprintf("pr-%d", m.nextID)
	req.RequestedAt = time.Now()
	m.requests[req.ID] = req
	return nil
}

func (m *memPayrollRepo) GetRequestByID(id string) (*domain.PayrollRequest, error) {
	if req, ok := m.requests[id]; ok {
		return req, nil
	}
	return nil, fmt.Errorf("%w: payroll request not found", domain.ErrNotFound)
}

func (m *memPayrollRepo) RequestExists(employeeID string, month, year int) (bool, error) {
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && req.Month == month && req.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPayrollRepo) ListRequests() ([]*domain.PayrollRequest, error) {
	out := []*domain.PayrollRequest{}
	for _, req := range m.requests {
		out = append(out, req)
	}
	return out, nil
}

func (m *memPayrollRepo) Pay(requestID, transactionID string, paidAt time.Time) error {
	req, ok := m.requests[requestID]
	if !ok || req.Paid {
		return fmt.Errorf("%w: already paid", domain.ErrConflict)
	}
	exists, _ := m.PaymentExists(req.EmployeeID, req.Month, req.Year)
	if exists {
		return fmt.Errorf("%w: payment already made for this month/year", domain.ErrConflict)
	}
	req.Paid = true
	req.PaymentDate = &paidAt
	req.TransactionID = &transactionID
	m.payments = append(m.payments, &domain.PaymentRecord{
		ID:            fmt.Sprintf("pay-%d", len(m.payments)+1),
		EmployeeID:    req.EmployeeID,
		Name:          req.EmployeeName,
		Amount:        req.Amount,
		Month:         req.Month,
		Year:          req.Year,
		TransactionID: transactionID,
		PaymentDate:   paidAt,
	})
	return nil
}

func (m *memPayrollRepo) PaymentExists(employeeID string, month, year int) (bool, error) {
	for _, p := range m.payments {
		if p.EmployeeID == employeeID && p.Month == month && p.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPayrollRepo) ListPaymentsByEmployee(employeeID string, offset, limit int) ([]*domain.PaymentRecord, int, error) {
	all, _ := m.ListAllPaymentsByEmployee(employeeID)
	total := len(all)
	if offset >= total {
		return []*domain.PaymentRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memPayrollRepo) ListAllPaymentsByEmployee(employeeID string) ([]*domain.PaymentRecord, error) {
	out := []*domain.PaymentRecord{}
	for _, p := range m.payments {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayrollRepo) CountPendingRequests() (int, error) {
	count := 0
	for _, req := range m.requests {
		if !req.Paid {
			count++
		}
	}
	return count, nil
}

type memContactRepo struct {
	messages []*domain.ContactMessage
}

func (m *memContactRepo) Create(msg *domain.ContactMessage) error {
	msg.ID = fmt.Sprintf("msg-%d", len(m.messages)+1)
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memContactRepo) List() ([]*domain.ContactMessage, error) {
	return m.messages, nil
}
