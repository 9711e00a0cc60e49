package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/handler"
	"github.com/yourorg/staffdesk/internal/infrastructure/logger"
	"github.com/yourorg/staffdesk/internal/security"
	"github.com/yourorg/staffdesk/internal/security/auth"
	"github.com/yourorg/staffdesk/internal/security/middleware"
	"github.com/yourorg/staffdesk/internal/service"
)

// TestServerHelper runs the real routing and middleware chain against
// in-memory repositories, so end-to-end flows can be exercised without
// Postgres or Redis.
type TestServerHelper struct {
	Server *httptest.Server
	Users  *memUserRepo
}

func NewTestServer(t *testing.T) *TestServerHelper {
	log := logger.NewLogger("error")

	users := newMemUserRepo()
	entries := newMemEntryRepo()

	tokenManager := auth.NewTokenManager("integration-secret", "staffdesk")
	authz := security.NewAuthorizationService(log)

	authService := service.NewAuthService(users, tokenManager, time.Hour, log)
	worksheetService := service.NewWorksheetService(entries, authz, log)

	authHandler := handler.NewAuthHandler(authService, log)
	worksheetHandler := handler.NewWorksheetHandler(worksheetService, log)

	authenticated := middleware.Authenticate(tokenManager, log)
	protect := func(perm security.Permission, h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequirePermission(authz, perm)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.Handle("POST /work-sheets", protect(security.PermAddWorksheet, worksheetHandler.Add))
	mux.Handle("GET /work-sheets", protect(security.PermListWorksheets, worksheetHandler.List))
	mux.Handle("PATCH /work-sheets/{id}", protect(security.PermEditWorksheet, worksheetHandler.Update))
	mux.Handle("DELETE /work-sheets/{id}", protect(security.PermDeleteWorksheet, worksheetHandler.Delete))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &TestServerHelper{
		Server: httptest.NewServer(mux),
		Users:  users,
	}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// DoJSON sends a JSON request, optionally with a bearer token, and decodes the
// response body into out when out is non-nil.
func (h *TestServerHelper) DoJSON(t *testing.T, method, path, token string, body, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, h.URL()+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func AssertStatusCode(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s: expected status %d, got %d", resp.Request.URL.Path, want, resp.StatusCode)
	}
}

// In-memory repositories.

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
