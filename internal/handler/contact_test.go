package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/staffdesk/internal/service"
)

func newContactHandlerFixture() (*ContactHandler, *memContactRepo) {
	repo := &memContactRepo{}
	return NewContactHandler(service.NewContactService(repo, nil), nil), repo
}

func TestContactSubmitEndpoint(t *testing.T) {
	h, repo := newContactHandlerFixture()

	rec := postJSON(t, h.Submit, "/contact", `{"email":"visitor@example.com","message":"hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.messages) != 1 || repo.messages[0].Email != "visitor@example.com" {
		t.Fatalf("message not stored: %+v", repo.messages)
	}
}

func TestContactSubmitEndpointValidation(t *testing.T) {
	h, _ := newContactHandlerFixture()

	rec := postJSON(t, h.Submit, "/contact", `{"email":"","message":"hello"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = postJSON(t, h.Submit, "/contact", `{"email":"v@example.com","message":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestContactSubmitEndpointDisabled(t *testing.T) {
	h, _ := newContactHandlerFixture()

	t.Setenv("FLAG_CONTACT_INTAKE_DISABLED", "true")
	rec := postJSON(t, h.Submit, "/contact", `{"email":"visitor@example.com","message":"hello"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when intake disabled, got %d", rec.Code)
	}
}

func TestContactListEndpoint(t *testing.T) {
	h, _ := newContactHandlerFixture()

	postJSON(t, h.Submit, "/contact", `{"email":"visitor@example.com","message":"hello"}`)

	req := authedRequest(http.MethodGet, "/contact", "", "admin-1", "Admin")
	rec := httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "visitor@example.com") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
