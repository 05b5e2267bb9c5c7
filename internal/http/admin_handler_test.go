package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"authgate/internal/domain"
)

type adminFixture struct {
	*serverFixture
	superToken string
	adminToken string
	userToken  string
	userID     string
	superID    string
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := newServerFixture(t, nil)
	return &adminFixture{
		serverFixture: f,
		superToken:    f.seedUser(t, domain.User{ID: "s1", Email: "s@example.com", Role: domain.RoleSuperAdmin, IsActive: true}),
		adminToken:    f.seedUser(t, domain.User{ID: "a1", Email: "a@example.com", Role: domain.RoleAdmin, IsActive: true}),
		userToken:     f.seedUser(t, domain.User{ID: "u1", Email: "u@example.com", Role: domain.RoleUser, IsActive: true}),
		userID:        "u1",
		superID:       "s1",
	}
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func TestListUsers_RequiresSuperAdmin(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodGet, "/auth/users", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/auth/users", nil, bearer(f.adminToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/auth/users", nil, bearer(f.superToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for super_admin, got %d", rec.Code)
	}
	body := decodeJSON(t, rec)
	users, _ := body["users"].([]any)
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
}

func TestUpdateRole(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPut, "/auth/users/"+f.userID+"/role", gin.H{"role": "admin"}, bearer(f.superToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	user, _ := body["user"].(map[string]any)
	if user == nil || user["role"] != "admin" {
		t.Fatalf("expected role admin, got %+v", body)
	}
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPut, "/auth/users/"+f.userID+"/role", gin.H{"role": "owner"}, bearer(f.superToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := errBody(t, rec); got != "invalid role" {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestUpdateRole_UnknownUserIs404(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPut, "/auth/users/missing/role", gin.H{"role": "admin"}, bearer(f.superToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateRole_ProtectsLastSuperAdmin(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPut, "/auth/users/"+f.superID+"/role", gin.H{"role": "admin"}, bearer(f.superToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := errBody(t, rec); got != "last super_admin" {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestUpdateRole_RequiresSuperAdmin(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPut, "/auth/users/"+f.userID+"/role", gin.H{"role": "admin"}, bearer(f.adminToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin, got %d", rec.Code)
	}
}

func TestDeactivateReactivate(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/users/"+f.userID+"/deactivate", nil, bearer(f.adminToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// El token del usuario desactivado deja de servir con 403.
	rec = f.do(t, http.MethodGet, "/auth/me", nil, bearer(f.userToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for deactivated user, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/auth/users/"+f.userID+"/reactivate", nil, bearer(f.adminToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/auth/me", nil, bearer(f.userToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after reactivation, got %d", rec.Code)
	}
}

func TestDeactivate_UnknownUserIs404(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/users/missing/deactivate", nil, bearer(f.adminToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
