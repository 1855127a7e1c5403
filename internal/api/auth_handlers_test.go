package api

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/familynest/admin-backend/internal/database"
	"github.com/familynest/admin-backend/internal/utils"
)

func loginRows(t *testing.T, password, role string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "last_login"}).
		AddRow(1, "anthony", "anthony@familynest.com", hash, role, true, time.Now(), nil)
}

func TestLoginBootstrappedSuperAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectQuery(`FROM admin_users\s+WHERE email = \$1 AND is_active = true`).
		WithArgs("anthony@familynest.com").
		WillReturnRows(loginRows(t, "admin123", database.RoleSuperAdmin))
	ts.mock.ExpectExec(regexp.QuoteMeta(`UPDATE admin_users SET last_login = NOW() WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "anthony@familynest.com",
		"password": "admin123",
	})
	mustStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)

	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("response carries no token")
	}
	claims, err := ts.auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Role != database.RoleSuperAdmin {
		t.Fatalf("token role = %q, want SUPER_ADMIN", claims.Role)
	}
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoginMissingFields(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "anthony@familynest.com"})
	mustStatus(t, w, http.StatusBadRequest)
	if err := ts.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("validation failure reached the database: %v", err)
	}
}

func TestLoginMalformedEmailGetsGeneric401(t *testing.T) {
	ts := newTestServer(t)
	// Not format-validated up front: the lookup simply finds no admin.
	ts.mock.ExpectQuery(`FROM admin_users`).
		WithArgs("not-an-email").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "last_login"}))

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "not-an-email",
		"password": "whatever",
	})
	mustStatus(t, w, http.StatusUnauthorized)
	if msg := decodeBody(t, w)["message"]; msg != "Invalid email or password" {
		t.Fatalf("message = %v", msg)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)

	ts.mock.ExpectQuery(`FROM admin_users`).
		WithArgs("nobody@familynest.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "last_login"}))
	wUnknown := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@familynest.com", "password": "whatever",
	})

	ts.mock.ExpectQuery(`FROM admin_users`).
		WithArgs("anthony@familynest.com").
		WillReturnRows(loginRows(t, "admin123", database.RoleSuperAdmin))
	wWrong := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "anthony@familynest.com", "password": "wrong-password",
	})

	mustStatus(t, wUnknown, http.StatusUnauthorized)
	mustStatus(t, wWrong, http.StatusUnauthorized)
	if wUnknown.Body.String() != wWrong.Body.String() {
		t.Fatalf("login failure bodies differ (enumeration leak):\n%s\n%s",
			wUnknown.Body.String(), wWrong.Body.String())
	}
}

func TestGetMeReturnsCurrentAdmin(t *testing.T) {
	ts := newTestServer(t)
	admin := superAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	w := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	mustStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	got, _ := body["admin"].(map[string]any)
	if got == nil || got["email"] != admin.Email || got["role"] != database.RoleSuperAdmin {
		t.Fatalf("admin payload = %v", body["admin"])
	}
}

func TestVerifyEndpoint(t *testing.T) {
	ts := newTestServer(t)
	admin := regularAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	w := ts.do(t, http.MethodPost, "/api/auth/verify", token, nil)
	mustStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if body["valid"] != true {
		t.Fatalf("valid = %v", body["valid"])
	}
}

func TestLogoutIsAdvisory(t *testing.T) {
	ts := newTestServer(t)
	admin := regularAdmin()
	token := ts.tokenFor(t, admin)
	ts.expectAdminLookup(t, admin)

	w := ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	mustStatus(t, w, http.StatusOK)

	// The token still verifies afterwards; revocation is client-side only.
	if _, err := ts.auth.VerifyToken(token); err != nil {
		t.Fatalf("token invalidated by logout: %v", err)
	}
}
