package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/familynest/admin-backend/internal/auth"
	"github.com/familynest/admin-backend/internal/config"
	"github.com/familynest/admin-backend/internal/database"
	"github.com/familynest/admin-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	auth   *auth.Service
	db     *sqlx.DB
	mock   sqlmock.Sqlmock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sdb := sqlx.NewDb(db, "sqlmock")
	cfg := config.Config{JWTSecret: "test_secret", JWTExpiry: time.Hour, CORSOrigin: "http://localhost:3000"}
	authSvc := auth.New(sdb, cfg.JWTSecret, cfg.JWTExpiry)
	srv := New(sdb, authSvc, cfg)
	return &testServer{router: Routes(srv), auth: authSvc, db: sdb, mock: mock}
}

func superAdmin() *database.AdminUser {
	now := time.Now()
	return &database.AdminUser{
		ID: 1, Username: "anthony", Email: "anthony@familynest.com",
		Role: database.RoleSuperAdmin, IsActive: true, CreatedAt: now,
	}
}

func regularAdmin() *database.AdminUser {
	now := time.Now()
	return &database.AdminUser{
		ID: 2, Username: "support", Email: "support@familynest.com",
		Role: database.RoleAdmin, IsActive: true, CreatedAt: now,
	}
}

// expectAdminLookup queues the middleware's freshness re-fetch for admin.
func (ts *testServer) expectAdminLookup(t *testing.T, admin *database.AdminUser) {
	t.Helper()
	hash, err := utils.HashPassword("admin123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "last_login"}).
		AddRow(admin.ID, admin.Username, admin.Email, hash, admin.Role, admin.IsActive, admin.CreatedAt, admin.LastLogin)
	ts.mock.ExpectQuery(`SELECT id, username, email, password_hash, role, is_active, created_at, last_login\s+FROM admin_users\s+WHERE id = \$1 AND is_active = true`).
		WithArgs(admin.ID).
		WillReturnRows(rows)
}

func (ts *testServer) tokenFor(t *testing.T, admin *database.AdminUser) string {
	t.Helper()
	tok, err := ts.auth.GenerateToken(admin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}
