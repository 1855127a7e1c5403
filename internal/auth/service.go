// Package auth holds the admin credential store and the stateless session
// token service. Token validity is purely signature + expiry; the freshness
// recheck against admin_users happens in the HTTP middleware, which is what
// locks out a deactivated admin before their token expires.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"github.com/familynest/admin-backend/internal/database"
	"github.com/familynest/admin-backend/internal/utils"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so login responses cannot be used to enumerate admin accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken covers malformed, badly signed, and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of an admin session token.
type Claims struct {
	ID    int64
	Email string
	Role  string
}

// Service authenticates admins and issues/verifies their session tokens.
type Service struct {
	db     *sqlx.DB
	secret []byte
	expiry time.Duration
}

// New constructs a Service. The signing secret is process-wide; there is no
// per-admin key material.
func New(db *sqlx.DB, secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{db: db, secret: []byte(secret), expiry: expiry}
}

// Authenticate looks up an active admin by email and compares the password
// against the stored bcrypt hash. On success it touches last_login and
// returns the admin; on any credential failure it returns
// ErrInvalidCredentials without distinguishing the cause.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*database.AdminUser, error) {
	var admin database.AdminUser
	err := s.db.GetContext(ctx, &admin, `
		SELECT id, username, email, password_hash, role, is_active, created_at, last_login
		FROM admin_users
		WHERE email = $1 AND is_active = true`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if _, err := s.db.ExecContext(ctx, `UPDATE admin_users SET last_login = NOW() WHERE id = $1`, admin.ID); err != nil {
		return nil, fmt.Errorf("touch last_login: %w", err)
	}
	admin.LastLogin = &now
	return &admin, nil
}

// GetAdminByID fetches an admin that is still active. sql.ErrNoRows doubles
// as the "deactivated since the token was issued" signal.
func (s *Service) GetAdminByID(ctx context.Context, id int64) (*database.AdminUser, error) {
	var admin database.AdminUser
	err := s.db.GetContext(ctx, &admin, `
		SELECT id, username, email, password_hash, role, is_active, created_at, last_login
		FROM admin_users
		WHERE id = $1 AND is_active = true`, id)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GenerateToken issues a signed session token for the admin.
func (s *Service) GenerateToken(admin *database.AdminUser) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":    admin.ID,
		"email": admin.Email,
		"role":  admin.Role,
		"type":  "admin",
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks signature, structure, and expiry. It never consults the
// datastore.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := mc["type"].(string); typ != "admin" {
		return nil, ErrInvalidToken
	}
	idf, ok := mc["id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	return &Claims{ID: int64(idf), Email: email, Role: role}, nil
}

// CreateAdmin provisions a new admin account. The username is derived from
// the email local part, matching how the seed data was generated.
func (s *Service) CreateAdmin(ctx context.Context, email, password, role string) (*database.AdminUser, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	username := email
	if i := strings.Index(email, "@"); i > 0 {
		username = email[:i]
	}
	var admin database.AdminUser
	err = s.db.GetContext(ctx, &admin, `
		INSERT INTO admin_users (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, username, email, password_hash, role, is_active, created_at, last_login`,
		username, email, hash, role)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &admin, nil
}

// EnsureDefaultAdmin creates the bootstrap SUPER_ADMIN when the table is
// empty. It is idempotent and safe to run on every startup.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admin_users`); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		log.Printf("found %d existing admin user(s)", count)
		return nil
	}
	admin, err := s.CreateAdmin(ctx, "anthony@familynest.com", "admin123", database.RoleSuperAdmin)
	if err != nil {
		return err
	}
	log.Printf("no admin users found, created default admin %s (role %s) - change the password", admin.Email, admin.Role)
	return nil
}
