package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/familynest/admin-backend/internal/database"
)

const adminContextKey = "admin"

// RequireAuth verifies the Bearer token and re-fetches the admin record on
// every request. The freshness check is deliberate: tokens are stateless and
// cannot be revoked, so a deactivated admin is locked out here instead.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Access denied",
				"message": "No valid authorization header",
			})
			return
		}

		claims, err := s.Auth.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Access denied",
				"message": "Invalid token",
			})
			return
		}

		admin, err := s.Auth.GetAdminByID(c.Request.Context(), claims.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "Access denied",
					"message": "Admin user not found or inactive",
				})
				return
			}
			log.Printf("auth middleware error: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Authentication error",
				"message": "Internal server error",
			})
			return
		}

		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// RequireRole gates a route to the given admin roles. It must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Access denied",
				"message": "Authentication required",
			})
			return
		}
		for _, r := range roles {
			if admin.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "Access denied",
			"message": "Insufficient permissions",
		})
	}
}

// adminFrom returns the admin resolved by RequireAuth.
func adminFrom(c *gin.Context) (*database.AdminUser, bool) {
	v, ok := c.Get(adminContextKey)
	if !ok {
		return nil, false
	}
	admin, ok := v.(*database.AdminUser)
	return admin, ok
}

// RequestIDMiddleware ensures every request has an X-Request-ID. If absent, generate one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("requestID", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// Simple in-memory IP rate limiter (fixed window)
type clientWindow struct {
	count       int
	windowStart time.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
}

func (l *ipLimiter) allow(ip string) (bool, time.Duration) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	cw, ok := l.clients[ip]
	if !ok {
		l.clients[ip] = &clientWindow{count: 1, windowStart: now}
		return true, 0
	}
	if now.Sub(cw.windowStart) >= l.window {
		cw.count = 1
		cw.windowStart = now
		return true, 0
	}
	if cw.count < l.limit {
		cw.count++
		return true, 0
	}
	return false, l.window - now.Sub(cw.windowStart)
}

// RateLimitMiddleware limits login attempts per client IP. When Redis is
// configured the window is shared across instances; otherwise it falls back
// to the in-memory limiter.
func (s *Server) RateLimitMiddleware() gin.HandlerFunc {
	rpm := s.Cfg.LoginRPM
	if rpm <= 0 {
		rpm = 30
	}
	if s.Cfg.RedisAddr == "" {
		return inMemoryRateLimit(rpm)
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     s.Cfg.RedisAddr,
		Password: s.Cfg.RedisPassword,
	})
	fallback := inMemoryRateLimit(rpm)
	return func(c *gin.Context) {
		ip := clientIP(c)
		now := time.Now().UTC()
		key := fmt.Sprintf("rl:login:%s:%04d%02d%02d%02d%02d", ip, now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute())
		ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
		defer cancel()
		n, err := rc.Incr(ctx, key).Result()
		if err != nil {
			fallback(c)
			return
		}
		_ = rc.Expire(ctx, key, 61*time.Second).Err()
		if int(n) > rpm {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

func inMemoryRateLimit(rpm int) gin.HandlerFunc {
	limiter := newIPLimiter(rpm, time.Minute)
	return func(c *gin.Context) {
		ok, retryAfter := limiter.allow(clientIP(c))
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if net.ParseIP(ip) == nil {
		return "unknown"
	}
	return ip
}
