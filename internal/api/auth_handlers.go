package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/familynest/admin-backend/internal/auth"
)

// Login authenticates an admin and returns a session token.
func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Email and password are required",
		})
		return
	}

	admin, err := s.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			RecordLogin(false)
			// Same message for unknown email and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication failed",
				"message": "Invalid email or password",
			})
			return
		}
		log.Printf("login error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Server error",
			"message": "Login failed due to server error",
		})
		return
	}

	token, err := s.Auth.GenerateToken(admin)
	if err != nil {
		log.Printf("token generation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Server error",
			"message": "Login failed due to server error",
		})
		return
	}

	RecordLogin(true)
	log.Printf("admin %s logged in", admin.Email)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"admin": AdminResponse{
			ID:        admin.ID,
			Username:  admin.Username,
			Email:     admin.Email,
			Role:      admin.Role,
			LastLogin: admin.LastLogin,
		},
	})
}

// GetMe returns the current admin's profile.
func (s *Server) GetMe(c *gin.Context) {
	admin, ok := adminFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied", "message": "Authentication required"})
		return
	}
	created := admin.CreatedAt
	c.JSON(http.StatusOK, gin.H{
		"admin": AdminResponse{
			ID:        admin.ID,
			Username:  admin.Username,
			Email:     admin.Email,
			Role:      admin.Role,
			CreatedAt: &created,
			LastLogin: admin.LastLogin,
		},
	})
}

// VerifyToken confirms that the presented token resolves to a live admin.
func (s *Server) VerifyToken(c *gin.Context) {
	admin, ok := adminFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied", "message": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"admin": gin.H{
			"id":    admin.ID,
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}

// Logout acknowledges the client discarding its token. Tokens are stateless,
// so there is nothing to invalidate server-side.
func (s *Server) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
