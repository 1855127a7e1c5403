package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/familynest/admin-backend/internal/database"
	"github.com/familynest/admin-backend/internal/query"
)

// SearchUsers lists app users with optional text and status filters.
// Ordering is created_at DESC so pagination is stable across pages.
func (s *Server) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	status := strings.TrimSpace(c.Query("status"))
	page := atoiDefault(c.Query("page"), 0)
	size := atoiDefault(c.Query("size"), 20)
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	b := query.NewBuilder()
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		b.And("(LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", like, like, like)
	}
	if status != "" {
		b.And("subscription_status = ?", status)
	}

	listSQL := fmt.Sprintf(`
		SELECT id, email, first_name, last_name,
		       subscription_status, trial_end_date, subscription_end_date,
		       platform, monthly_price, created_at, updated_at
		FROM app_user
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, b.Clause(), b.Next(), b.Next()+1)

	users := []database.AppUser{}
	args := append(b.Args(), size, page*size)
	if err := s.DB.SelectContext(c.Request.Context(), &users, listSQL, args...); err != nil {
		log.Printf("user search error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "message": "Failed to search users"})
		return
	}

	// Count reuses the same predicate and parameter list, minus limit/offset.
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM app_user WHERE %s`, b.Clause())
	var total int
	if err := s.DB.GetContext(c.Request.Context(), &total, countSQL, b.Args()...); err != nil {
		log.Printf("user count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "message": "Failed to search users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"pagination": Pagination{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: (total + size - 1) / size,
		},
		"filters": gin.H{"query": q, "status": status},
	})
}

// GetUserByID returns one user with derived family and message counts.
func (s *Server) GetUserByID(c *gin.Context) {
	id := c.Param("id")

	var row struct {
		database.AppUser
		FamilyCount  int `db:"family_count" json:"family_count"`
		MessageCount int `db:"message_count" json:"message_count"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row, `
		SELECT id, username, email, first_name, last_name,
		       subscription_status, trial_end_date, subscription_end_date,
		       platform, platform_transaction_id, monthly_price,
		       created_at, updated_at,
		       (SELECT COUNT(*) FROM user_family_membership WHERE user_id = $1) AS family_count,
		       (SELECT COUNT(*) FROM message WHERE user_id = $1) AS message_count
		FROM app_user
		WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": fmt.Sprintf("User with ID %s not found", id),
			})
			return
		}
		log.Printf("get user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user", "message": "Failed to retrieve user details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": row})
}

// UpdateUserSubscription overrides a user's subscription status, platform,
// and monthly price.
func (s *Server) UpdateUserSubscription(c *gin.Context) {
	id := c.Param("id")
	admin, _ := adminFrom(c)

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Subscription status is required",
		})
		return
	}

	var row struct {
		ID                 int64    `db:"id" json:"id"`
		Email              string   `db:"email" json:"email"`
		SubscriptionStatus string   `db:"subscription_status" json:"subscription_status"`
		Platform           *string  `db:"platform" json:"platform"`
		MonthlyPrice       *float64 `db:"monthly_price" json:"monthly_price"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row, `
		UPDATE app_user
		SET subscription_status = $1,
		    platform = $2,
		    monthly_price = $3,
		    updated_at = NOW()
		WHERE id = $4
		RETURNING id, email, subscription_status, platform, monthly_price`,
		req.Status, req.Platform, req.MonthlyPrice, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": fmt.Sprintf("User with ID %s not found", id),
			})
			return
		}
		log.Printf("update subscription error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed", "message": "Failed to update subscription"})
		return
	}

	RecordAdminAction("update_subscription")
	log.Printf("admin %s updated subscription for user %s: %s", admin.Email, id, req.Status)
	c.JSON(http.StatusOK, gin.H{
		"message": "Subscription updated successfully",
		"user":    row,
	})
}

// ExtendUserTrial pushes a user's trial end out by the given number of days.
// A null trial_end_date extends from now; an existing one extends from its
// current value.
func (s *Server) ExtendUserTrial(c *gin.Context) {
	id := c.Param("id")
	admin, _ := adminFrom(c)

	var req ExtendTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Days must be a positive number",
		})
		return
	}

	var row struct {
		ID           int64      `db:"id" json:"id"`
		Email        string     `db:"email" json:"email"`
		TrialEndDate *time.Time `db:"trial_end_date" json:"trial_end_date"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row, `
		UPDATE app_user
		SET trial_end_date = COALESCE(trial_end_date, NOW()) + make_interval(days => $1),
		    updated_at = NOW()
		WHERE id = $2
		RETURNING id, email, trial_end_date`, req.Days, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": fmt.Sprintf("User with ID %s not found", id),
			})
			return
		}
		log.Printf("extend trial error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Extension failed", "message": "Failed to extend trial"})
		return
	}

	RecordAdminAction("extend_trial")
	log.Printf("admin %s extended trial for user %s by %d days", admin.Email, id, req.Days)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Trial extended by %d days", req.Days),
		"user":    row,
	})
}

// GetUserActivity returns the user's recent activity feed. The feed is
// synthesized until the main application exposes its activity tables.
func (s *Server) GetUserActivity(c *gin.Context) {
	limit := atoiDefault(c.Query("limit"), 50)
	if limit < 0 {
		limit = 0
	}

	now := time.Now()
	activities := []gin.H{
		{
			"id":          1,
			"action":      "login",
			"description": "User logged in",
			"ip_address":  "192.168.1.100",
			"user_agent":  "FamilyNest iOS App 1.0",
			"created_at":  now.Add(-30 * time.Minute).Format(time.RFC3339),
		},
		{
			"id":          2,
			"action":      "photo_upload",
			"description": "Uploaded a family photo",
			"ip_address":  "192.168.1.100",
			"user_agent":  "FamilyNest iOS App 1.0",
			"created_at":  now.Add(-2 * time.Hour).Format(time.RFC3339),
		},
		{
			"id":          3,
			"action":      "message_sent",
			"description": "Sent a message to family group",
			"ip_address":  "192.168.1.100",
			"user_agent":  "FamilyNest iOS App 1.0",
			"created_at":  now.Add(-5 * time.Hour).Format(time.RFC3339),
		},
	}
	total := len(activities)
	if limit < len(activities) {
		activities = activities[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "total": total})
}

// DeleteUser removes a user. By default the account is soft-cancelled; with
// permanent=true the row is hard-deleted.
func (s *Server) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	admin, _ := adminFrom(c)

	var req DeleteUserRequest
	_ = c.ShouldBindJSON(&req) // body is optional; default is soft delete

	if req.Permanent {
		var row struct {
			ID    int64  `db:"id" json:"id"`
			Email string `db:"email" json:"email"`
		}
		err := s.DB.GetContext(c.Request.Context(), &row,
			`DELETE FROM app_user WHERE id = $1 RETURNING id, email`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":   "User not found",
					"message": fmt.Sprintf("User with ID %s not found", id),
				})
				return
			}
			log.Printf("delete user error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed", "message": "Failed to delete user"})
			return
		}
		RecordAdminAction("delete_user_permanent")
		log.Printf("admin %s permanently deleted user %s: %s", admin.Email, id, row.Email)
		c.JSON(http.StatusOK, gin.H{"message": "User permanently deleted", "user": row})
		return
	}

	var row struct {
		ID                 int64  `db:"id" json:"id"`
		Email              string `db:"email" json:"email"`
		SubscriptionStatus string `db:"subscription_status" json:"subscription_status"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row, `
		UPDATE app_user
		SET subscription_status = 'cancelled',
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, subscription_status`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": fmt.Sprintf("User with ID %s not found", id),
			})
			return
		}
		log.Printf("deactivate user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed", "message": "Failed to delete user"})
		return
	}
	RecordAdminAction("deactivate_user")
	log.Printf("admin %s deactivated user %s: %s", admin.Email, id, row.Email)
	c.JSON(http.StatusOK, gin.H{"message": "User account deactivated", "user": row})
}

// GetUserStats returns aggregate counts and current monthly revenue.
func (s *Server) GetUserStats(c *gin.Context) {
	var stats struct {
		TotalUsers     int     `db:"total_users" json:"total_users"`
		TrialUsers     int     `db:"trial_users" json:"trial_users"`
		ActiveUsers    int     `db:"active_users" json:"active_users"`
		ExpiredUsers   int     `db:"expired_users" json:"expired_users"`
		CancelledUsers int     `db:"cancelled_users" json:"cancelled_users"`
		NewUsers7d     int     `db:"new_users_7d" json:"new_users_7d"`
		NewUsers30d    int     `db:"new_users_30d" json:"new_users_30d"`
		MonthlyRevenue float64 `db:"monthly_revenue" json:"monthly_revenue"`
	}
	err := s.DB.GetContext(c.Request.Context(), &stats, `
		SELECT
		    COUNT(*) AS total_users,
		    COUNT(CASE WHEN subscription_status = 'trial' THEN 1 END) AS trial_users,
		    COUNT(CASE WHEN subscription_status = 'active' THEN 1 END) AS active_users,
		    COUNT(CASE WHEN subscription_status = 'expired' THEN 1 END) AS expired_users,
		    COUNT(CASE WHEN subscription_status = 'cancelled' THEN 1 END) AS cancelled_users,
		    COUNT(CASE WHEN created_at >= CURRENT_DATE - INTERVAL '7 days' THEN 1 END) AS new_users_7d,
		    COUNT(CASE WHEN created_at >= CURRENT_DATE - INTERVAL '30 days' THEN 1 END) AS new_users_30d,
		    COALESCE(SUM(CASE WHEN subscription_status = 'active' THEN monthly_price END), 0) AS monthly_revenue
		FROM app_user`)
	if err != nil {
		log.Printf("user stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stats failed", "message": "Failed to get user statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
