package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/familynest/admin-backend/internal/database"
	"github.com/familynest/admin-backend/internal/query"
)

// ListNotifications returns notifications ordered most-prominent-first:
// priority DESC, then created_at DESC.
func (s *Server) ListNotifications(c *gin.Context) {
	// Presence of the parameter decides whether to filter: a bare ?active=
	// means is_active = false, same as any value other than "true".
	active, hasActive := c.GetQuery("active")
	ntype := strings.TrimSpace(c.Query("type"))

	b := query.NewBuilder()
	if hasActive {
		b.And("is_active = ?", active == "true")
	}
	if ntype != "" {
		b.And("notification_type = ?", ntype)
	}

	listSQL := fmt.Sprintf(`
		SELECT id, title, message, notification_type, target_type,
		       is_active, show_from, show_until, priority, created_at, updated_at
		FROM user_notifications
		WHERE %s
		ORDER BY priority DESC, created_at DESC`, b.Clause())

	notifications := []database.UserNotification{}
	if err := s.DB.SelectContext(c.Request.Context(), &notifications, listSQL, b.Args()...); err != nil {
		log.Printf("list notifications error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications", "message": "Failed to retrieve notifications"})
		return
	}

	filterActive := active
	if filterActive == "" {
		filterActive = "all"
	}
	filterType := ntype
	if filterType == "" {
		filterType = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"filters":       gin.H{"active": filterActive, "type": filterType},
	})
}

// CreateNotification inserts a new announcement, active by default.
func (s *Server) CreateNotification(c *gin.Context) {
	admin, _ := adminFrom(c)

	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Title and message are required",
		})
		return
	}
	if req.Type == "" {
		req.Type = "ANNOUNCEMENT"
	}
	if req.TargetType == "" {
		req.TargetType = "ALL"
	}
	priority := 1
	if req.Priority != nil {
		priority = *req.Priority
	}
	showFrom := time.Now()
	if req.ShowFrom != nil {
		showFrom = *req.ShowFrom
	}

	var n database.UserNotification
	err := s.DB.GetContext(c.Request.Context(), &n, `
		INSERT INTO user_notifications
		    (title, message, notification_type, target_type, priority,
		     show_from, show_until, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)
		RETURNING id, title, message, notification_type, target_type,
		          is_active, show_from, show_until, priority, created_at, updated_at`,
		req.Title, req.Message, req.Type, req.TargetType, priority,
		showFrom, req.ShowUntil, admin.ID)
	if err != nil {
		log.Printf("create notification error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Creation failed", "message": "Failed to create notification"})
		return
	}

	RecordAdminAction("create_notification")
	log.Printf("admin %s created notification: %q", admin.Email, req.Title)
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Notification created successfully",
		"notification": n,
	})
}

// UpdateNotification applies only the fields present in the request body and
// rejects an empty update outright.
func (s *Server) UpdateNotification(c *gin.Context) {
	id := c.Param("id")
	admin, _ := adminFrom(c)

	var req UpdateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "message": "Invalid request body"})
		return
	}

	u := query.NewUpdate()
	if req.Title != nil {
		u.Set("title", *req.Title)
	}
	if req.Message != nil {
		u.Set("message", *req.Message)
	}
	if req.IsActive != nil {
		u.Set("is_active", *req.IsActive)
	}
	if req.ShowUntil != nil {
		u.Set("show_until", *req.ShowUntil)
	}

	setClause, err := u.Clause()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "No fields to update",
		})
		return
	}

	updateSQL := fmt.Sprintf(`
		UPDATE user_notifications
		SET %s
		WHERE id = $%d
		RETURNING id, title, message, is_active, show_until, updated_at`, setClause, u.Next())

	var row struct {
		ID        int64      `db:"id" json:"id"`
		Title     string     `db:"title" json:"title"`
		Message   string     `db:"message" json:"message"`
		IsActive  bool       `db:"is_active" json:"is_active"`
		ShowUntil *time.Time `db:"show_until" json:"show_until"`
		UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	}
	args := append(u.Args(), id)
	if err := s.DB.GetContext(c.Request.Context(), &row, updateSQL, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Notification not found",
				"message": fmt.Sprintf("Notification with ID %s not found", id),
			})
			return
		}
		log.Printf("update notification error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed", "message": "Failed to update notification"})
		return
	}

	RecordAdminAction("update_notification")
	log.Printf("admin %s updated notification %s", admin.Email, id)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Notification updated successfully",
		"notification": row,
	})
}

// DeleteNotification removes an announcement permanently.
func (s *Server) DeleteNotification(c *gin.Context) {
	id := c.Param("id")
	admin, _ := adminFrom(c)

	var row struct {
		ID    int64  `db:"id"`
		Title string `db:"title"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row,
		`DELETE FROM user_notifications WHERE id = $1 RETURNING id, title`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Notification not found",
				"message": fmt.Sprintf("Notification with ID %s not found", id),
			})
			return
		}
		log.Printf("delete notification error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed", "message": "Failed to delete notification"})
		return
	}

	RecordAdminAction("delete_notification")
	log.Printf("admin %s deleted notification %s: %q", admin.Email, id, row.Title)
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
