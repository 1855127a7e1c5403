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
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/familynest/admin-backend/internal/database"
	"github.com/familynest/admin-backend/internal/query"
)

// subscriptionPriceKey is the well-known setting behind the
// /settings/subscription-price shortcut.
const subscriptionPriceKey = "subscription.monthly.price"

// ListSettings returns all settings, optionally filtered by category,
// ordered by key for deterministic output.
func (s *Server) ListSettings(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))

	b := query.NewBuilder()
	if category != "" {
		b.And("category = ?", category)
	}

	listSQL := fmt.Sprintf(`
		SELECT id, setting_key, setting_value, description, updated_at, updated_by
		FROM system_settings
		WHERE %s
		ORDER BY setting_key`, b.Clause())

	settings := []database.SystemSetting{}
	if err := s.DB.SelectContext(c.Request.Context(), &settings, listSQL, b.Args()...); err != nil {
		log.Printf("list settings error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settings", "message": "Failed to retrieve system settings"})
		return
	}

	if category == "" {
		category = "all"
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings, "category": category})
}

// GetSetting returns a single setting by key.
func (s *Server) GetSetting(c *gin.Context) {
	key := c.Param("key")

	var setting database.SystemSetting
	err := s.DB.GetContext(c.Request.Context(), &setting, `
		SELECT id, setting_key, setting_value, description, updated_at, updated_by
		FROM system_settings
		WHERE setting_key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Setting not found",
				"message": fmt.Sprintf("Setting '%s' not found", key),
			})
			return
		}
		log.Printf("get setting error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get setting", "message": "Failed to retrieve setting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// UpdateSetting changes a setting's value (SUPER_ADMIN only). The
// description is only replaced when one is supplied.
func (s *Server) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	admin, _ := adminFrom(c)

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Setting value is required",
		})
		return
	}

	u := query.NewUpdate().
		Set("setting_value", *req.Value).
		SetExpr("description", "COALESCE(?, description)", req.Description).
		Set("updated_by", admin.ID)
	setClause, err := u.Clause()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "message": "No fields to update"})
		return
	}

	updateSQL := fmt.Sprintf(`
		UPDATE system_settings
		SET %s
		WHERE setting_key = $%d
		RETURNING id, setting_key, setting_value, description, updated_at`, setClause, u.Next())

	var row struct {
		ID           int64     `db:"id" json:"id"`
		SettingKey   string    `db:"setting_key" json:"setting_key"`
		SettingValue string    `db:"setting_value" json:"setting_value"`
		Description  *string   `db:"description" json:"description"`
		UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	}
	args := append(u.Args(), key)
	if err := s.DB.GetContext(c.Request.Context(), &row, updateSQL, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Setting not found",
				"message": fmt.Sprintf("Setting '%s' not found", key),
			})
			return
		}
		log.Printf("update setting error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed", "message": "Failed to update setting"})
		return
	}

	RecordAdminAction("update_setting")
	log.Printf("admin %s updated setting %q = %q", admin.Email, key, *req.Value)
	c.JSON(http.StatusOK, gin.H{
		"message": "Setting updated successfully",
		"setting": row,
	})
}

// UpdateSubscriptionPrice is the shortcut mutation for the monthly price
// (SUPER_ADMIN only).
func (s *Server) UpdateSubscriptionPrice(c *gin.Context) {
	admin, _ := adminFrom(c)

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Valid price is required",
		})
		return
	}

	var row struct {
		ID           int64     `db:"id" json:"id"`
		SettingKey   string    `db:"setting_key" json:"setting_key"`
		SettingValue string    `db:"setting_value" json:"setting_value"`
		UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row, `
		UPDATE system_settings
		SET setting_value = $1,
		    updated_at = NOW(),
		    updated_by = $2
		WHERE setting_key = $3
		RETURNING id, setting_key, setting_value, updated_at`,
		strconv.FormatFloat(req.Price, 'f', -1, 64), admin.ID, subscriptionPriceKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Setting not found",
				"message": "Subscription price setting not found",
			})
			return
		}
		log.Printf("update subscription price error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed", "message": "Failed to update subscription price"})
		return
	}

	RecordAdminAction("update_subscription_price")
	log.Printf("admin %s updated subscription price to $%g", admin.Email, req.Price)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Subscription price updated successfully",
		"newPrice": req.Price,
		"setting":  row,
	})
}

// CreateSetting inserts a new setting (SUPER_ADMIN only). A duplicate key
// surfaces as 409.
func (s *Server) CreateSetting(c *gin.Context) {
	admin, _ := adminFrom(c)

	var req CreateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": "Setting key and value are required",
		})
		return
	}
	if req.DataType == "" {
		req.DataType = "STRING"
	}

	var row struct {
		ID           int64     `db:"id" json:"id"`
		SettingKey   string    `db:"setting_key" json:"setting_key"`
		SettingValue string    `db:"setting_value" json:"setting_value"`
		Description  *string   `db:"description" json:"description"`
		UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	}
	err := s.DB.GetContext(c.Request.Context(), &row, `
		INSERT INTO system_settings (setting_key, setting_value, data_type, description, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, setting_key, setting_value, description, updated_at`,
		req.SettingKey, *req.Value, req.DataType, req.Description, admin.ID)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Setting already exists",
				"message": "A setting with this key already exists",
			})
			return
		}
		log.Printf("create setting error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Creation failed", "message": "Failed to create setting"})
		return
	}

	RecordAdminAction("create_setting")
	log.Printf("admin %s created setting %q = %q", admin.Email, req.SettingKey, *req.Value)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Setting created successfully",
		"setting": row,
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
