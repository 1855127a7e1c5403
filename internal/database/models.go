package database

import "time"

// Admin roles. SUPER_ADMIN additionally unlocks settings writes.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
)

// AdminUser represents the 'admin_users' table. Admins are never hard-deleted;
// deactivation flips is_active and locks the account out on the next request.
type AdminUser struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login"`
}

// AppUser represents the 'app_user' table owned by the main application.
// The admin API only reads and updates these rows, never creates them.
type AppUser struct {
	ID                    int64      `db:"id" json:"id"`
	Username              *string    `db:"username" json:"username,omitempty"`
	Email                 string     `db:"email" json:"email"`
	FirstName             *string    `db:"first_name" json:"first_name"`
	LastName              *string    `db:"last_name" json:"last_name"`
	SubscriptionStatus    string     `db:"subscription_status" json:"subscription_status"`
	TrialEndDate          *time.Time `db:"trial_end_date" json:"trial_end_date"`
	SubscriptionEndDate   *time.Time `db:"subscription_end_date" json:"subscription_end_date"`
	Platform              *string    `db:"platform" json:"platform"`
	PlatformTransactionID *string    `db:"platform_transaction_id" json:"platform_transaction_id,omitempty"`
	MonthlyPrice          *float64   `db:"monthly_price" json:"monthly_price"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// SystemSetting represents the 'system_settings' table.
type SystemSetting struct {
	ID           int64     `db:"id" json:"id"`
	SettingKey   string    `db:"setting_key" json:"setting_key"`
	SettingValue string    `db:"setting_value" json:"setting_value"`
	DataType     string    `db:"data_type" json:"data_type,omitempty"`
	Description  *string   `db:"description" json:"description"`
	Category     *string   `db:"category" json:"category,omitempty"`
	UpdatedBy    *int64    `db:"updated_by" json:"updated_by"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserNotification represents the 'user_notifications' table (in-app
// announcements shown to end users; these are rows, not a push system).
type UserNotification struct {
	ID               int64      `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Message          string     `db:"message" json:"message"`
	NotificationType string     `db:"notification_type" json:"notification_type"`
	TargetType       string     `db:"target_type" json:"target_type"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	ShowFrom         time.Time  `db:"show_from" json:"show_from"`
	ShowUntil        *time.Time `db:"show_until" json:"show_until"`
	Priority         int        `db:"priority" json:"priority"`
	CreatedBy        *int64     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at,omitempty"`
}
