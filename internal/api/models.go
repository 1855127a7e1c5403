package api

import "time"

// LoginRequest defines the expected JSON body for admin login. Only
// presence is validated; a malformed email fails credential lookup and
// gets the same generic 401 as any other bad credential.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminResponse is the admin shape returned by auth endpoints
// (never includes the password hash).
type AdminResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	LastLogin *time.Time `json:"lastLogin"`
}

// UpdateSubscriptionRequest carries a subscription override for an app user.
type UpdateSubscriptionRequest struct {
	Status       string   `json:"status" binding:"required"`
	Platform     *string  `json:"platform"`
	MonthlyPrice *float64 `json:"monthlyPrice"`
}

// ExtendTrialRequest carries the number of days to add to a user's trial.
type ExtendTrialRequest struct {
	Days int `json:"days" binding:"required"`
}

// DeleteUserRequest selects soft (cancel) versus permanent deletion.
type DeleteUserRequest struct {
	Permanent bool `json:"permanent"`
}

// CreateNotificationRequest defines the JSON body for creating an
// announcement. Optional fields fall back to the documented defaults.
type CreateNotificationRequest struct {
	Title      string     `json:"title" binding:"required"`
	Message    string     `json:"message" binding:"required"`
	Type       string     `json:"type"`
	TargetType string     `json:"targetType"`
	Priority   *int       `json:"priority"`
	ShowFrom   *time.Time `json:"showFrom"`
	ShowUntil  *time.Time `json:"showUntil"`
}

// UpdateNotificationRequest carries the optionally-present fields of a
// notification update. Nil means "leave unchanged".
type UpdateNotificationRequest struct {
	Title     *string    `json:"title"`
	Message   *string    `json:"message"`
	IsActive  *bool      `json:"isActive"`
	ShowUntil *time.Time `json:"showUntil"`
}

// UpdateSettingRequest updates a setting's value and optionally its
// description.
type UpdateSettingRequest struct {
	Value       *string `json:"value" binding:"required"`
	Description *string `json:"description"`
}

// UpdatePriceRequest is the body of the subscription-price shortcut.
type UpdatePriceRequest struct {
	Price float64 `json:"price" binding:"required"`
}

// CreateSettingRequest defines the JSON body for creating a setting.
type CreateSettingRequest struct {
	SettingKey  string  `json:"settingKey" binding:"required"`
	Value       *string `json:"value" binding:"required"`
	Description *string `json:"description"`
	DataType    string  `json:"dataType"`
}

// Pagination is the metadata block attached to every list response.
type Pagination struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
