package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the allow-listed profile fields. Unknown keys
// in the body are ignored by JSON decoding; fields listed here are the only
// ones ever applied, so a "role" or "email" in the payload is dropped.
type UpdateProfileRequest struct {
	FirstName   *string                `json:"firstName"`
	LastName    *string                `json:"lastName"`
	Phone       *string                `json:"phone"`
	Preferences map[string]interface{} `json:"preferences"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// SendNotificationRequest represents an admin broadcast request
type SendNotificationRequest struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}
