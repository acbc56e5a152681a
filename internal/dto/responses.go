package dto

import (
	"time"

	"github.com/rigzlion8/watermaji/internal/domain"
)

// Response is the uniform envelope for every JSON response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// UserSummary represents user information returned from auth endpoints
type UserSummary struct {
	ID            string          `json:"id"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Email         string          `json:"email"`
	Phone         *string         `json:"phone,omitempty"`
	Role          domain.UserRole `json:"role"`
	Avatar        *string         `json:"avatar,omitempty"`
	EmailVerified bool            `json:"emailVerified"`
}

// UserProfile represents the full profile returned by GET /profile
type UserProfile struct {
	ID            string                 `json:"id"`
	FirstName     string                 `json:"firstName"`
	LastName      string                 `json:"lastName"`
	Email         string                 `json:"email"`
	Phone         *string                `json:"phone,omitempty"`
	Role          domain.UserRole        `json:"role"`
	Avatar        *string                `json:"avatar,omitempty"`
	EmailVerified bool                   `json:"emailVerified"`
	Preferences   map[string]interface{} `json:"preferences,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// LoginData is the payload of a successful login response
type LoginData struct {
	User        UserSummary `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// NewUserSummary builds a UserSummary from a domain user
func NewUserSummary(u *domain.User) UserSummary {
	return UserSummary{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Avatar:        u.Avatar,
		EmailVerified: u.IsEmailVerified,
	}
}

// NewUserProfile builds a UserProfile from a domain user
func NewUserProfile(u *domain.User) UserProfile {
	return UserProfile{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Avatar:        u.Avatar,
		EmailVerified: u.IsEmailVerified,
		Preferences:   u.Preferences,
		CreatedAt:     u.CreatedAt,
	}
}
