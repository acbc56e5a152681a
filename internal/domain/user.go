package domain

import "time"

// UserRole defines the role of a user in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleRider    UserRole = "rider"
	RoleAdmin    UserRole = "admin"
)

// AuthProvider defines the identity source for a user account
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User represents a user in the system
type User struct {
	ID              string                 `json:"id" db:"id"`
	FirstName       string                 `json:"first_name" db:"first_name"`
	LastName        string                 `json:"last_name" db:"last_name"`
	Email           string                 `json:"email" db:"email"`
	Phone           *string                `json:"phone" db:"phone"`
	PasswordHash    *string                `json:"-" db:"password_hash"`
	Role            UserRole               `json:"role" db:"role"`
	AuthProvider    AuthProvider           `json:"auth_provider" db:"auth_provider"`
	GoogleID        *string                `json:"-" db:"google_id"`
	Avatar          *string                `json:"avatar" db:"avatar"`
	IsEmailVerified bool                   `json:"is_email_verified" db:"is_email_verified"`
	IsActive        bool                   `json:"is_active" db:"is_active"`
	LastLoginAt     *time.Time             `json:"last_login_at" db:"last_login_at"`
	Preferences     map[string]interface{} `json:"preferences" db:"preferences"`
	RefreshToken    *string                `json:"-" db:"refresh_token"`
	CreatedAt       time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name of the user
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// GoogleProfile represents the identity data returned by Google for a user
type GoogleProfile struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	AvatarURL  string
}

// ProfileUpdate carries the allow-listed profile fields a user may change.
// Nil fields are left untouched. Anything outside this struct (role, email,
// provider, password hash) can never be reached through a profile update.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Preferences map[string]interface{}
}
