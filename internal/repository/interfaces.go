package repository

import (
	"context"

	"github.com/rigzlion8/watermaji/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmailOrGoogleID performs the combined OAuth lookup; the first
	// matching row wins when email and google id point at different records.
	GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update *domain.ProfileUpdate) (*domain.User, error)
	UpdateGoogleProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	// UpdateRefreshToken overwrites the single stored refresh token for the
	// user; concurrent logins race on this column and the last writer wins.
	UpdateRefreshToken(ctx context.Context, userID string, refreshToken *string) error
}
