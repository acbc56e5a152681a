package service

import (
	"context"

	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error)
	HandleGoogleAuth(ctx context.Context, profile *domain.GoogleProfile) (*LoginResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// LoginResult contains the authenticated user and the issued token pair
type LoginResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
}
