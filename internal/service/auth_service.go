package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/internal/dto"
	"github.com/rigzlion8/watermaji/internal/repository"
	"github.com/rigzlion8/watermaji/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	logger     *zap.Logger
	bcryptCost int

	registrations metric.Int64Counter
	logins        metric.Int64Counter
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
	bcryptCost int,
) AuthService {
	meter := otel.Meter("watermaji/auth")
	registrations, _ := meter.Int64Counter("auth_registrations_total")
	logins, _ := meter.Int64Counter("auth_logins_total")

	return &authService{
		userRepo:      userRepo,
		jwtManager:    jwtManager,
		logger:        logger,
		bcryptCost:    bcryptCost,
		registrations: registrations,
		logins:        logins,
	}
}

// Register registers a new user with local authentication
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	email := utils.SanitizeEmail(req.Email)

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("user with email %s already exists: %w", email, domain.ErrDuplicateEmail)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           email,
		PasswordHash:    &passwordHash,
		Role:            domain.RoleCustomer,
		AuthProvider:    domain.ProviderLocal,
		IsEmailVerified: false,
		IsActive:        true,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.registrations.Add(ctx, 1)

	return user, nil
}

// Login authenticates a user with email and password
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	// Password login is only valid for local accounts with a stored hash
	if user.AuthProvider != domain.ProviderLocal || user.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logins.Add(ctx, 1)

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// HandleGoogleAuth links a Google profile to a local user record, creating
// one on first login
func (s *authService) HandleGoogleAuth(ctx context.Context, profile *domain.GoogleProfile) (*LoginResult, error) {
	if profile.Email == "" {
		return nil, domain.ErrMissingEmail
	}

	email := utils.SanitizeEmail(profile.Email)

	user, err := s.userRepo.GetByEmailOrGoogleID(ctx, email, profile.ID)
	switch {
	case err == nil:
		user.GoogleID = &profile.ID
		user.FirstName = profile.GivenName
		user.LastName = profile.FamilyName
		if profile.AvatarURL != "" {
			user.Avatar = &profile.AvatarURL
		}
		user.IsEmailVerified = true

		if err := s.userRepo.UpdateGoogleProfile(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update google profile: %w", err)
		}

	case errors.Is(err, domain.ErrNotFound):
		user = &domain.User{
			FirstName:       profile.GivenName,
			LastName:        profile.FamilyName,
			Email:           email,
			GoogleID:        &profile.ID,
			Role:            domain.RoleCustomer,
			AuthProvider:    domain.ProviderGoogle,
			IsEmailVerified: true,
			IsActive:        true,
		}
		if profile.AvatarURL != "" {
			user.Avatar = &profile.AvatarURL
		}

		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logins.Add(ctx, 1)

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// RefreshAccessToken validates a refresh token against the stored value and
// issues a new access token. A superseded or cleared token fails here.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return "", domain.ErrInvalidToken
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout clears the stored refresh token, so the session cannot be refreshed
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// GetUser gets a user by ID
func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the allow-listed fields to the user's profile
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.User, error) {
	update := &domain.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Preferences: req.Preferences,
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password and replaces the stored hash
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if !utils.ValidatePassword(newPassword) {
		return domain.ErrWeakPassword
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.ErrInvalidCredentials
	}

	if user.AuthProvider != domain.ProviderLocal || user.PasswordHash == nil {
		return domain.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(currentPassword, *user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	newHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// ValidateToken validates an access token and returns its claims
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return claims, nil
}

// generateTokens issues an access/refresh pair and overwrites the stored
// refresh token, invalidating any previous session for the user
func (s *authService) generateTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.RefreshToken = &refreshToken

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.jwtManager.GetAccessTokenExpiry(),
	}, nil
}
