package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/internal/dto"
	"github.com/rigzlion8/watermaji/internal/service"
	"github.com/rigzlion8/watermaji/internal/utils"
	"go.uber.org/zap"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/auth"
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService     service.AuthService
	google          *service.GoogleOAuthService
	logger          *zap.Logger
	frontendURL     string
	refreshTokenTTL int
	secureCookies   bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService service.AuthService,
	google *service.GoogleOAuthService,
	logger *zap.Logger,
	frontendURL string,
	refreshTokenTTL int,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		google:          google,
		logger:          logger,
		frontendURL:     frontendURL,
		refreshTokenTTL: refreshTokenTTL,
		secureCookies:   secureCookies,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "all required fields must be provided",
		})
		return
	}

	if !utils.ValidatePassword(req.Password) {
		respondError(c, domain.ErrWeakPassword)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "user registered successfully",
		Data:    gin.H{"user": dto.NewUserSummary(user)},
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "email and password are required",
		})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "login successful",
		Data: dto.LoginData{
			User:        dto.NewUserSummary(result.User),
			AccessToken: result.Tokens.AccessToken,
		},
	})
}

// Refresh exchanges the refresh token cookie for a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "token refreshed successfully",
		Data:    gin.H{"accessToken": accessToken},
	})
}

// Logout invalidates the user's refresh token and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	h.clearRefreshCookie(c)

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "logout successful",
	})
}

// GetProfile returns the full profile of the authenticated user
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Profiles must never be served from cache
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    gin.H{"user": dto.NewUserProfile(user)},
	})
}

// UpdateProfile applies allow-listed profile fields
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "profile updated successfully",
		Data:    gin.H{"user": dto.NewUserProfile(user)},
	})
}

// ChangePassword verifies the current password and stores a new hash
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "current password and new password are required",
		})
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "password changed successfully",
	})
}

// GoogleLogin redirects the browser to the Google consent page
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if !h.google.Enabled() {
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Message: "google sign-in is not configured",
		})
		return
	}

	state := uuid.New().String()
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/api/auth", "", h.secureCookies, true)

	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback completes the OAuth flow and redirects to the frontend
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != c.Query("state") {
		h.redirectWithError(c, "invalid oauth state")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/api/auth", "", h.secureCookies, true)

	code := c.Query("code")
	if code == "" {
		h.redirectWithError(c, "authorization code is missing")
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("google code exchange failed", zap.Error(err))
		h.redirectWithError(c, "google sign-in failed")
		return
	}

	result, err := h.authService.HandleGoogleAuth(c.Request.Context(), profile)
	if err != nil {
		h.logger.Warn("google auth failed", zap.Error(err))
		h.redirectWithError(c, "google sign-in failed")
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)

	c.Redirect(http.StatusTemporaryRedirect,
		h.frontendURL+"/auth/callback?token="+url.QueryEscape(result.Tokens.AccessToken))
}

func (h *AuthHandler) redirectWithError(c *gin.Context, message string) {
	c.Redirect(http.StatusTemporaryRedirect,
		h.frontendURL+"/auth/error?message="+url.QueryEscape(message))
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, refreshToken, h.refreshTokenTTL, refreshCookiePath, "", h.secureCookies, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookies, true)
}
