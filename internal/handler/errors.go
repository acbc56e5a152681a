package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/internal/dto"
)

// respondError maps a domain error to an HTTP status and the uniform
// {success:false, message} envelope. Wrapped internals never reach the body.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			status = m.status
			message = m.err.Error()
			break
		}
	}

	c.JSON(status, dto.Response{Success: false, Message: message})
}

// respondErrorAbort is respondError for middleware chains
func respondErrorAbort(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}

var errorMappings = []struct {
	err    error
	status int
}{
	{domain.ErrWeakPassword, http.StatusBadRequest},
	{domain.ErrMissingEmail, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrInsufficientPermissions, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrDuplicateEmail, http.StatusConflict},
}
