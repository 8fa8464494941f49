package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/service"
)

const principalKey = "principal"

// Auth validates Authorization headers and attaches the resolved
// principal to the request.
type Auth struct {
	AuthService *service.AuthService
}

// ValidateJWT ensures the request carries a valid bearer token for an
// existing, active staff member and that no PIN change is pending.
func (m *Auth) ValidateJWT(c *gin.Context) {
	m.validate(c, m.AuthService.Authenticate)
}

// ValidateJWTForPinChange admits tokens flagged with force_pin_change so
// the PIN change endpoint stays reachable for forced-reset holders.
func (m *Auth) ValidateJWTForPinChange(c *gin.Context) {
	m.validate(c, m.AuthService.AuthenticateForPinChange)
}

func (m *Auth) validate(c *gin.Context, authenticate func(ctx context.Context, token string) (domain.Principal, error)) {
	token, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Bearer token required."})
		return
	}

	principal, err := authenticate(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPinChangeRequired):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "pin_change_required", "error_description": "PIN change required before accessing the system."})
		case errors.Is(err, domain.ErrTokenInvalid):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Invalid or expired token."})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
		}
		return
	}

	c.Set(principalKey, principal)
	c.Next()
}

// RequireRoles rejects requests whose principal lacks one of the allowed
// designations. Compose after ValidateJWT.
func (m *Auth) RequireRoles(allowed ...domain.Designation) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
			return
		}
		if err := m.AuthService.Authorize(principal, allowed...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "error_description": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// GetPrincipal exposes the authenticated principal to handlers.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
