package api

import (
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/auth"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(header)
}

// requireAuth verifies the bearer token and attaches the identity to the request context
func (h *Handler) requireAuth() gin.HandlerFunc {
	return h.authenticate(false)
}

// requireAuthWithQueryToken also accepts ?token= for clients that cannot set headers
func (h *Handler) requireAuthWithQueryToken() gin.HandlerFunc {
	return h.authenticate(true)
}

func (h *Handler) authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" && allowQuery {
			token = c.Query("token")
		}

		identity, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity(c).IsAdmin() {
			respondError(c, apperr.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

// ownerParam rejects requests whose path userId belongs to someone else
func (h *Handler) ownerParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authorizeUser(c, c.Param(param)); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) *auth.Identity {
	id, _ := auth.IdentityFrom(c.Request.Context())
	return id
}

// authorizeUser checks that the caller may act on userID's resources
func authorizeUser(c *gin.Context, userID string) error {
	if !identity(c).CanAccessUser(userID) {
		return errForbidden
	}
	return nil
}
