package api

import (
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

// authAction dispatches the identity gateway actions
func (h *Handler) authAction(c *gin.Context) {
	var in service.Credentials
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()

	switch in.Action {
	case service.ActionRegister:
		if _, err := h.auth.Register(ctx, &in); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, true, "Registration successful")

	case service.ActionLogin:
		session, err := h.auth.Login(ctx, &in)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, session, "Logged in successfully")

	case service.ActionLogout:
		if err := h.auth.Logout(ctx, bearerToken(c)); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, true, "Logged out successfully!")

	case service.ActionCheckAuth:
		session, err := h.auth.CheckAuth(ctx, bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, session, "Authenticated user!")

	default:
		respondError(c, apperr.InvalidInput("Invalid action"))
	}
}
