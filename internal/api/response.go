package api

import (
	"fmt"
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope is the body of every API response
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func respondMessage(c *gin.Context, status int, success bool, message string) {
	c.JSON(status, envelope{Success: success, Message: message})
}

// respondError renders err with the status and message of its kind
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: apperr.PublicMessage(err)})
}

func recoverWithEnvelope(c *gin.Context, recovered interface{}) {
	respondError(c, fmt.Errorf("panic: %v", recovered))
}

// bindJSON decodes the request body, rejecting malformed input
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, &apperr.Error{Kind: apperr.KindInvalidInput, Message: "Invalid data provided!", Err: err})
		return false
	}
	return true
}

var errForbidden = apperr.Forbidden("You are not allowed to access this resource")
