package auth

import (
	"errors"
	"net/http"

	"github.com/NordCoder/session-gateway/internal/credentials"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	msgBodyRequired     = "Request body is required"
	msgAccountExists    = "User already exists"
	msgRoleNotFound     = "Role does not exist"
	msgAccountNotFound  = "User does not exist"
	msgInvalidPassword  = "Invalid password"
	msgUnexpected       = "Unexpected error"
	msgUnauthorized     = "Unauthorized"
	msgReauthenticate   = "Session expired, please sign in again"
	msgLogout           = "Logout successful"
	msgPasswordChanged  = "Password changed"
	codeReauthenticate  = "reauthentication_required"
	codeInvalidSession  = "invalid_session"
	codeValidationError = "validation_error"
)

type errorResponse struct {
	Message string                   `json:"message"`
	Code    string                   `json:"code,omitempty"`
	Errors  []credentials.FieldError `json:"errors,omitempty"`
}

// writeErr maps use-case errors to responses. unexpected is the status used
// for anything not in the taxonomy.
func writeErr(c *gin.Context, log *zap.Logger, err error, unexpected int) {
	var ve credentials.ValidationErrors
	switch {
	case errors.As(err, &ve):
		msg := "Validation failed"
		if len(ve) > 0 {
			msg = ve[0].Message
		}
		c.JSON(http.StatusBadRequest, errorResponse{Message: msg, Code: codeValidationError, Errors: ve})
	case errors.Is(err, ErrAccountExists):
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgAccountExists})
	case errors.Is(err, ErrRoleNotFound):
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgRoleNotFound})
	case errors.Is(err, ErrAccountNotFound):
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgAccountNotFound})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Message: msgInvalidPassword})
	default:
		log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		c.JSON(unexpected, errorResponse{Message: msgUnexpected})
	}
}
