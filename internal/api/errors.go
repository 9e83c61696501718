package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/middleware"
	"civiguard-backend-go/internal/models"
)

// mapServiceErrorToStatus maps errors from the core services to HTTP status codes and ErrorResponse.
func mapServiceErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &validationErr):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Field: validationErr.Field, Details: validationErr.Error()}
	case errors.Is(err, core.ErrComplaintNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrComplaintNotFound.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrForbidden):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbidden.Error()}
	case errors.Is(err, core.ErrInvalidTransition):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrInvalidTransition.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrMailerDisabled):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: core.ErrMailerDisabled.Error()}
	default:
		logger.Error("Internal server error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// respondBindError answers a body that could not be decoded.
func respondBindError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidLocation) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Field: "location", Details: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
}

// requireUser returns the authenticated caller or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return user, ok
}
