package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/service"
)

// regenerateFailedNotice is shown to users when a single post could not be re-rendered.
const regenerateFailedNotice = "Failed to regenerate post. Please try again."

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidImage), errors.Is(err, domain.ErrInvalidTheme),
		errors.Is(err, domain.ErrPlatformNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBatchRunning), errors.Is(err, domain.ErrRegenerationInProgress),
		errors.Is(err, service.ErrSessionReset):
		return http.StatusConflict
	case domain.IsServiceError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
