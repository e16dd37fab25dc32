package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPlatformNotFound       = errors.New("platform not found")
	ErrResultNotFound         = errors.New("result not found")
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidTheme           = errors.New("invalid theme")
	ErrInvalidImage           = errors.New("invalid image")
	ErrMalformedResponse      = errors.New("malformed model response")
	ErrEmptyResponse          = errors.New("empty response from model")
	ErrNoImageInResponse      = errors.New("no image data in model response")
	ErrBatchRunning           = errors.New("a batch is already running")
	ErrRegenerationInProgress = errors.New("regeneration already in progress")
)

// ServiceError is returned when a call to a remote generation service fails.
// It is always fatal for the batch that triggered it.
type ServiceError struct {
	Service    string // "strategy" or "rendering"
	Op         string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s service: %s: HTTP %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s service: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsServiceError reports whether err carries a *ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
