package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicevision/internal/domain"
	"invoicevision/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrEmptyUpload):
		return http.StatusBadRequest, "EMPTY_UPLOAD", "uploaded file is empty"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: png, jpg"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest, "INVALID_IMAGE", "file could not be decoded as an image"
	case errors.Is(err, domain.ErrUnsupportedModel):
		return http.StatusBadRequest, "UNSUPPORTED_MODEL", "requested model is not supported"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// failureStatus maps an extraction failure kind to an HTTP status code.
func failureStatus(kind domain.FailureKind) int {
	switch kind {
	case domain.FailureInvalidImage:
		return http.StatusBadRequest
	case domain.FailureRateLimited:
		return http.StatusTooManyRequests
	case domain.FailureAuth, domain.FailureTransientNetwork, domain.FailureMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// HandleError sends the right error response for a pipeline error: extraction
// failures carry their classification, everything else goes through the
// domain error map.
func HandleError(c *gin.Context, err error) {
	var extErr *service.ExtractionError
	if errors.As(err, &extErr) {
		c.JSON(failureStatus(extErr.Failure.Kind), APIResponse{
			Success: false,
			Error: &APIError{
				Code:    string(extErr.Failure.Kind),
				Message: extErr.Failure.Message,
			},
			Data: gin.H{"retriable": extErr.Failure.Retriable},
		})
		return
	}
	status, code, msg := MapDomainError(err)
	RespondError(c, status, code, msg)
}
