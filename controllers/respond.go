package controllers

import (
	"errors"
	"net/http"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/pagination"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// ListResponse is the envelope for paginated listings.
type ListResponse struct {
	Data interface{}     `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ItemResponse is the envelope for single-item reads.
type ItemResponse struct {
	Data interface{} `json:"data"`
}

// MessageResponse confirms a mutation.
type MessageResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// ErrorResponse is the body for every non-validation failure.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse lists field-level input errors.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// writeError is the single point translating the service error
// taxonomy into status codes. Internal causes are logged here and
// never reach the body.
func writeError(resp *restful.Response, logger *zap.Logger, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		if len(validationErr.Messages) > 1 {
			logger.Debug("request validation failed",
				zap.String("primary", validationErr.Messages[0]),
				zap.Int("additional", len(validationErr.Messages)-1))
		}
		writeJSON(resp, http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: validationErr.Messages})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		writeJSON(resp, http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrUnknownPrincipal):
		writeJSON(resp, http.StatusUnauthorized, ErrorResponse{Message: "Could not validate credentials"})
	case errors.Is(err, apperrors.ErrForbidden):
		writeJSON(resp, http.StatusForbidden, ErrorResponse{Message: "Insufficient permissions"})
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(resp, http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		writeJSON(resp, http.StatusConflict, ErrorResponse{Message: err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(resp, http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

func writeJSON(resp *restful.Response, status int, body interface{}) {
	_ = resp.WriteHeaderAndJson(status, body, restful.MIME_JSON)
}
