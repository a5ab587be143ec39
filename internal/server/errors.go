package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/ginjaninja78/ventas-ledger/internal/exporter"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// APIError is the JSON body of every error response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// Error codes returned by the API.
const (
	CodeNoCleanRecords  = "NO_CLEAN_RECORDS"
	CodeBodyTooLarge    = "BODY_TOO_LARGE"
	CodeSourceNotFound  = "SOURCE_NOT_FOUND"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInternalError   = "INTERNAL_SERVER_ERROR"
	CodeInvalidArgument = "INVALID_REQUEST"
)

// toAPIError maps an error to its response.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, exporter.ErrNoRecords):
		return NewAPIError(http.StatusUnprocessableEntity, CodeNoCleanRecords,
			"no row of the ledger survived cleaning")
	case errors.As(err, &tooLarge):
		return NewAPIError(http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
			"ledger exceeds the upload limit")
	case errors.Is(err, fs.ErrNotExist):
		return NewAPIError(http.StatusNotFound, CodeSourceNotFound,
			"source ledger not found")
	default:
		return NewAPIError(http.StatusInternalServerError, CodeInternalError,
			"internal server error")
	}
}

// respondError logs err with the request ID and renders its APIError.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)

	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request error",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status", apiErr.StatusCode),
		slog.String("code", apiErr.ErrorCode),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	render.Render(w, r, apiErr)
}
