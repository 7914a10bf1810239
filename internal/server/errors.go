package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/abhisek/practiced/internal/llm"
	"github.com/abhisek/practiced/internal/practice"
)

// Machine-readable error codes.
const (
	CodeLessonContentRequired  = "lesson_content_required"
	CodeInvalidRequest         = "invalid_request"
	CodeSchemaValidationFailed = "schema_validation_failed"
	CodeInsufficientQuestions  = "insufficient_questions"
	CodeModelUnavailable       = "model_unavailable"
	CodeInternal               = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// classify maps an error to its status, code and detail.
func classify(err error) (int, ErrorResponse) {
	var invErr *llm.ErrInvalidResponse

	switch {
	case errors.Is(err, practice.ErrLessonContentRequired):
		return http.StatusBadRequest, ErrorResponse{Detail: practice.ErrLessonContentRequired.Error(), Code: CodeLessonContentRequired}
	case errors.Is(err, practice.ErrInvalidRequest):
		return http.StatusBadRequest, ErrorResponse{Detail: err.Error(), Code: CodeInvalidRequest}
	case errors.As(err, &invErr):
		return http.StatusInternalServerError, ErrorResponse{Detail: invErr.Error(), Code: CodeSchemaValidationFailed}
	case errors.Is(err, practice.ErrInsufficientQuestions):
		return http.StatusInternalServerError, ErrorResponse{Detail: err.Error(), Code: CodeInsufficientQuestions}
	case llm.IsModelFailure(err):
		return http.StatusInternalServerError, ErrorResponse{Detail: err.Error(), Code: CodeModelUnavailable}
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: err.Error(), Code: CodeInternal}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.String("code", body.Code),
		slog.Any("error", err))
	writeJSON(w, status, body)
}
