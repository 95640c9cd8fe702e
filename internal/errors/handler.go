package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"dsstool/internal/dss"
	"dsstool/internal/files"
	"dsstool/internal/operations"
	"dsstool/internal/templates"
	"dsstool/internal/workbook"
)

// Common error types following RFC 7807
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeUnsupported     = "/errors/unsupported-media-type"
)

// Domain-specific error types
const (
	TypeUnreadable      = "/errors/run/unreadable-workbook"
	TypeNoData          = "/errors/run/no-data"
	TypeSourceNotFound  = "/errors/run/source-not-found"
	TypeTemplateMissing = "/errors/run/template-missing"
	TypeRunFailed       = "/errors/run/failed"
	TypeRunCancelled    = "/errors/run/cancelled"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	h.Respond(w, r, err, h.ErrorToProblem(err, r))
}

// Respond logs err and renders an already built problem.
func (h *ErrorHandler) Respond(w http.ResponseWriter, r *http.Request, err error, problem *ProblemDetails) {
	reqID := middleware.GetReqID(r.Context())

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var valErrs ValidationErrors
	if errors.As(err, &valErrs) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"One or more run options are invalid",
			path,
		).WithExtension("errors", valErrs.Errors)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) || errors.Is(err, files.ErrTooLarge) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			"The uploaded workbook exceeds the maximum allowed size",
			path,
		)
	}

	if errors.Is(err, workbook.ErrUnsupportedFormat) {
		return NewProblemDetails(
			http.StatusUnsupportedMediaType,
			TypeUnsupported,
			"Unsupported Workbook Format",
			err.Error(),
			path,
		)
	}

	if errors.Is(err, workbook.ErrUnreadable) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeUnreadable,
			"Unreadable Workbook",
			err.Error(),
			path,
		)
	}

	if errors.Is(err, templates.ErrNoTemplates) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeTemplateMissing,
			"Templates Unavailable",
			err.Error(),
			path,
		)
	}

	var noData *dss.NoDataError
	if errors.As(err, &noData) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeNoData,
			"No Data",
			noData.Error(),
			path,
		).WithExtension("worksheet", noData.Sheet).WithExtension("rows_scanned", noData.Total)
	}

	var notFound *dss.NotFoundError
	if errors.As(err, &notFound) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSourceNotFound,
			fmt.Sprintf("%s Not Found", titleCase(notFound.Kind)),
			notFound.Error(),
			path,
		).WithExtension("available", notFound.Available)
	}

	var missing *dss.TemplateMissingError
	if errors.As(err, &missing) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeTemplateMissing,
			"Template Missing",
			missing.Error(),
			path,
		).WithExtension("template", missing.Template)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The run took too long to process and was cancelled",
			path,
		)
	}
	if errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeRunCancelled,
			"Run Cancelled",
			"The run was cancelled before it completed",
			path,
		)
	}

	var opErr *operations.OperationError
	if errors.As(err, &opErr) {
		switch opErr.Type {
		case operations.ErrorTypeValidation:
			return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", opErr.Error(), path)
		case operations.ErrorTypeNoData:
			return NewProblemDetails(http.StatusUnprocessableEntity, TypeNoData, "No Data", opErr.Error(), path)
		}
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeRunFailed,
			"Run Failed",
			opErr.Error(),
			path,
		).WithExtension("step", opErr.Step)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest, CodeMissingParameter:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeUnsupportedFormat:
		problemType = TypeUnsupported
	case CodePayloadTooLarge:
		problemType = TypePayloadTooLarge
	case CodeNoData:
		problemType = TypeNoData
	case CodeSourceNotFound:
		problemType = TypeSourceNotFound
	case CodeTemplateMissing:
		problemType = TypeTemplateMissing
	case CodeRateLimitExceeded:
		problemType = TypeRateLimit
	case CodeRunFailed:
		problemType = TypeRunFailed
	case CodeRunCancelled:
		problemType = TypeRunCancelled
	case CodeServiceDown:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

func titleCase(s string) string {
	if s == "" {
		return "Resource"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
