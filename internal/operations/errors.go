package operations

import (
	"context"
	"errors"
	"fmt"

	"dsstool/internal/dss"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeNoData        ErrorType = "no_data"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeExecution     ErrorType = "execution"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeCancellation  ErrorType = "cancellation"
)

// OperationError represents a step-specific error
type OperationError struct {
	Type      ErrorType              `json:"type"`
	Step      string                 `json:"step,omitempty"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *OperationError {
	typ := ErrorTypeCancellation
	if errors.Is(cause, context.DeadlineExceeded) {
		typ = ErrorTypeTimeout
	}
	return &OperationError{
		Type:    typ,
		Step:    step,
		Message: "run was cancelled",
		Cause:   cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	return false
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// WrapError classifies err as the failure of step. Domain errors keep their
// identity through Unwrap.
func WrapError(err error, step string) *OperationError {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = step
		}
		return opErr
	}

	var (
		notFound *dss.NotFoundError
		noData   *dss.NoDataError
		missing  *dss.TemplateMissingError
	)
	switch {
	case errors.As(err, &noData):
		return &OperationError{
			Type:    ErrorTypeNoData,
			Step:    step,
			Message: "nothing to generate",
			Cause:   err,
			Context: map[string]interface{}{"sheet": noData.Sheet, "rows_scanned": noData.Total},
		}
	case errors.As(err, &notFound):
		return &OperationError{
			Type:    ErrorTypeValidation,
			Step:    step,
			Message: "workbook is missing required data",
			Cause:   err,
			Context: map[string]interface{}{"kind": notFound.Kind, "name": notFound.Name},
		}
	case errors.As(err, &missing):
		return &OperationError{
			Type:    ErrorTypeConfiguration,
			Step:    step,
			Message: "template set is incomplete",
			Cause:   err,
			Context: map[string]interface{}{"template": missing.Template},
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewCancellationError(step, err)
	}
	return NewExecutionError(step, err)
}
