package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"dsstool/internal/dss"
)

func TestWrapError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", &dss.NotFoundError{Kind: "worksheet", Name: "5G Info"}, ErrorTypeValidation},
		{"no data", &dss.NoDataError{Sheet: "5G Info"}, ErrorTypeNoData},
		{"template missing", &dss.TemplateMissingError{Template: "stand.txt"}, ErrorTypeConfiguration},
		{"wrapped template missing", fmt.Errorf("render: %w", &dss.TemplateMissingError{}), ErrorTypeConfiguration},
		{"cancelled", context.Canceled, ErrorTypeCancellation},
		{"deadline", context.DeadlineExceeded, ErrorTypeTimeout},
		{"other", errors.New("disk full"), ErrorTypeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opErr := WrapError(tt.err, StepIDRender)
			assert.Equal(t, tt.want, opErr.Type)
			assert.Equal(t, StepIDRender, opErr.Step)
			assert.ErrorIs(t, opErr, tt.err)
			assert.False(t, opErr.Retryable)
		})
	}
}

func TestWrapError_KeepsOperationError(t *testing.T) {
	orig := NewValidationError("", "no workbook loaded")
	got := WrapError(orig, StepIDExtract)
	assert.Same(t, orig, got)
	assert.Equal(t, StepIDExtract, got.Step)
	assert.Nil(t, WrapError(nil, StepIDExtract))
}

func TestOperationError_Error(t *testing.T) {
	err := WrapError(&dss.NoDataError{Sheet: "5G Info", Column: "DSS", Exclude: "NO", Total: 3}, StepIDExtract)
	assert.Contains(t, err.Error(), "[no_data] extract: nothing to generate")
	assert.Contains(t, err.Error(), "3 rows scanned")

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())

	assert.Equal(t, "[validation] bad input", NewValidationError("", "bad input").Error())
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("x")))
	wrapped := fmt.Errorf("outer: %w", NewCancellationError(StepIDMap, context.Canceled))
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(wrapped))
}
