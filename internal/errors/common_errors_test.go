package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"not found", ErrTypeNotFound, "NOT_FOUND"},
		{"parsing", ErrTypeParsing, "PARSING"},
		{"storage", ErrTypeStorage, "STORAGE"},
		{"validation", ErrTypeValidation, "VALIDATION"},
		{"config", ErrTypeConfig, "CONFIG"},
		{"render", ErrTypeRender, "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAppValidationError("year column is empty"),
			wantMessage: "[VALIDATION] year column is empty",
		},
		{
			name:        "error with cause",
			appError:    NewParsingError("failed to parse data/violations.csv", fmt.Errorf("wrong number of fields")),
			wantMessage: "[PARSING] failed to parse data/violations.csv: wrong number of fields",
		},
		{
			name:        "not found formats resource",
			appError:    NewNotFoundError("data/state_wise_accidents.csv", nil),
			wantMessage: "[NOT_FOUND] data/state_wise_accidents.csv not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewNotFoundError("data/collision_types.csv", fs.ErrNotExist)

	assert.True(t, errors.Is(err, fs.ErrNotExist))

	wrapped := fmt.Errorf("load collision types: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeNotFound, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeStorage, Message: "write failed"}
	err.WithContext("path", "tableau/out.csv").WithContext("rows", 36)

	assert.Equal(t, "tableau/out.csv", err.Context["path"])
	assert.Equal(t, 36, err.Context["rows"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     *AppError
		errType ErrorType
		cause   error
	}{
		{"storage", NewStorageError("mkdir", cause), ErrTypeStorage, cause},
		{"config", NewConfigError("bad yaml", cause), ErrTypeConfig, cause},
		{"render", NewRenderError("png", cause), ErrTypeRender, cause},
		{"parsing", NewParsingError("csv", cause), ErrTypeParsing, cause},
		{"validation", NewAppValidationError("n"), ErrTypeValidation, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.cause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	notFound := fmt.Errorf("outer: %w", NewNotFoundError("x.csv", nil))

	assert.True(t, IsType(notFound, ErrTypeNotFound))
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsType(notFound, ErrTypeParsing))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
