package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantDetail interface{}
	}{
		{
			name:       "field validation",
			err:        ErrValidation("column", "is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantDetail: ValidationError{Field: "column", Message: "is required"},
		},
		{
			name:       "column not found",
			err:        ColumnNotFoundError("calories"),
			wantStatus: http.StatusNotFound,
			wantCode:   "COLUMN_NOT_FOUND",
			wantDetail: "calories",
		},
		{
			name:       "name collision",
			err:        NameCollisionError([]string{"sugar"}),
			wantStatus: http.StatusConflict,
			wantCode:   "NAME_COLLISION",
			wantDetail: []string{"sugar"},
		},
		{
			name:       "dataset not loaded",
			err:        ErrDatasetNotLoaded,
			wantStatus: http.StatusConflict,
			wantCode:   "DATASET_NOT_LOADED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantDetail, tt.err.Details)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "k", Message: "must be positive"},
		{Field: "column", Message: "is required"},
	})
	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)

	assert.Equal(t, "VALIDATION_FAILED", NewValidationError("x").ErrorCode)
}

func TestAppError(t *testing.T) {
	cause := errors.New("unexpected EOF")

	tests := []struct {
		name    string
		err     *AppError
		want    string
		errType ErrorType
	}{
		{"parsing", NewParsingError("read recipes", cause), "[PARSING] read recipes: unexpected EOF", ErrTypeParsing},
		{"encoding", NewEncodingError("decode file", cause), "[ENCODING] decode file: unexpected EOF", ErrTypeEncoding},
		{"storage", NewStorageError("save table", cause), "[STORAGE] save table: unexpected EOF", ErrTypeStorage},
		{"validation", NewAppValidationError("empty table"), "[VALIDATION] empty table", ErrTypeValidation},
		{"not found", NewNotFoundError("recipes file"), "[NOT_FOUND] recipes file not found", ErrTypeNotFound},
		{"conversion", NewConversionError("split", cause), "[CONVERSION] split: unexpected EOF", ErrTypeConversion},
		{"config", NewConfigError("load", nil), "[CONFIG] load", ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.errType, tt.err.Type)
		})
	}
}

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("loader: %w", NewStorageError("open", cause).WithContext("path", "/data/raw"))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "/data/raw", appErr.Context["path"])
	assert.ErrorIs(t, err, cause)

	bare := &AppError{Type: ErrTypeConfig, Message: "x"}
	bare.WithContext("k", 1)
	assert.Equal(t, 1, bare.Context["k"])
}
