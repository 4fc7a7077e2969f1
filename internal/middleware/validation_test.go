package middleware

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
)

type testQuery struct {
	Column string `query:"column" validate:"column"`
	Other  string `json:"other" validate:"omitempty,column,nefield=Column"`
	Kind   string `query:"kind" validate:"omitempty,oneof=numeric categorical"`
	TopK   int    `query:"top_k" validate:"gte=0,lte=1000"`
}

func TestQueryValidator_ValidateStruct(t *testing.T) {
	v := NewQueryValidator(nil)

	tests := []struct {
		name       string
		query      testQuery
		wantFields []string
	}{
		{"valid", testQuery{Column: "minutes", Other: "n_steps", Kind: "numeric", TopK: 5}, nil},
		{"blank column", testQuery{Column: "  "}, []string{"column"}},
		{"path traversal", testQuery{Column: "../secret"}, []string{"column"}},
		{"separator", testQuery{Column: `a\b`}, []string{"column"}},
		{"control character", testQuery{Column: "min\x00utes"}, []string{"column"}},
		{"too long", testQuery{Column: strings.Repeat("c", 256)}, []string{"column"}},
		{"same columns", testQuery{Column: "year", Other: "year"}, []string{"other"}},
		{"bad kind and top_k", testQuery{Column: "year", Kind: "ordinal", TopK: 1001}, []string{"kind", "top_k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.query)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok, "details %T", apiErr.Details)
			fields := make([]string, len(details.Errors))
			for i, fe := range details.Errors {
				fields[i] = fe.Field
				assert.NotEmpty(t, fe.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestQueryValidator_Int(t *testing.T) {
	v := NewQueryValidator(nil)

	tests := []struct {
		target  string
		want    int
		wantErr bool
	}{
		{"/x", 10, false},
		{"/x?top_k=3", 3, false},
		{"/x?top_k=%20", 10, false},
		{"/x?top_k=-2", -2, false},
		{"/x?top_k=three", 0, true},
	}
	for _, tt := range tests {
		got, err := v.Int(httptest.NewRequest("GET", tt.target, nil), "top_k", 10)
		if tt.wantErr {
			assert.Error(t, err, tt.target)
			continue
		}
		require.NoError(t, err, tt.target)
		assert.Equal(t, tt.want, got, tt.target)
	}
}

func TestQueryValidator_Bool(t *testing.T) {
	v := NewQueryValidator(nil)

	got, err := v.Bool(httptest.NewRequest("GET", "/x", nil), "normalize", true)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = v.Bool(httptest.NewRequest("GET", "/x?normalize=false", nil), "normalize", true)
	require.NoError(t, err)
	assert.False(t, got)

	_, err = v.Bool(httptest.NewRequest("GET", "/x?normalize=maybe", nil), "normalize", false)
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
}
