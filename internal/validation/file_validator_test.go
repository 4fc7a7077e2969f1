package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
)

func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))
	return path
}

func errType(t *testing.T, err error) apperrors.ErrorType {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Type
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		pattern  string
		wantType apperrors.ErrorType
	}{
		{
			name: "directory with csv files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "RAW_recipes.csv"))
				return dir
			},
			pattern: "*.csv",
		},
		{
			name:    "empty directory is fine",
			setup:   func(t *testing.T) string { return t.TempDir() },
			pattern: "*.csv",
		},
		{
			name:     "missing directory",
			setup:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "file instead of directory",
			setup: func(t *testing.T) string {
				return writeFile(t, filepath.Join(t.TempDir(), "x.csv"))
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name:     "bad pattern",
			setup:    func(t *testing.T) string { return t.TempDir() },
			pattern:  "[",
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)
			err := v.ValidateInputDirectory(tt.setup(t), tt.pattern)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errType(t, err))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "data", "processed")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file removed")
}

func TestFileValidator_Files(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, filepath.Join(dir, "RAW_recipes.csv"))
	xlsxPath := writeFile(t, filepath.Join(dir, "recipes.xlsx"))
	lockPath := writeFile(t, filepath.Join(dir, "~$recipes.xlsx"))

	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateCSVFile(csvPath))
	assert.NoError(t, v.ValidateWorkbook(xlsxPath))

	assert.Equal(t, apperrors.ErrTypeValidation, errType(t, v.ValidateCSVFile(xlsxPath)))
	assert.Equal(t, apperrors.ErrTypeValidation, errType(t, v.ValidateWorkbook(csvPath)))
	assert.Equal(t, apperrors.ErrTypeValidation, errType(t, v.ValidateWorkbook(lockPath)))
	assert.Equal(t, apperrors.ErrTypeNotFound, errType(t, v.ValidateFile(filepath.Join(dir, "missing.csv"))))
	assert.Equal(t, apperrors.ErrTypeValidation, errType(t, v.ValidateFile(dir)))
}

func TestFileValidator_CountFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"))
	writeFile(t, filepath.Join(dir, "b.csv"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.csv"), 0755))

	n, err := NewFileValidator(nil).CountFiles(dir, "*.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
