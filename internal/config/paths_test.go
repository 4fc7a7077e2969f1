package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	root := t.TempDir()

	t.Run("configured root with default layout", func(t *testing.T) {
		paths, err := GetPaths(PathsConfig{Root: root})
		require.NoError(t, err)

		assert.Equal(t, root, paths.Root)
		assert.Equal(t, filepath.Join(root, "data", "raw"), paths.RawDir)
		assert.Equal(t, filepath.Join(root, "data", "processed"), paths.ProcessedDir)
		assert.Equal(t, filepath.Join(root, "data", "reports"), paths.ReportsDir)
		assert.Equal(t, filepath.Join(root, "data", "reports", "charts"), paths.ChartsDir)
		assert.Equal(t, filepath.Join(root, "logs"), paths.LogsDir)
	})

	t.Run("absolute directories kept", func(t *testing.T) {
		elsewhere := t.TempDir()
		paths, err := GetPaths(PathsConfig{Root: root, RawDir: elsewhere})
		require.NoError(t, err)
		assert.Equal(t, elsewhere, paths.RawDir)
	})

	t.Run("root from environment", func(t *testing.T) {
		t.Setenv(RootEnv, root)
		paths, err := GetPaths(PathsConfig{})
		require.NoError(t, err)
		assert.Equal(t, root, paths.Root)
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", "raw"), 0755))
	nested := filepath.Join(root, "notebooks", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, ok := FindProjectRoot(nested)
	require.True(t, ok)
	assert.Equal(t, root, got)
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := PathsAt(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.ProcessedDir, paths.ReportsDir, paths.ChartsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
	assert.False(t, FileExists(paths.RawDir), "raw directory is input only")
}

func TestPathHelperMethods(t *testing.T) {
	root := t.TempDir()
	paths, err := PathsAt(root)
	require.NoError(t, err)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"raw", paths.GetRawPath("RAW_recipes.csv"), filepath.Join(root, "data", "raw", "RAW_recipes.csv")},
		{"processed", paths.GetProcessedPath("recipes.xlsx"), filepath.Join(root, "data", "processed", "recipes.xlsx")},
		{"report", paths.GetReportPath("summary.csv"), filepath.Join(root, "data", "reports", "summary.csv")},
		{"chart", paths.GetChartPath("hist.png"), filepath.Join(root, "data", "reports", "charts", "hist.png")},
		{"log", paths.GetLogPath("app.log"), filepath.Join(root, "logs", "app.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, filepath.Join("data", "raw", "x.csv"), paths.RelativeToRoot(paths.GetRawPath("x.csv")))
	outside := filepath.Join(filepath.Dir(root), "other.csv")
	assert.Equal(t, outside, paths.RelativeToRoot(outside))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}
