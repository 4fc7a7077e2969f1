package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
}

func TestDiscovery_FindBySuffix(t *testing.T) {
	base := t.TempDir()
	createFiles(t, base,
		"data/raw/RAW_recipes.csv",
		"data/raw/RAW_interactions.CSV",
		"data/raw/notes.txt",
		"data/processed/recipes.xlsx",
		"data/raw/nested/inner.csv",
	)

	d := NewDiscovery(base)

	tests := []struct {
		name string
		find func(string) ([]FileInfo, error)
		dir  string
		want []string
	}{
		{"csv relative", d.FindCSVFiles, "data/raw", []string{"RAW_interactions.CSV", "RAW_recipes.csv"}},
		{"csv absolute", d.FindCSVFiles, filepath.Join(base, "data/raw"), []string{"RAW_interactions.CSV", "RAW_recipes.csv"}},
		{"workbooks", d.FindWorkbooks, "data/processed", []string{"recipes.xlsx"}},
		{"no workbooks", d.FindWorkbooks, "data/raw", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := tt.find(tt.dir)
			require.NoError(t, err)

			var names []string
			for _, f := range files {
				names = append(names, f.Name)
				assert.Equal(t, int64(1), f.Size)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := d.FindCSVFiles("missing")
	assert.Error(t, err)
}

func TestDiscovery_FindFilesByPattern(t *testing.T) {
	base := t.TempDir()
	createFiles(t, base, "charts/hist_minutes.png", "charts/box_minutes.png", "charts/sub/x.png")

	d := NewDiscovery(base)
	files, err := d.FindFilesByPattern("charts", "hist_*.png")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hist_minutes.png", files[0].Name)

	files, err = d.FindFilesByPattern("charts", "*")
	require.NoError(t, err)
	assert.Len(t, files, 2, "directories are skipped")

	_, err = d.FindFilesByPattern("charts", "[")
	assert.Error(t, err)
}

func TestDiscovery_ListNames(t *testing.T) {
	base := t.TempDir()
	createFiles(t, base, "b.csv", "a.csv", "dir/c.csv")

	d := NewDiscovery(base)
	assert.Equal(t, []string{"a.csv", "b.csv"}, d.ListNames("."))
	assert.Equal(t, []string{}, d.ListNames("nope"))
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "old", ModTime: now.Add(-2 * time.Hour)},
		{Name: "new", ModTime: now},
		{Name: "mid", ModTime: now.Add(-time.Hour)},
	}

	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "new", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}
