package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/loader"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()

	paths, err := config.PathsAt(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return NewCSVWriter(paths, nil), paths
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, paths := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, path string)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"name", "minutes"},
				Records: [][]string{{"chili", "130"}, {"pizza", "30"}},
			},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, filepath.Join(paths.ReportsDir, "test_basic.csv"), path)
				assert.Equal(t, []string{"name,minutes", "chili,130", "pizza,30"}, readLines(t, path))
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"tag"},
				Records:   [][]string{{"crème brûlée"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
				assert.Equal(t, []string{"tag", "crème brûlée"}, readLines(t, path))
			},
		},
		{
			name:     "write without headers",
			filePath: "test_no_headers.csv",
			options:  WriteOptions{Records: [][]string{{"a", "b"}}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, []string{"a,b"}, readLines(t, path))
			},
		},
		{
			name:     "processed prefix",
			filePath: "processed/table.csv",
			options:  WriteOptions{Headers: []string{"x"}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, filepath.Join(paths.ProcessedDir, "table.csv"), path)
			},
		},
		{
			name:     "quoted fields",
			filePath: "test_quotes.csv",
			options:  WriteOptions{Records: [][]string{{"['a', 'b']", "so simple, so good"}}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, []string{`"['a', 'b']","so simple, so good"`}, readLines(t, path))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			tt.validate(t, path)
		})
	}
}

func TestCSVWriter_AppendToCSV(t *testing.T) {
	writer, _ := setupTestEnv(t)

	path, err := writer.AppendToCSV("log.csv", []string{"run", "rows"}, [][]string{{"1", "10"}})
	require.NoError(t, err)
	_, err = writer.AppendToCSV("log.csv", []string{"run", "rows"}, [][]string{{"2", "20"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"run,rows", "1,10", "2,20"}, readLines(t, path), "headers written once")
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, paths := setupTestEnv(t)
	tbl, err := domain.NewTable(
		domain.NewColumn("name", domain.ColumnRaw, []domain.Value{domain.String("soup"), domain.String("cake")}),
		domain.NewColumn("tags", domain.ColumnList, []domain.Value{
			domain.Sequence(domain.String("easy"), domain.String("it's quick")),
			domain.Absent(),
		}),
		domain.NewColumn("calories", domain.ColumnFloat, []domain.Value{domain.Float(51.5), domain.Float(200)}),
		domain.NewColumn("year", domain.ColumnInt, []domain.Value{domain.Int(2005), domain.Absent()}),
	)
	require.NoError(t, err)

	path, err := writer.WriteTable("recipes.csv", tbl, TableOptions{BOMPrefix: true})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"name,tags,calories,year",
		`soup,"['easy', 'it\'s quick']",51.5,2005`,
		"cake,,200,",
	}, readLines(t, path))

	t.Run("loads back through the loader", func(t *testing.T) {
		l := loader.New(paths, nil)
		back, err := l.ReadCSV(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, tbl.ColumnNames(), back.ColumnNames())

		tags, _ := back.Value("tags", 0)
		assert.Equal(t, domain.String(`['easy', 'it\'s quick']`), tags)
	})

	t.Run("header omitted", func(t *testing.T) {
		path, err := writer.WriteTable("recipes_noheader.csv", tbl, TableOptions{OmitHeader: true})
		require.NoError(t, err)
		assert.Len(t, readLines(t, path), 2)
	})
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, paths := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"a", "b"}, StreamOptions{BOMPrefix: true})
	require.NoError(t, err)
	final := filepath.Join(paths.ReportsDir, "stream.csv")
	assert.Equal(t, final, stream.Path())

	require.NoError(t, stream.WriteValues([]domain.Value{domain.Int(1), domain.String("2")}))
	require.NoError(t, stream.WriteValues([]domain.Value{domain.Int(3), domain.Absent()}))
	assert.NoFileExists(t, final, "file appears on close")

	require.NoError(t, stream.Close())
	assert.Equal(t, []string{"a,b", "1,2", "3,"}, readLines(t, final))

	aborted, err := writer.CreateStreamWriter("aborted.csv", []string{"a"}, StreamOptions{})
	require.NoError(t, err)
	require.NoError(t, aborted.WriteValues([]domain.Value{domain.String("x")}))
	aborted.Abort()
	assert.NoFileExists(t, filepath.Join(paths.ReportsDir, "aborted.csv"))

	entries, err := os.ReadDir(paths.ReportsDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

type stubSheet struct{}

func (stubSheet) Header() []string { return []string{"value", "count", "prop"} }
func (stubSheet) Records() [][]any {
	return [][]any{{"a", 3, 0.75}, {"b", 1, nil}}
}

func TestCSVWriter_WriteSheet(t *testing.T) {
	writer, _ := setupTestEnv(t)

	path, err := writer.WriteSheet("sheet.csv", stubSheet{})
	require.NoError(t, err)
	assert.Equal(t, []string{"value,count,prop", "a,3,0.75", "b,1,"}, readLines(t, path))
}
