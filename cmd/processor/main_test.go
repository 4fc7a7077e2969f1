package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/shared/testutil"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// setupProject writes the raw fixtures and a quiet config file under a
// temporary root
func setupProject(t *testing.T) (root, configFile string) {
	t.Helper()
	root = t.TempDir()
	paths, err := config.PathsAt(root)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	testutil.WriteRawDataset(t, paths.RawDir)

	configFile = testutil.WriteFixture(t, root, "config.yaml", []byte("logging:\n  level: error\n"))
	return root, configFile
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			want: options{out: "recipes_processed", export: exportXLSX, charts: true},
		},
		{
			name: "all flags",
			args: []string{"-root", "/data", "-recipes", "r.csv", "-config", "c.yaml", "-drop-nutrition",
				"-out", "prepared", "-export", "csv", "-charts=false"},
			want: options{root: "/data", recipes: "r.csv", configFile: "c.yaml", dropNutrition: true,
				out: "prepared", export: exportCSV},
		},
		{
			name: "check",
			args: []string{"-check"},
			want: options{out: "recipes_processed", export: exportXLSX, charts: true, check: true},
		},
		{name: "bad export", args: []string{"-export", "json"}, wantErr: true},
		{name: "unknown flag", args: []string{"-verbose"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunWorkbookExport(t *testing.T) {
	root, configFile := setupProject(t)

	var logs bytes.Buffer
	res, err := run(context.Background(), options{
		root:       root,
		configFile: configFile,
		out:        "recipes_processed",
		export:     exportXLSX,
	}, &logs)
	require.NoError(t, err)

	assert.FileExists(t, res.Processed)
	assert.Equal(t, filepath.Join(root, "data", "processed", "recipes_processed.xlsx"), res.Processed)
	require.Len(t, res.Summaries, 1)
	assert.Empty(t, res.Charts)
	assert.Empty(t, res.ProcessedCSV, "csv table only for -export csv")
	assert.NotEmpty(t, res.RunID)

	f, err := excelize.OpenFile(res.Summaries[0])
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{domain.RecipeMinutes, domain.NutritionCalories, "year",
		domain.RecipeContributor, "tags_elements", domain.InteractionRating} {
		assert.Contains(t, sheets, want)
	}
}

func TestRunCSVExportDropNutrition(t *testing.T) {
	root, configFile := setupProject(t)

	res, err := run(context.Background(), options{
		root:          root,
		configFile:    configFile,
		out:           "prepared",
		export:        exportCSV,
		dropNutrition: true,
	}, io.Discard)
	require.NoError(t, err)

	require.NotEmpty(t, res.Summaries)
	for _, path := range res.Summaries {
		assert.True(t, strings.HasPrefix(filepath.Base(path), summaryWorkbook+"_"), path)
		assert.FileExists(t, path)
	}

	assert.Equal(t, filepath.Join(root, "data", "processed", "prepared.csv"), res.ProcessedCSV)
	table, err := os.ReadFile(res.ProcessedCSV)
	require.NoError(t, err)
	header := strings.SplitN(strings.TrimPrefix(string(table), "\ufeff"), "\n", 2)[0]
	assert.Contains(t, header, domain.NutritionCalories)
	assert.NotContains(t, strings.Split(header, ","), domain.RecipeNutrition)

	minutes, err := os.ReadFile(filepath.Join(root, "data", "reports", summaryWorkbook+"_minutes.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(minutes), "130")

	f, err := excelize.OpenFile(res.Processed)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.NotContains(t, rows[0], domain.RecipeNutrition)
	assert.Contains(t, rows[0], domain.NutritionCalories)
}

func TestRunAppendsRunLog(t *testing.T) {
	root, configFile := setupProject(t)
	opts := options{root: root, configFile: configFile, out: "recipes_processed", export: exportXLSX}

	first, err := run(context.Background(), opts, io.Discard)
	require.NoError(t, err)
	second, err := run(context.Background(), opts, io.Discard)
	require.NoError(t, err)
	require.Equal(t, first.RunLog, second.RunLog)
	assert.NotEqual(t, first.RunID, second.RunID)

	content, err := os.ReadFile(first.RunLog)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3, "header written once")
	assert.Equal(t, strings.Join(runLogHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], first.RunID+","))
	assert.True(t, strings.HasPrefix(lines[2], second.RunID+","))
	assert.Contains(t, lines[1], ","+config.DefaultRecipesFile+",3,")
}

func TestRunMissingRecipes(t *testing.T) {
	root, configFile := setupProject(t)

	_, err := run(context.Background(), options{
		root:       root,
		configFile: configFile,
		recipes:    "absent.csv",
		out:        "recipes_processed",
		export:     exportXLSX,
	}, io.Discard)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(root, "data", "processed", "recipes_processed.xlsx"))
}

func TestCheckProject(t *testing.T) {
	root, configFile := setupProject(t)

	var out bytes.Buffer
	require.NoError(t, checkProject(options{root: root, configFile: configFile}, &out))
	assert.Contains(t, out.String(), filepath.Join(root, "data", "raw"))
	assert.Contains(t, out.String(), config.DefaultRecipesFile)
}

func TestBuildSummariesSkipsAbsentColumns(t *testing.T) {
	tbl, err := domain.NewTable(domain.NewColumn(domain.RecipeMinutes, domain.ColumnRaw,
		[]domain.Value{domain.String("10"), domain.String("20")}))
	require.NoError(t, err)

	sheets, err := buildSummaries(tbl, domain.Table{})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, domain.RecipeMinutes, sheets[0].Name)
}
