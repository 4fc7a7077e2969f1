package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/analytics"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/exporter"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/infrastructure"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/loader"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/services"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/validation"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/visualization"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

const (
	exportCSV  = "csv"
	exportXLSX = "xlsx"

	summaryWorkbook = "recipes_summary"
	runLogFile      = "processing_runs.csv"
)

var runLogHeader = []string{"run_id", "started_at", "recipes", "rows", "columns", "summaries", "charts", "duration_ms"}

// options holds the command line flags
type options struct {
	root          string
	recipes       string
	configFile    string
	out           string
	export        string
	dropNutrition bool
	charts        bool
	check         bool
}

// result lists what a run wrote
type result struct {
	RunID     string
	Processed string
	// ProcessedCSV is the converted table as CSV, written for -export csv
	ProcessedCSV string
	Summaries    []string
	Charts       []string
	RunLog       string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if opts.check {
		if err := checkProject(opts, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, opts, nil)
	if err != nil {
		slog.Error("Processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("run: %s\n", res.RunID)
	fmt.Printf("processed table: %s\n", res.Processed)
	if res.ProcessedCSV != "" {
		fmt.Printf("processed csv: %s\n", res.ProcessedCSV)
	}
	for _, s := range res.Summaries {
		fmt.Printf("summary: %s\n", s)
	}
	for _, c := range res.Charts {
		fmt.Printf("chart: %s\n", c)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.root, "root", "", "project root holding data/raw (defaults to $EDA_ROOT or the nearest ancestor with data/raw)")
	fs.StringVar(&opts.recipes, "recipes", "", "raw recipes file name under data/raw (defaults to the configured file)")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to $EDA_CONFIG_FILE or the standard locations)")
	fs.StringVar(&opts.out, "out", "recipes_processed", "processed workbook name under data/processed")
	fs.StringVar(&opts.export, "export", exportXLSX, "summary export format: csv or xlsx")
	fs.BoolVar(&opts.dropNutrition, "drop-nutrition", false, "drop the packed nutrition column after splitting it")
	fs.BoolVar(&opts.charts, "charts", true, "render the standard charts under data/reports/charts")
	fs.BoolVar(&opts.check, "check", false, "print the resolved paths and raw files, then exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.export != exportCSV && opts.export != exportXLSX {
		fmt.Fprintf(output, "invalid -export %q: want csv or xlsx\n", opts.export)
		return options{}, fmt.Errorf("invalid export format %q", opts.export)
	}
	return opts, nil
}

// run loads, validates and converts the raw recipes, saves the processed
// workbook, then exports summaries and charts. Logs go to logOutput when
// set, otherwise to the configured logging output.
func run(ctx context.Context, opts options, logOutput io.Writer) (*result, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if logOutput != nil {
		logger = infrastructure.NewLogger(cfg.Logging, logOutput)
	} else if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = infrastructure.CloseLogFile() }()

	ctx, cancel := context.WithTimeout(infrastructure.EnsureTraceID(ctx), config.ProcessorTimeout)
	defer cancel()
	start := time.Now()
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	logger.InfoContext(ctx, "Starting recipe processing",
		slog.String("recipes", cfg.Pipeline.RecipesFile),
		slog.String("out", opts.out),
		slog.String("export", opts.export),
		slog.Bool("drop_nutrition", cfg.Pipeline.DropOriginalNutrition),
		slog.Bool("charts", opts.charts))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(paths.RawDir, "*.csv"); err != nil {
		return nil, err
	}
	if err := validator.ValidateCSVFile(paths.GetRawPath(cfg.Pipeline.RecipesFile)); err != nil {
		return nil, err
	}
	for _, dir := range []string{paths.ProcessedDir, paths.ReportsDir, paths.ChartsDir} {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			return nil, err
		}
	}

	ld := loader.New(paths, logger)
	pipeline := dataprocessing.NewPipeline(dataprocessing.ConfigFromSettings(cfg.Pipeline), logger, nil)
	ds, err := services.NewPrepareService(ld, pipeline, logger).PrepareRecipes(ctx, cfg.Pipeline.RecipesFile)
	if err != nil {
		return nil, err
	}

	res := &result{RunID: runID}
	if res.Processed, err = ld.SaveProcessed(ctx, ds.Table, opts.out); err != nil {
		return nil, err
	}
	csvWriter := exporter.NewCSVWriter(paths, logger)
	if opts.export == exportCSV {
		name := "processed/" + strings.TrimSuffix(opts.out, filepath.Ext(opts.out)) + ".csv"
		if res.ProcessedCSV, err = csvWriter.WriteTable(name, ds.Table, exporter.TableOptions{BOMPrefix: true}); err != nil {
			return nil, err
		}
	}

	interactions, err := ld.LoadInteractions(ctx, cfg.Pipeline.InteractionsFile)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrTypeNotFound {
			return nil, err
		}
		logger.WarnContext(ctx, "Interactions file not found, skipping rating summary",
			slog.String("file", cfg.Pipeline.InteractionsFile))
		interactions = domain.Table{}
	}

	sheets, err := buildSummaries(ds.Table, interactions)
	if err != nil {
		return nil, err
	}
	if res.Summaries, err = exportSummaries(paths, logger, opts.export, sheets); err != nil {
		return nil, err
	}

	if opts.charts {
		renderer := visualization.NewRenderer(logger)
		if res.Charts, err = renderer.RenderAll(ctx, ds.Table, paths.ChartsDir, visualization.DefaultRecipeCharts()); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	if res.RunLog, err = csvWriter.AppendToCSV(runLogFile, runLogHeader, [][]string{{
		runID,
		start.UTC().Format(time.RFC3339),
		cfg.Pipeline.RecipesFile,
		strconv.Itoa(ds.Table.NumRows()),
		strconv.Itoa(ds.Table.NumColumns()),
		strconv.Itoa(len(res.Summaries)),
		strconv.Itoa(len(res.Charts)),
		strconv.FormatInt(elapsed.Milliseconds(), 10),
	}}); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Recipe processing complete",
		slog.Int("rows", ds.Table.NumRows()),
		slog.Int("columns", ds.Table.NumColumns()),
		slog.Int("summaries", len(res.Summaries)),
		slog.Int("charts", len(res.Charts)),
		slog.Duration("duration", elapsed))
	return res, nil
}

// checkProject prints where the processor would read from
func checkProject(opts options, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}
	loader.New(paths, slog.New(slog.NewTextHandler(io.Discard, nil))).SanityCheck(w)
	return nil
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.root != "" {
		cfg.Paths.Root = opts.root
	}
	if opts.recipes != "" {
		cfg.Pipeline.RecipesFile = opts.recipes
	}
	if opts.dropNutrition {
		cfg.Pipeline.DropOriginalNutrition = true
	}
	return cfg, nil
}

// buildSummaries describes the numeric, categorical and list columns of
// the prepared recipes, plus ratings when interactions are loaded. Columns
// missing from the table are skipped.
func buildSummaries(recipes, interactions domain.Table) ([]exporter.NamedSheet, error) {
	var sheets []exporter.NamedSheet

	numeric := append([]string{domain.RecipeMinutes, domain.RecipeNSteps, domain.RecipeNIngredients},
		domain.NutritionColumns()...)
	numeric = append(numeric, domain.RecipeDescriptionLength)
	for _, col := range numeric {
		if !recipes.HasColumn(col) {
			continue
		}
		s, err := analytics.SummarizeNumeric(recipes, col, nil)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.NamedSheet{Name: col, Sheet: s})
	}

	for _, col := range []string{"year", "month", domain.RecipeContributor} {
		if !recipes.HasColumn(col) {
			continue
		}
		s, err := analytics.SummarizeCategorical(recipes, col, analytics.DefaultTopK, true, false)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.NamedSheet{Name: col, Sheet: s})
	}

	for _, col := range []string{domain.RecipeTags, domain.RecipeIngredients} {
		if !recipes.HasColumn(col) {
			continue
		}
		s, err := analytics.AnalyzeListColumn(recipes, col, analytics.DefaultTopK)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.NamedSheet{Name: col + "_elements", Sheet: s})
	}

	if interactions.HasColumn(domain.InteractionRating) {
		s, err := analytics.SummarizeCategorical(interactions, domain.InteractionRating, 0, true, false)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.NamedSheet{Name: domain.InteractionRating, Sheet: s})
	}

	return sheets, nil
}

func exportSummaries(paths *config.Paths, logger *slog.Logger, format string, sheets []exporter.NamedSheet) ([]string, error) {
	if format == exportXLSX {
		path, err := exporter.NewWorkbookExporter(paths, logger).ExportSummaries(summaryWorkbook, sheets)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	writer := exporter.NewCSVWriter(paths, logger)
	written := make([]string, 0, len(sheets))
	for _, s := range sheets {
		path, err := writer.WriteSheet(fmt.Sprintf("%s_%s.csv", summaryWorkbook, s.Name), s.Sheet)
		if err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
