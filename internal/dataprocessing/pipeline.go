package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/infrastructure"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Stage names reported in StageStats and metrics
const (
	StageListColumns    = "list_columns"
	StageNutritionSplit = "nutrition_split"
	StageTemporal       = "temporal"
	StageCategory       = "category"
)

const tracerName = "github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"

// StageStats describes what one stage did to a table
type StageStats struct {
	Stage          string        `json:"stage"`
	DegradedCells  int           `json:"degraded_cells"`
	MissingColumns []string      `json:"missing_columns,omitempty"`
	ColumnsAdded   []string      `json:"columns_added,omitempty"`
	Skipped        bool          `json:"skipped,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// ConversionReport summarizes a pipeline run
type ConversionReport struct {
	Rows          int           `json:"rows"`
	InputColumns  int           `json:"input_columns"`
	OutputColumns int           `json:"output_columns"`
	Stages        []StageStats  `json:"stages"`
	Duration      time.Duration `json:"duration"`
}

// DegradedCells returns the number of cells turned absent across all stages
func (r *ConversionReport) DegradedCells() int {
	n := 0
	for _, s := range r.Stages {
		n += s.DegradedCells
	}
	return n
}

// ColumnsAdded returns the derived columns in the order they were appended
func (r *ConversionReport) ColumnsAdded() []string {
	var out []string
	for _, s := range r.Stages {
		out = append(out, s.ColumnsAdded...)
	}
	return out
}

// RecipeConversionConfig declares which columns play which role in the
// conversion. Treat it as immutable once built.
type RecipeConversionConfig struct {
	ListLikeColumns       []string
	NutritionColumn       string
	NutritionOutputs      []string
	TemporalColumn        string
	AddTemporalParts      bool
	TemporalParts         []string
	ContributorColumn     string
	DropOriginalNutrition bool
}

// DefaultConfig returns the standard recipe conversion
func DefaultConfig() *RecipeConversionConfig {
	return &RecipeConversionConfig{
		ListLikeColumns:   domain.ListLikeColumns(),
		NutritionColumn:   domain.RecipeNutrition,
		NutritionOutputs:  domain.NutritionColumns(),
		TemporalColumn:    domain.RecipeSubmitted,
		AddTemporalParts:  true,
		TemporalParts:     []string{PartYear, PartMonth},
		ContributorColumn: domain.RecipeContributor,
	}
}

// ConfigFromSettings builds a conversion config from the pipeline section
// of the application config. Empty fields keep their defaults.
func ConfigFromSettings(s config.PipelineConfig) *RecipeConversionConfig {
	cfg := DefaultConfig()
	if len(s.ListLikeColumns) > 0 {
		cfg.ListLikeColumns = append([]string(nil), s.ListLikeColumns...)
	}
	if s.NutritionColumn != "" {
		cfg.NutritionColumn = s.NutritionColumn
	}
	if len(s.NutritionOutputs) > 0 {
		cfg.NutritionOutputs = append([]string(nil), s.NutritionOutputs...)
	}
	if s.TemporalColumn != "" {
		cfg.TemporalColumn = s.TemporalColumn
	}
	cfg.AddTemporalParts = s.AddTemporalParts
	if len(s.TemporalParts) > 0 {
		cfg.TemporalParts = append([]string(nil), s.TemporalParts...)
	}
	if s.ContributorColumn != "" {
		cfg.ContributorColumn = s.ContributorColumn
	}
	cfg.DropOriginalNutrition = s.DropOriginalNutrition
	return cfg
}

func (c *RecipeConversionConfig) splitOptions() SplitOptions {
	return SplitOptions{
		Source:       c.NutritionColumn,
		Outputs:      c.NutritionOutputs,
		DropOriginal: c.DropOriginalNutrition,
	}
}

func (c *RecipeConversionConfig) temporalOptions() TemporalOptions {
	return TemporalOptions{
		Source:   c.TemporalColumn,
		AddParts: c.AddTemporalParts,
		Parts:    c.TemporalParts,
	}
}

// ConvertRecipesForUnivariate applies the list parser, nutrition splitter,
// temporal converter and category caster in that order. A nil cfg uses
// DefaultConfig. The input table is not modified. The only error is a
// *NameCollisionError from the nutrition split; a table whose nutrition
// outputs all exist already is treated as split, so the conversion can be
// re-run on its own output.
func ConvertRecipesForUnivariate(t domain.Table, cfg *RecipeConversionConfig) (domain.Table, error) {
	out, _, err := runStages(t, cfg, nil)
	return out, err
}

type stageHook func(stats StageStats)

func runStages(t domain.Table, cfg *RecipeConversionConfig, hook stageHook) (domain.Table, []StageStats, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var all []StageStats
	record := func(stats StageStats, start time.Time) {
		stats.Duration = time.Since(start)
		all = append(all, stats)
		if hook != nil {
			hook(stats)
		}
	}

	start := time.Now()
	out, stats := convertListLikeColumns(t, cfg.ListLikeColumns)
	record(stats, start)

	start = time.Now()
	opts := cfg.splitOptions().normalized()
	switch {
	case !out.HasColumn(opts.Source):
		record(StageStats{Stage: StageNutritionSplit, Skipped: true, MissingColumns: []string{opts.Source}}, start)
	case alreadySplit(out, opts.Outputs):
		record(StageStats{Stage: StageNutritionSplit, Skipped: true}, start)
	default:
		var err error
		out, stats, err = splitNutritionColumns(out, opts)
		record(stats, start)
		if err != nil {
			return t.Clone(), all, err
		}
	}

	start = time.Now()
	out, stats = convertTemporalColumns(out, cfg.temporalOptions())
	record(stats, start)

	start = time.Now()
	out, stats = convertToCategory(out, cfg.ContributorColumn)
	record(stats, start)

	return out, all, nil
}

func alreadySplit(t domain.Table, outputs []string) bool {
	for _, name := range outputs {
		if !t.HasColumn(name) {
			return false
		}
	}
	return len(outputs) > 0
}

// Pipeline runs the recipe conversion with logging, tracing and metrics
type Pipeline struct {
	config  *RecipeConversionConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// NewPipeline creates a pipeline. A nil cfg uses DefaultConfig, a nil
// logger uses slog.Default and nil metrics disables recording.
func NewPipeline(cfg *RecipeConversionConfig, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		config:  cfg,
		logger:  infrastructure.WithComponent(logger, "conversion_pipeline"),
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// Config returns the conversion config the pipeline was built with
func (p *Pipeline) Config() *RecipeConversionConfig {
	return p.config
}

// Run converts t and reports what each stage did
func (p *Pipeline) Run(ctx context.Context, t domain.Table) (domain.Table, *ConversionReport, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.convert_recipes",
		trace.WithAttributes(
			attribute.Int("table.rows", t.NumRows()),
			attribute.Int("table.columns", t.NumColumns()),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return t.Clone(), nil, err
	}

	logger := p.logger
	logger.InfoContext(ctx, "Starting recipe conversion",
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))

	started := time.Now()
	out, stages, err := runStages(t, p.config, func(stats StageStats) {
		span.AddEvent("stage.completed", trace.WithAttributes(
			attribute.String("stage", stats.Stage),
			attribute.Int("degraded_cells", stats.DegradedCells),
			attribute.Bool("skipped", stats.Skipped),
		))
		infrastructure.RecordStageMetrics(ctx, p.metrics, stats.Stage, stats.Duration, stats.DegradedCells)

		attrs := []any{
			slog.String("stage", stats.Stage),
			slog.Int("degraded_cells", stats.DegradedCells),
			slog.Duration("duration", stats.Duration),
		}
		if len(stats.MissingColumns) > 0 {
			attrs = append(attrs, slog.Any("missing_columns", stats.MissingColumns))
		}
		if stats.Skipped {
			attrs = append(attrs, slog.Bool("skipped", true))
		}
		logger.DebugContext(ctx, "Stage completed", attrs...)
	})

	report := &ConversionReport{
		Rows:          t.NumRows(),
		InputColumns:  t.NumColumns(),
		OutputColumns: out.NumColumns(),
		Stages:        stages,
		Duration:      time.Since(started),
	}
	infrastructure.RecordPipelineRun(ctx, p.metrics, t.NumRows(), report.Duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var collision *NameCollisionError
		if errors.As(err, &collision) {
			logger.ErrorContext(ctx, "Nutrition split would overwrite existing columns",
				slog.Any("columns", collision.Names))
		} else {
			logger.ErrorContext(ctx, "Recipe conversion failed", slog.String("error", err.Error()))
		}
		return out, report, err
	}

	logger.InfoContext(ctx, "Recipe conversion complete",
		slog.Int("rows", report.Rows),
		slog.Int("output_columns", report.OutputColumns),
		slog.Int("degraded_cells", report.DegradedCells()),
		slog.Any("columns_added", report.ColumnsAdded()),
		slog.Duration("duration", report.Duration))
	return out, report, nil
}
