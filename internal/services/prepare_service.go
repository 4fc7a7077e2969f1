package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/loader"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// PreparedDataset is a recipes table ready for exploration
type PreparedDataset struct {
	Table    domain.Table                     `json:"-"`
	Source   string                           `json:"source"`
	Report   *dataprocessing.ConversionReport `json:"report,omitempty"`
	Prepared time.Time                        `json:"prepared"`
}

// PrepareService runs the load, validate, convert and enrich sequence
// shared by the processor and the server
type PrepareService struct {
	loader   *loader.Loader
	pipeline *dataprocessing.Pipeline
	logger   *slog.Logger
}

// NewPrepareService creates a prepare service
func NewPrepareService(ld *loader.Loader, pipeline *dataprocessing.Pipeline, logger *slog.Logger) *PrepareService {
	if logger == nil {
		logger = slog.Default()
	}
	if pipeline == nil {
		pipeline = dataprocessing.NewPipeline(nil, logger, nil)
	}
	return &PrepareService{
		loader:   ld,
		pipeline: pipeline,
		logger:   logger.With(slog.String("service", "prepare")),
	}
}

// PrepareRecipes loads the raw recipes file, checks its columns, converts it
// and adds description_filled and description_length. An empty name means
// the default recipes file.
func (ps *PrepareService) PrepareRecipes(ctx context.Context, name string) (*PreparedDataset, error) {
	raw, err := ps.loader.LoadRecipes(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := loader.ValidateTable(raw, domain.RecipeColumns()); err != nil {
		return nil, err
	}

	converted, report, err := ps.pipeline.Run(ctx, raw)
	if err != nil {
		return nil, apperrors.NewConversionError("failed to convert recipes", err).
			WithContext("file", name)
	}

	enriched := dataprocessing.AddRecipeFeatures(dataprocessing.FillDescriptions(converted))
	if name == "" {
		name = config.DefaultRecipesFile
	}
	source := ps.loader.Paths().GetRawPath(name)

	ps.logger.InfoContext(ctx, "Recipes prepared",
		slog.String("source", source),
		slog.Int("rows", enriched.NumRows()),
		slog.Int("columns", enriched.NumColumns()))

	return &PreparedDataset{
		Table:    enriched,
		Source:   source,
		Report:   report,
		Prepared: time.Now(),
	}, nil
}

// LoadProcessed reads a workbook written by the processor, re-normalizing
// the default list columns
func (ps *PrepareService) LoadProcessed(ctx context.Context, name string) (*PreparedDataset, error) {
	t, err := ps.loader.LoadProcessedSafe(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	ps.logger.InfoContext(ctx, "Processed workbook loaded",
		slog.String("name", name),
		slog.Int("rows", t.NumRows()))
	return &PreparedDataset{Table: t, Source: name, Prepared: time.Now()}, nil
}
