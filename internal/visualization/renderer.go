package visualization

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/files"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Kind selects a chart
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
	KindBar       Kind = "bar"
	KindScatter   Kind = "scatter"
	KindBoxByCat  Kind = "box_by_cat"
	KindHeatmap   Kind = "heatmap"
)

// Kinds returns every chart kind
func Kinds() []Kind {
	return []Kind{KindHistogram, KindBox, KindBar, KindScatter, KindBoxByCat, KindHeatmap}
}

// Bivariate reports whether the chart needs a second column
func (k Kind) Bivariate() bool {
	return k == KindScatter || k == KindBoxByCat || k == KindHeatmap
}

// ParseKind validates a chart kind
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown chart kind %q", s)).
		WithContext("allowed", Kinds())
}

// ChartSpec describes one chart. Column is the x or numeric column; Other
// is the y or categorical column of bivariate charts. File defaults to
// <kind>_<column>[_<other>].png.
type ChartSpec struct {
	Kind    Kind    `yaml:"kind" json:"kind"`
	Column  string  `yaml:"column" json:"column"`
	Other   string  `yaml:"other,omitempty" json:"other,omitempty"`
	File    string  `yaml:"file,omitempty" json:"file,omitempty"`
	Options Options `yaml:"-" json:"-"`
}

// FileName returns the file the chart is written to
func (s ChartSpec) FileName() string {
	if s.File != "" {
		return s.File
	}
	parts := []string{string(s.Kind), s.Column}
	if s.Other != "" {
		parts = append(parts, s.Other)
	}
	return sanitize(strings.Join(parts, "_")) + ".png"
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		}
		return '_'
	}, name)
}

// Render writes the chart described by spec
func Render(w io.Writer, t domain.Table, spec ChartSpec) error {
	if spec.Kind.Bivariate() && spec.Other == "" {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s chart needs a second column", spec.Kind))
	}
	switch spec.Kind {
	case KindHistogram:
		return Histogram(w, t, spec.Column, spec.Options)
	case KindBox:
		return BoxPlot(w, t, spec.Column, spec.Options)
	case KindBar:
		return BarCategorical(w, t, spec.Column, spec.Options)
	case KindScatter:
		return ScatterNumNum(w, t, spec.Column, spec.Other, spec.Options)
	case KindBoxByCat:
		return BoxNumByCat(w, t, spec.Column, spec.Other, spec.Options)
	case KindHeatmap:
		return HeatmapCatCat(w, t, spec.Column, spec.Other, spec.Options)
	}
	_, err := ParseKind(string(spec.Kind))
	return err
}

// DefaultRecipeCharts is the chart set written by the processor
func DefaultRecipeCharts() []ChartSpec {
	return []ChartSpec{
		{Kind: KindHistogram, Column: domain.RecipeMinutes, Options: Options{MaxX: 300}},
		{Kind: KindBox, Column: domain.RecipeNSteps},
		{Kind: KindHistogram, Column: domain.NutritionCalories, Options: Options{MaxX: 2000}},
		{Kind: KindBar, Column: "year", Options: Options{Normalize: true}},
		{Kind: KindScatter, Column: domain.RecipeNSteps, Other: domain.RecipeMinutes, Options: Options{MaxX: 60}},
		{Kind: KindBoxByCat, Column: domain.RecipeMinutes, Other: "year", Options: Options{MaxX: 300}},
		{Kind: KindHeatmap, Column: "year", Other: "month"},
	}
}

// Renderer writes chart batches to a directory
type Renderer struct {
	logger  *slog.Logger
	workers int
}

// NewRenderer creates a renderer using one worker per CPU
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		logger:  logger.With(slog.String("component", "chart_renderer")),
		workers: runtime.NumCPU(),
	}
}

// RenderAll renders every spec into dir and returns the written paths in
// spec order. The first failure cancels the charts not started yet.
func (r *Renderer) RenderAll(ctx context.Context, t domain.Table, dir string, specs []ChartSpec) ([]string, error) {
	start := time.Now()
	paths := make([]string, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, spec := range specs {
		path := filepath.Join(dir, spec.FileName())
		paths[i] = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chartStart := time.Now()
			if err := files.WriteAtomic(path, func(w io.Writer) error {
				return Render(w, t, spec)
			}); err != nil {
				r.logger.ErrorContext(gctx, "Chart failed",
					slog.String("kind", string(spec.Kind)),
					slog.String("column", spec.Column),
					slog.String("error", err.Error()))
				return err
			}
			r.logger.DebugContext(gctx, "Chart written",
				slog.String("file", filepath.Base(path)),
				slog.Duration("duration", time.Since(chartStart)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Charts rendered",
		slog.Int("charts", len(specs)),
		slog.String("directory", dir),
		slog.Duration("duration", time.Since(start)))
	return paths, nil
}
