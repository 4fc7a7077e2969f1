package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/analytics"
	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/visualization"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Summary kinds accepted by ColumnSummary
const (
	SummaryNumeric     = "numeric"
	SummaryCategorical = "categorical"
)

// Bivariate kinds accepted by Bivariate
const (
	BivariateNumNum = "numnum"
	BivariateNumCat = "numcat"
	BivariateCatCat = "catcat"
)

// ColumnInfo describes one column of the loaded table
type ColumnInfo struct {
	Name   string            `json:"name"`
	Type   domain.ColumnType `json:"type"`
	Absent int               `json:"absent"`
}

// DatasetInfo describes the loaded table
type DatasetInfo struct {
	Loaded   bool      `json:"loaded"`
	Source   string    `json:"source,omitempty"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	Prepared time.Time `json:"prepared"`
}

// BivariateQuery selects two columns and how to relate them
type BivariateQuery struct {
	X         string
	Y         string
	Kind      string
	TopK      int
	Normalize string
}

// ExploreService answers descriptive queries over one in-memory table.
// The table is replaced as a whole, so readers always see a consistent
// snapshot.
type ExploreService struct {
	mu      sync.RWMutex
	dataset *PreparedDataset
	logger  *slog.Logger
}

// NewExploreService creates a service without a dataset
func NewExploreService(logger *slog.Logger) *ExploreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExploreService{logger: logger.With(slog.String("service", "explore"))}
}

// SetDataset makes ds the table every query runs against
func (s *ExploreService) SetDataset(ds *PreparedDataset) {
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	if ds != nil {
		s.logger.Info("Dataset installed",
			slog.String("source", ds.Source),
			slog.Int("rows", ds.Table.NumRows()),
			slog.Int("columns", ds.Table.NumColumns()))
	}
}

func (s *ExploreService) snapshot() (*PreparedDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.dataset, nil
}

// Info reports what is loaded
func (s *ExploreService) Info(ctx context.Context) DatasetInfo {
	ds, err := s.snapshot()
	if err != nil {
		return DatasetInfo{}
	}
	return DatasetInfo{
		Loaded:   true,
		Source:   ds.Source,
		Rows:     ds.Table.NumRows(),
		Columns:  ds.Table.NumColumns(),
		Prepared: ds.Prepared,
	}
}

// Columns lists the columns of the loaded table in order
func (s *ExploreService) Columns(ctx context.Context) ([]ColumnInfo, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cols := ds.Table.Columns()
	out := make([]ColumnInfo, len(cols))
	for i, c := range cols {
		out[i] = ColumnInfo{Name: c.Name, Type: c.Type, Absent: c.AbsentCount()}
	}
	return out, nil
}

// ColumnSummary describes col. An empty kind is inferred from the column.
func (s *ExploreService) ColumnSummary(ctx context.Context, col, kind string, topK int) (any, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = inferSummaryKind(ds.Table, col)
	}

	s.logger.DebugContext(ctx, "Summarizing column",
		slog.String("column", col),
		slog.String("kind", kind),
		slog.Int("top_k", topK))

	switch kind {
	case SummaryNumeric:
		return analytics.SummarizeNumeric(ds.Table, col, nil)
	case SummaryCategorical:
		return analytics.SummarizeCategorical(ds.Table, col, topK, true, false)
	}
	return nil, invalidChoice("kind", kind, SummaryNumeric, SummaryCategorical)
}

// inferSummaryKind treats float and int columns as numeric, and raw
// columns whose present cells all parse as numbers.
func inferSummaryKind(t domain.Table, col string) string {
	c, ok := t.Column(col)
	if !ok {
		return SummaryCategorical
	}
	switch c.Type {
	case domain.ColumnFloat, domain.ColumnInt:
		return SummaryNumeric
	case domain.ColumnRaw:
		present := 0
		for _, v := range c.Values {
			if v.IsAbsent() {
				continue
			}
			if _, ok := analytics.ToFloat(v); !ok {
				return SummaryCategorical
			}
			present++
		}
		if present > 0 {
			return SummaryNumeric
		}
	}
	return SummaryCategorical
}

// ListElements ranks the elements of a list column
func (s *ExploreService) ListElements(ctx context.Context, col string, topK int) (*analytics.ListAnalysis, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return analytics.AnalyzeListColumn(ds.Table, col, topK)
}

// Bivariate relates two columns according to q.Kind
func (s *ExploreService) Bivariate(ctx context.Context, q BivariateQuery) (any, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Bivariate summary",
		slog.String("x", q.X),
		slog.String("y", q.Y),
		slog.String("kind", q.Kind))

	switch q.Kind {
	case BivariateNumNum:
		return analytics.SummarizeNumNum(ds.Table, q.X, q.Y)
	case BivariateNumCat:
		return analytics.SummarizeNumCat(ds.Table, q.X, q.Y, q.TopK)
	case BivariateCatCat:
		return analytics.SummarizeCatCat(ds.Table, q.X, q.Y, q.TopK, q.Normalize)
	}
	return nil, invalidChoice("kind", q.Kind, BivariateNumNum, BivariateNumCat, BivariateCatCat)
}

// RenderChart writes the PNG described by spec to w
func (s *ExploreService) RenderChart(ctx context.Context, w io.Writer, spec visualization.ChartSpec) error {
	ds, err := s.snapshot()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if err := visualization.Render(w, ds.Table, spec); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Chart rendered",
		slog.String("kind", string(spec.Kind)),
		slog.String("column", spec.Column),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func invalidChoice(field, got string, allowed ...string) error {
	return apperrors.NewAppValidationError(fmt.Sprintf("invalid %s %q", field, got)).
		WithContext("allowed", allowed)
}
