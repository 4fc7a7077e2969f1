package http

import (
	"context"
	"io"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/analytics"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/services"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/visualization"
)

// ExploreServiceInterface defines the queries served over the loaded dataset
type ExploreServiceInterface interface {
	Info(ctx context.Context) services.DatasetInfo
	Columns(ctx context.Context) ([]services.ColumnInfo, error)
	ColumnSummary(ctx context.Context, col, kind string, topK int) (any, error)
	ListElements(ctx context.Context, col string, topK int) (*analytics.ListAnalysis, error)
	Bivariate(ctx context.Context, q services.BivariateQuery) (any, error)
	RenderChart(ctx context.Context, w io.Writer, spec visualization.ChartSpec) error
}

// HealthServiceInterface defines the health and version reports
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ ExploreServiceInterface = (*services.ExploreService)(nil)
	_ HealthServiceInterface  = (*services.HealthService)(nil)
)
