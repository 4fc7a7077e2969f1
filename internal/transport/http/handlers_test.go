package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/analytics"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"
	apierrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/loader"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/services"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/shared/testutil"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/visualization"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// MockExploreService is a mock implementation of ExploreServiceInterface
type MockExploreService struct {
	mock.Mock
}

func (m *MockExploreService) Info(ctx context.Context) services.DatasetInfo {
	args := m.Called(ctx)
	return args.Get(0).(services.DatasetInfo)
}

func (m *MockExploreService) Columns(ctx context.Context) ([]services.ColumnInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ColumnInfo), args.Error(1)
}

func (m *MockExploreService) ColumnSummary(ctx context.Context, col, kind string, topK int) (any, error) {
	args := m.Called(ctx, col, kind, topK)
	return args.Get(0), args.Error(1)
}

func (m *MockExploreService) ListElements(ctx context.Context, col string, topK int) (*analytics.ListAnalysis, error) {
	args := m.Called(ctx, col, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.ListAnalysis), args.Error(1)
}

func (m *MockExploreService) Bivariate(ctx context.Context, q services.BivariateQuery) (any, error) {
	args := m.Called(ctx, q)
	return args.Get(0), args.Error(1)
}

func (m *MockExploreService) RenderChart(ctx context.Context, w io.Writer, spec visualization.ChartSpec) error {
	args := m.Called(ctx, w, spec)
	return args.Error(0)
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}

func newTestRouter(t *testing.T, explore ExploreServiceInterface, health HealthServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewRouter(RouterDeps{Explore: explore, Health: health, Logger: logger})
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus int
	}{
		{"ready", "ok", http.StatusOK},
		{"waiting for dataset", "loading", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := &MockHealthService{}
			health.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: tt.status, Version: "1.0.0"})

			rec := serve(newTestRouter(t, &MockExploreService{}, health), "/healthz")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.status, decode(t, rec)["status"])
			health.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	health := &MockHealthService{}
	health.On("Version").Return(map[string]interface{}{"version": "1.0.0"})

	rec := serve(newTestRouter(t, &MockExploreService{}, health), "/api/v1/version")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0", decode(t, rec)["version"])
}

func TestExploreHandler_ListColumns(t *testing.T) {
	tests := []struct {
		name       string
		cols       []services.ColumnInfo
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name: "success",
			cols: []services.ColumnInfo{
				{Name: "minutes", Type: domain.ColumnRaw},
				{Name: "calories", Type: domain.ColumnFloat, Absent: 1},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "dataset not loaded",
			err:        services.ErrDatasetNotLoaded,
			wantStatus: http.StatusConflict,
			wantType:   apierrors.TypeDatasetNotLoaded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explore := &MockExploreService{}
			if tt.err != nil {
				explore.On("Columns", mock.Anything).Return(nil, tt.err)
			} else {
				explore.On("Columns", mock.Anything).Return(tt.cols, nil)
			}

			rec := serve(newTestRouter(t, explore, &MockHealthService{}), "/api/v1/columns")

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, body["type"])
				assert.NotEmpty(t, body["trace_id"])
			} else {
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, float64(len(tt.cols)), body["count"])
			}
			explore.AssertExpectations(t)
		})
	}
}

func TestExploreHandler_ColumnSummary(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(m *MockExploreService)
		wantStatus int
		wantType   string
	}{
		{
			name:   "inferred kind",
			target: "/api/v1/columns/minutes/summary",
			setup: func(m *MockExploreService) {
				m.On("ColumnSummary", mock.Anything, "minutes", "", 0).
					Return(&analytics.NumericSummary{Column: "minutes", Count: 3}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "categorical with top_k",
			target: "/api/v1/columns/contributor_id/summary?kind=categorical&top_k=5",
			setup: func(m *MockExploreService) {
				m.On("ColumnSummary", mock.Anything, "contributor_id", "categorical", 5).
					Return(&analytics.CategoricalSummary{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid kind",
			target:     "/api/v1/columns/minutes/summary?kind=ordinal",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "non integer top_k",
			target:     "/api/v1/columns/minutes/summary?top_k=many",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "top_k out of range",
			target:     "/api/v1/columns/minutes/summary?top_k=5000",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:   "missing column",
			target: "/api/v1/columns/calories/summary",
			setup: func(m *MockExploreService) {
				m.On("ColumnSummary", mock.Anything, "calories", "", 0).
					Return(nil, analytics.ColumnNotFound("calories"))
			},
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeColumnNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explore := &MockExploreService{}
			if tt.setup != nil {
				tt.setup(explore)
			}

			rec := serve(newTestRouter(t, explore, &MockHealthService{}), tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, body["type"])
			} else {
				assert.Equal(t, "success", body["status"])
			}
			if tt.setup == nil {
				explore.AssertNotCalled(t, "ColumnSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			explore.AssertExpectations(t)
		})
	}
}

func TestExploreHandler_ListElementsDefaultTopK(t *testing.T) {
	explore := &MockExploreService{}
	explore.On("ListElements", mock.Anything, "ingredients", 10).Return(&analytics.ListAnalysis{
		Column:   "ingredients",
		Total:    7,
		Elements: []analytics.ElementFrequency{{Rank: 1}, {Rank: 2}},
	}, nil)

	rec := serve(newTestRouter(t, explore, &MockHealthService{}), "/api/v1/columns/ingredients/elements")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])
	explore.AssertExpectations(t)
}

func TestExploreHandler_Bivariate(t *testing.T) {
	explore := &MockExploreService{}
	want := services.BivariateQuery{X: "year", Y: "month", Kind: "catcat", TopK: 3, Normalize: "all"}
	explore.On("Bivariate", mock.Anything, want).Return(&analytics.Crosstab{}, nil)
	router := newTestRouter(t, explore, &MockHealthService{})

	rec := serve(router, "/api/v1/bivariate?x=year&y=month&kind=catcat&top_k=3&normalize=all")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "catcat", decode(t, rec)["kind"])

	invalid := []string{
		"/api/v1/bivariate?x=year&y=year&kind=catcat",
		"/api/v1/bivariate?x=year&kind=catcat",
		"/api/v1/bivariate?x=year&y=month&kind=pairs",
		"/api/v1/bivariate?x=year&y=month&kind=catcat&normalize=rows",
		"/api/v1/bivariate?x=../etc&y=month&kind=catcat",
	}
	for _, target := range invalid {
		rec := serve(router, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"], target)
	}

	explore.AssertNumberOfCalls(t, "Bivariate", 1)
}

func TestExploreHandler_NameCollision(t *testing.T) {
	explore := &MockExploreService{}
	explore.On("Columns", mock.Anything).Return(nil, &dataprocessing.NameCollisionError{Names: []string{"calories"}})

	rec := serve(newTestRouter(t, explore, &MockHealthService{}), "/api/v1/columns")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeNameCollision, decode(t, rec)["type"])
}

func TestChartHandler(t *testing.T) {
	explore := &MockExploreService{}
	explore.On("RenderChart", mock.Anything, mock.Anything, mock.MatchedBy(func(spec visualization.ChartSpec) bool {
		return spec.Kind == visualization.KindHistogram && spec.Column == "minutes" &&
			spec.Options.Bins == 30 && spec.Options.MaxX == 200
	})).Run(func(args mock.Arguments) {
		_, _ = args.Get(1).(io.Writer).Write(pngMagic)
	}).Return(nil)
	router := newTestRouter(t, explore, &MockHealthService{})

	rec := serve(router, "/api/v1/charts/histogram/minutes.png?bins=30&max_x=200")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngMagic, rec.Body.Bytes())

	tests := []struct {
		target string
		status int
	}{
		{"/api/v1/charts/pie/minutes.png", http.StatusBadRequest},
		{"/api/v1/charts/scatter/minutes.png", http.StatusBadRequest},
		{"/api/v1/charts/histogram/minutes.png?bins=x", http.StatusBadRequest},
		{"/api/v1/charts/histogram/minutes.png?max_x=-1", http.StatusBadRequest},
		{"/api/v1/charts/histogram/minutes.png?normalize=maybe", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := serve(router, tt.target)
		assert.Equal(t, tt.status, rec.Code, tt.target)
		assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"], tt.target)
	}
	explore.AssertNumberOfCalls(t, "RenderChart", 1)
}

func TestRouter_NotFound(t *testing.T) {
	rec := serve(newTestRouter(t, &MockExploreService{}, &MockHealthService{}), "/api/v2/columns")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
	assert.Equal(t, "/api/v2/columns", body["instance"])
}

func TestRouter_Metrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "eda_http_requests_total 1\n")
	})
	router := NewRouter(RouterDeps{
		Explore:        &MockExploreService{},
		Health:         &MockHealthService{},
		Logger:         logger,
		MetricsHandler: exporter,
	})

	rec := serve(router, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eda_http_requests_total")
}

func TestRouter_PreparedDataset(t *testing.T) {
	paths, err := config.PathsAt(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	testutil.WriteRawDataset(t, paths.RawDir)

	logger, _ := testutil.NewTestLogger(t)
	ds, err := services.NewPrepareService(loader.New(paths, logger), nil, logger).
		PrepareRecipes(context.Background(), "")
	require.NoError(t, err)

	explore := services.NewExploreService(logger)
	router := newTestRouter(t, explore, services.NewHealthService("test", explore, logger))

	rec := serve(router, "/api/v1/columns")
	assert.Equal(t, http.StatusConflict, rec.Code)

	explore.SetDataset(ds)

	rec = serve(router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, "/api/v1/columns/minutes/summary?kind=numeric")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
	assert.Equal(t, float64(130), data["max"])

	rec = serve(router, "/api/v1/columns/ingredients/elements?top_k=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(7), decode(t, rec)["data"].(map[string]interface{})["total"])

	rec = serve(router, "/api/v1/charts/histogram/minutes.png?bins=5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, pngMagic, rec.Body.Bytes()[:len(pngMagic)])
}
