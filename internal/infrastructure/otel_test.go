package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelConfigFromSettings(t *testing.T) {
	settings := config.Default().Telemetry
	settings.TraceExporter = "stdout"
	settings.SampleRatio = 0.5

	cfg := OTelConfigFromSettings(settings)
	assert.Equal(t, settings.ServiceName, cfg.ServiceName)
	assert.Equal(t, ServiceVersion, cfg.ServiceVersion)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, 0.5, cfg.SampleRatio)
}

func TestOTelInitialization(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(shutdownCtx))
}

func TestOTelDisabledExporters(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "statsd"
	_, err := InitializeOTel(cfg, quietLogger())
	assert.Error(t, err)

	cfg = DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"
	_, err = InitializeOTel(cfg, quietLogger())
	assert.Error(t, err)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	RecordPipelineRun(context.Background(), metrics, 10, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pipeline_runs_total")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestPipelineMetricsRecording(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	RecordPipelineRun(ctx, metrics, 100, time.Second, nil)
	RecordPipelineRun(ctx, metrics, 50, time.Second, errors.New("collision"))
	RecordStageMetrics(ctx, metrics, "temporal", time.Millisecond, 3)
	RecordStageMetrics(ctx, metrics, "category", time.Millisecond, 0)
	RecordHTTPRequest(ctx, metrics, http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, got["pipeline_runs_total"]))
	assert.Equal(t, int64(150), sumValue(t, got["pipeline_rows_processed_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["pipeline_errors_total"]))
	assert.Equal(t, int64(3), sumValue(t, got["pipeline_degraded_cells_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["http_requests_total"]))
	assert.Contains(t, got, "pipeline_stage_duration_seconds")
}

func TestRecordingWithNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordPipelineRun(ctx, nil, 1, time.Second, nil)
		RecordStageMetrics(ctx, nil, "x", time.Second, 1)
		RecordHTTPRequest(ctx, nil, "GET", "/", 200, time.Second)
		RecordError(ctx, errors.New("no span"))
	})
}
