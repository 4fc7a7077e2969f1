package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	edamw "github.com/abdillahiomardjamaainan/EDA-Project/internal/middleware"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/visualization"
)

type chartQuery struct {
	Column string  `query:"column" validate:"column"`
	Other  string  `query:"other" validate:"omitempty,column"`
	Bins   int     `query:"bins" validate:"gte=0,lte=500"`
	MaxX   float64 `query:"max_x" validate:"gte=0"`
	TopK   int     `query:"top_k" validate:"gte=0,lte=1000"`
	Title  string  `query:"title" validate:"max=200"`
}

// ChartHandler renders PNG charts of the loaded dataset
type ChartHandler struct {
	service      ExploreServiceInterface
	validator    *edamw.QueryValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ExploreServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &ChartHandler{
		service:      service,
		validator:    edamw.NewQueryValidator(logger),
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}/{column}.png", h.GetChart)
	return r
}

// GetChart handles GET /api/v1/charts/{kind}/{column}.png. The image is
// rendered to memory first so failures still produce a problem response.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind, err := visualization.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	spec, err := h.parseSpec(r, kind)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderChart(r.Context(), &buf, spec); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "chart served",
		slog.String("kind", string(kind)),
		slog.String("column", spec.Column),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ChartHandler) parseSpec(r *http.Request, kind visualization.Kind) (visualization.ChartSpec, error) {
	query := r.URL.Query()

	bins, err := h.validator.Int(r, "bins", 0)
	if err != nil {
		return visualization.ChartSpec{}, err
	}
	topK, err := h.validator.Int(r, "top_k", 0)
	if err != nil {
		return visualization.ChartSpec{}, err
	}
	normalize, err := h.validator.Bool(r, "normalize", false)
	if err != nil {
		return visualization.ChartSpec{}, err
	}
	var maxX float64
	if raw := strings.TrimSpace(query.Get("max_x")); raw != "" {
		maxX, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return visualization.ChartSpec{}, apierrors.ErrValidation("max_x", "max_x must be a number")
		}
	}

	q := chartQuery{
		Column: chi.URLParam(r, "column"),
		Other:  query.Get("other"),
		Bins:   bins,
		MaxX:   maxX,
		TopK:   topK,
		Title:  query.Get("title"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		return visualization.ChartSpec{}, err
	}
	if kind.Bivariate() && q.Other == "" {
		return visualization.ChartSpec{}, apierrors.ErrValidation("other", fmt.Sprintf("%s chart needs a second column", kind))
	}

	return visualization.ChartSpec{
		Kind:   kind,
		Column: q.Column,
		Other:  q.Other,
		Options: visualization.Options{
			Title:     q.Title,
			Bins:      q.Bins,
			MaxX:      q.MaxX,
			TopK:      q.TopK,
			Normalize: normalize,
		},
	}, nil
}

func (h *ChartHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
