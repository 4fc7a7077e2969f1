package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"
	apierrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	edamw "github.com/abdillahiomardjamaainan/EDA-Project/internal/middleware"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/services"
)

type summaryQuery struct {
	Column string `query:"column" validate:"column"`
	Kind   string `query:"kind" validate:"omitempty,oneof=numeric categorical"`
	TopK   int    `query:"top_k" validate:"gte=0,lte=1000"`
}

type elementsQuery struct {
	Column string `query:"column" validate:"column"`
	TopK   int    `query:"top_k" validate:"gte=0,lte=1000"`
}

type bivariateQuery struct {
	X         string `query:"x" validate:"required,column"`
	Y         string `query:"y" validate:"required,column,nefield=X"`
	Kind      string `query:"kind" validate:"required,oneof=numnum numcat catcat"`
	TopK      int    `query:"top_k" validate:"gte=0,lte=1000"`
	Normalize string `query:"normalize" validate:"omitempty,oneof=index columns all"`
}

// ExploreHandler serves descriptive statistics over the loaded dataset
type ExploreHandler struct {
	service      ExploreServiceInterface
	validator    *edamw.QueryValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExploreHandler creates a new explore handler with RFC 7807 error handling
func NewExploreHandler(service ExploreServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExploreHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &ExploreHandler{
		service:      service,
		validator:    edamw.NewQueryValidator(logger),
		logger:       logger.With(slog.String("component", "explore_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the exploration routes
func (h *ExploreHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dataset", h.GetDataset)
	r.Get("/columns", h.ListColumns)
	r.Route("/columns/{column}", func(r chi.Router) {
		r.Get("/summary", h.GetColumnSummary)
		r.Get("/elements", h.GetListElements)
	})
	r.Get("/bivariate", h.GetBivariate)

	return r
}

// GetDataset handles GET /api/v1/dataset
func (h *ExploreHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Info(r.Context()),
	})
}

// ListColumns handles GET /api/v1/columns
func (h *ExploreHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.service.Columns(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   cols,
		"count":  len(cols),
	})
}

// GetColumnSummary handles GET /api/v1/columns/{column}/summary
func (h *ExploreHandler) GetColumnSummary(w http.ResponseWriter, r *http.Request) {
	topK, err := h.validator.Int(r, "top_k", 0)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	q := summaryQuery{
		Column: chi.URLParam(r, "column"),
		Kind:   r.URL.Query().Get("kind"),
		TopK:   topK,
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "summarizing column",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("column", q.Column),
		slog.String("kind", q.Kind))

	summary, err := h.service.ColumnSummary(r.Context(), q.Column, q.Kind, q.TopK)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"column": q.Column,
		"data":   summary,
	})
}

// GetListElements handles GET /api/v1/columns/{column}/elements
func (h *ExploreHandler) GetListElements(w http.ResponseWriter, r *http.Request) {
	topK, err := h.validator.Int(r, "top_k", 10)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	q := elementsQuery{Column: chi.URLParam(r, "column"), TopK: topK}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.handleError(w, r, err)
		return
	}

	analysis, err := h.service.ListElements(r.Context(), q.Column, q.TopK)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"column": q.Column,
		"data":   analysis,
		"count":  len(analysis.Elements),
	})
}

// GetBivariate handles GET /api/v1/bivariate
func (h *ExploreHandler) GetBivariate(w http.ResponseWriter, r *http.Request) {
	topK, err := h.validator.Int(r, "top_k", 0)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	query := r.URL.Query()
	q := bivariateQuery{
		X:         query.Get("x"),
		Y:         query.Get("y"),
		Kind:      query.Get("kind"),
		TopK:      topK,
		Normalize: query.Get("normalize"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.handleError(w, r, err)
		return
	}

	result, err := h.service.Bivariate(r.Context(), services.BivariateQuery{
		X:         q.X,
		Y:         q.Y,
		Kind:      q.Kind,
		TopK:      q.TopK,
		Normalize: q.Normalize,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"kind":   q.Kind,
		"data":   result,
	})
}

func (h *ExploreHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}

// mapServiceError turns service and pipeline errors into API errors with
// dataset-specific problem types
func mapServiceError(err error) error {
	if errors.Is(err, services.ErrDatasetNotLoaded) {
		return apierrors.ErrDatasetNotLoaded
	}

	var collision *dataprocessing.NameCollisionError
	if errors.As(err, &collision) {
		return apierrors.NameCollisionError(collision.Names)
	}

	var appErr *apierrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeNotFound {
		if col, ok := appErr.Context["column"].(string); ok {
			return apierrors.ColumnNotFoundError(col)
		}
	}
	return err
}
