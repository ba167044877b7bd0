package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/domain"
	"devis/internal/dto"
)

type QueryUseCase interface {
	List(ctx context.Context) ([]domain.Quote, error)
	Stats(ctx context.Context) (domain.QuoteStats, error)
	Get(ctx context.Context, devisNumber string) (*domain.Quote, []domain.Signature, error)
}

// AdminController exposes the read-only dashboard views.
type AdminController struct {
	responder
	useCase QueryUseCase
	logger  *zap.Logger
}

func NewAdminController(useCase QueryUseCase, logger *zap.Logger) *AdminController {
	return &AdminController{
		responder: responder{logger: logger},
		useCase:   useCase,
		logger:    logger,
	}
}

func (c *AdminController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	quotes, err := c.useCase.List(r.Context())
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	c.writeJSON(w, http.StatusOK, dto.QuoteListResponse{TraceID: traceID, Quotes: quotes})
}

func (c *AdminController) Stats(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	stats, err := c.useCase.Stats(r.Context())
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.StatsResponse{TraceID: traceID, QuoteStats: stats})
}

func (c *AdminController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	number := chi.URLParam(r, "devisNumber")
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("devisNumber", number))

	quote, sigs, err := c.useCase.Get(r.Context(), number)
	if err != nil {
		c.handleUseCaseError(w, traceID, number, err, logger)
		return
	}
	if sigs == nil {
		sigs = []domain.Signature{}
	}

	c.writeJSON(w, http.StatusOK, dto.QuoteDetailResponse{TraceID: traceID, Quote: *quote, Signatures: sigs})
}
