package controller

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/domain"
	"devis/internal/dto"
	apperrors "devis/internal/errors"
	"devis/internal/pricing"
)

const maxEstimateBodyBytes = 64 << 10

type PricingUseCase interface {
	Catalog() *pricing.Catalog
	Estimate(cfg domain.QuoteConfiguration) (*pricing.Estimate, error)
	PreviewDocument(cfg domain.QuoteConfiguration) ([]byte, error)
}

type PricingController struct {
	responder
	useCase PricingUseCase
	logger  *zap.Logger
}

func NewPricingController(useCase PricingUseCase, logger *zap.Logger) *PricingController {
	return &PricingController{
		responder: responder{logger: logger},
		useCase:   useCase,
		logger:    logger,
	}
}

func (c *PricingController) Catalog(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, dto.CatalogResponse{
		TraceID: uuid.New().String(),
		Catalog: c.useCase.Catalog(),
	})
}

func (c *PricingController) Estimate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	req, ok := c.decode(w, r, traceID, logger)
	if !ok {
		return
	}

	est, err := c.useCase.Estimate(req.Configuration())
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.EstimateResponse{TraceID: traceID, Estimate: *est})
}

// Document streams a preview PDF of an unsubmitted configuration.
func (c *PricingController) Document(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	req, ok := c.decode(w, r, traceID, logger)
	if !ok {
		return
	}

	pdf, err := c.useCase.PreviewDocument(req.Configuration())
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="devis-apercu.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.Warn("writing pdf", zap.Error(err))
	}
}

func (c *PricingController) decode(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (dto.EstimateRequest, bool) {
	var req dto.EstimateRequest
	if err := decodeJSON(w, r, maxEstimateBodyBytes, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return req, false
	}
	return req, true
}
