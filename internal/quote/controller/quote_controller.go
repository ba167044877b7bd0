package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/domain"
	"devis/internal/dto"
	apperrors "devis/internal/errors"
)

const (
	maxQuoteBodyBytes     = 8 << 20
	maxSignatureBodyBytes = 4 << 20
)

type SubmitQuoteUseCase interface {
	Execute(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error)
}

type RecordSignatureUseCase interface {
	Execute(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error)
}

// QuoteController serves the public intake and signature endpoints.
type QuoteController struct {
	responder
	submit    SubmitQuoteUseCase
	signature RecordSignatureUseCase
	logger    *zap.Logger
}

func NewQuoteController(submit SubmitQuoteUseCase, signature RecordSignatureUseCase, logger *zap.Logger) *QuoteController {
	return &QuoteController{
		responder: responder{logger: logger},
		submit:    submit,
		signature: signature,
		logger:    logger,
	}
}

func (c *QuoteController) Submit(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SubmitQuoteRequest
	if err := decodeJSON(w, r, maxQuoteBodyBytes, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := c.submit.Execute(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.SubmitQuoteResponse{
		TraceID:        traceID,
		DevisNumber:    result.DevisNumber,
		Total:          result.FormattedTotal,
		MaintenanceFee: result.MaintenanceFee,
		Persisted:      result.Persisted,
	})
}

func (c *QuoteController) Sign(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	number := chi.URLParam(r, "devisNumber")
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("devisNumber", number))

	if !domain.ValidDevisNumber(number) {
		c.writeValidationError(w, traceID, "invalid devisNumber", apperrors.ValidationDetail{
			Field:   "devisNumber",
			Message: "devisNumber must match YYYY-MMDD-NNN",
		})
		return
	}

	var req dto.SignatureRequest
	if err := decodeJSON(w, r, maxSignatureBodyBytes, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	in := dto.RecordSignatureInput{
		DevisNumber: number,
		Image:       req.Signature,
		ClientInfo:  req.ClientInfo,
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
	}
	if req.SignedAt != nil {
		in.SignedAt = req.SignedAt.UTC()
	}

	sig, err := c.signature.Execute(r.Context(), in)
	if err != nil {
		c.handleUseCaseError(w, traceID, number, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.SignatureResponse{
		TraceID:     traceID,
		SignatureID: sig.ID,
		DevisNumber: sig.DevisNumber,
		RecordedAt:  sig.RecordedAt,
	})
}
