package controller

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/dto"
)

type ApplyActionUseCase interface {
	Execute(ctx context.Context, devisNumber, action string) dto.ActionResult
}

type TokenVerifier interface {
	Verify(token, devisNumber, action string) error
}

var outcomeMessages = map[dto.ActionOutcome]string{
	dto.OutcomeApproved:         "Le devis a été accepté.",
	dto.OutcomeRejected:         "Le devis a été refusé.",
	dto.OutcomeNotFound:         "Devis introuvable.",
	dto.OutcomeAlreadyProcessed: "Ce devis a déjà été traité.",
	dto.OutcomeInvalidAction:    "Action invalide.",
	dto.OutcomeUpdateFailed:     "La mise à jour du devis a échoué.",
}

var outcomeStatus = map[dto.ActionOutcome]int{
	dto.OutcomeApproved:         http.StatusOK,
	dto.OutcomeRejected:         http.StatusOK,
	dto.OutcomeNotFound:         http.StatusNotFound,
	dto.OutcomeAlreadyProcessed: http.StatusConflict,
	dto.OutcomeInvalidAction:    http.StatusBadRequest,
	dto.OutcomeUpdateFailed:     http.StatusInternalServerError,
}

// ActionController handles the approve and reject links sent to the
// operator. Recognised actions need a valid token before the store is read.
type ActionController struct {
	responder
	useCase      ApplyActionUseCase
	verifier     TokenVerifier
	dashboardURL string
	logger       *zap.Logger
}

func NewActionController(useCase ApplyActionUseCase, verifier TokenVerifier, dashboardURL string, logger *zap.Logger) *ActionController {
	return &ActionController{
		responder:    responder{logger: logger},
		useCase:      useCase,
		verifier:     verifier,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

func (c *ActionController) Apply(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	number := chi.URLParam(r, "devisNumber")
	action := r.URL.Query().Get("action")
	logger := c.logger.With(
		zap.String("traceId", traceID),
		zap.String("devisNumber", number),
		zap.String("action", action),
	)

	if action == dto.ActionApprove || action == dto.ActionReject {
		if err := c.verifier.Verify(r.URL.Query().Get("token"), number, action); err != nil {
			logger.Warn("action token rejected", zap.Error(err))
			c.handleUseCaseError(w, traceID, number, err, logger)
			return
		}
	}

	result := c.useCase.Execute(r.Context(), number, action)
	logger.Info("action processed", zap.String("outcome", string(result.Outcome)))

	if c.dashboardURL != "" {
		target, err := c.redirectURL(result)
		if err == nil {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		logger.Warn("invalid dashboard url, answering with JSON", zap.Error(err))
	}

	status, ok := outcomeStatus[result.Outcome]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.writeJSON(w, status, dto.ActionResponse{
		TraceID:       traceID,
		Outcome:       string(result.Outcome),
		DevisNumber:   result.DevisNumber,
		CurrentStatus: string(result.CurrentStatus),
		Message:       outcomeMessages[result.Outcome],
	})
}

func (c *ActionController) redirectURL(result dto.ActionResult) (string, error) {
	u, err := url.Parse(c.dashboardURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("devis", result.DevisNumber)
	q.Set("outcome", string(result.Outcome))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
