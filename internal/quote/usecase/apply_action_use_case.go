package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"devis/internal/document"
	"devis/internal/domain"
	"devis/internal/dto"
	apperrors "devis/internal/errors"
	"devis/internal/notification"
)

// ApplyActionUseCase applies an approve or reject decision to a pending
// quote. A decision sticks once recorded; the status email is best effort.
type ApplyActionUseCase struct {
	repo      QuoteRepository
	templates TemplateRenderer
	notifier  Notifier
	settings  Settings
	logger    *zap.Logger
}

func NewApplyActionUseCase(
	repo QuoteRepository,
	templates TemplateRenderer,
	notifier Notifier,
	settings Settings,
	logger *zap.Logger,
) *ApplyActionUseCase {
	return &ApplyActionUseCase{
		repo:      repo,
		templates: templates,
		notifier:  notifier,
		settings:  settings,
		logger:    logger,
	}
}

func (uc *ApplyActionUseCase) Execute(ctx context.Context, number, action string) dto.ActionResult {
	logger := uc.logger.With(zap.String("devisNumber", number), zap.String("action", action))
	result := dto.ActionResult{DevisNumber: number}

	quote, err := uc.repo.FindByNumber(ctx, number)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			result.Outcome = dto.OutcomeNotFound
			return result
		}
		logger.Error("devis lookup failed", zap.String("operation", "find"), zap.Error(err))
		result.Outcome = dto.OutcomeUpdateFailed
		return result
	}

	if quote.Status != domain.QuoteStatusPending {
		result.Outcome = dto.OutcomeAlreadyProcessed
		result.CurrentStatus = quote.Status
		return result
	}

	var target domain.QuoteStatus
	switch action {
	case dto.ActionApprove:
		target = domain.QuoteStatusApproved
	case dto.ActionReject:
		target = domain.QuoteStatusRejected
	default:
		result.Outcome = dto.OutcomeInvalidAction
		result.CurrentStatus = quote.Status
		return result
	}

	updated, err := uc.repo.UpdateStatus(ctx, number, target)
	if err != nil {
		if ce, ok := apperrors.IsConflictError(err); ok {
			result.Outcome = dto.OutcomeAlreadyProcessed
			result.CurrentStatus = domain.QuoteStatus(ce.CurrentStatus)
			return result
		}
		if _, ok := apperrors.IsNotFoundError(err); ok {
			result.Outcome = dto.OutcomeNotFound
			return result
		}
		logger.Error("status update failed", zap.String("operation", "update status"), zap.Error(err))
		result.Outcome = dto.OutcomeUpdateFailed
		return result
	}

	logger.Info("devis status changed", zap.String("status", string(updated.Status)))

	if err := uc.notifyClient(ctx, updated); err != nil {
		logger.Warn("status notification failed", deliveryFields("status notification", err)...)
	}

	result.CurrentStatus = updated.Status
	if target == domain.QuoteStatusApproved {
		result.Outcome = dto.OutcomeApproved
	} else {
		result.Outcome = dto.OutcomeRejected
	}
	return result
}

func (uc *ApplyActionUseCase) notifyClient(ctx context.Context, quote *domain.Quote) error {
	body, err := uc.templates.Render(document.TemplateStatus, document.StatusEmail{
		Company:     uc.settings.Company,
		Client:      quote.ClientInfo,
		DevisNumber: quote.DevisNumber,
		Status:      quote.Status,
		Total:       quote.Total,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Votre devis n° %s a été accepté", quote.DevisNumber)
	if quote.Status == domain.QuoteStatusRejected {
		subject = fmt.Sprintf("Votre devis n° %s", quote.DevisNumber)
	}

	_, err = uc.notifier.Send(ctx, notification.Message{
		From:    uc.settings.MailFrom,
		To:      []string{quote.ClientInfo.Email},
		Cc:      []string{uc.settings.OperatorEmail},
		Subject: subject,
		Body:    body,
	})
	return err
}
