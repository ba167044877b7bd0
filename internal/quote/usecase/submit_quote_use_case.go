package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/document"
	"devis/internal/domain"
	"devis/internal/dto"
	apperrors "devis/internal/errors"
	"devis/internal/notification"
	"devis/internal/pricing"
)

const maxClientDocumentBytes = 5 << 20

// SubmitQuoteUseCase turns a submitted configuration into a priced, stored
// and notified quote. The operator notification is mandatory; storage and
// the client confirmation are best effort.
type SubmitQuoteUseCase struct {
	repo      QuoteRepository
	engine    *pricing.Engine
	validator *ConfigurationValidator
	templates TemplateRenderer
	pdf       PDFRenderer
	links     LinkSigner
	notifier  Notifier
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

func NewSubmitQuoteUseCase(
	repo QuoteRepository,
	engine *pricing.Engine,
	validator *ConfigurationValidator,
	templates TemplateRenderer,
	pdf PDFRenderer,
	links LinkSigner,
	notifier Notifier,
	settings Settings,
	logger *zap.Logger,
) *SubmitQuoteUseCase {
	return &SubmitQuoteUseCase{
		repo:      repo,
		engine:    engine,
		validator: validator,
		templates: templates,
		pdf:       pdf,
		links:     links,
		notifier:  notifier,
		settings:  settings,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SubmitQuoteUseCase) Execute(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error) {
	cfg := req.Configuration()
	if err := uc.validator.Validate(cfg); err != nil {
		return nil, err
	}

	clientPDF, err := decodeClientDocument(req.Document)
	if err != nil {
		return nil, err
	}

	cfg = uc.engine.Normalize(cfg)
	estimate := uc.engine.Estimate(cfg)

	draft := domain.QuoteDraft{
		ClientInfo:         cfg.ClientInfo,
		SiteType:           cfg.SiteType,
		DesignType:         cfg.DesignType,
		Features:           uc.engine.FeatureLabels(cfg.SiteType, cfg.Features),
		Maintenance:        cfg.Maintenance,
		MaintenanceFee:     estimate.MaintenanceFee,
		ProjectDescription: cfg.ProjectDescription,
		Amount:             estimate.Total,
		Total:              estimate.FormattedTotal,
	}

	number, createdAt, persisted := uc.persist(ctx, draft)
	logger := uc.logger.With(zap.String("devisNumber", number))
	logger.Info("devis submitted",
		zap.Int("total", estimate.Total),
		zap.String("siteType", cfg.SiteType),
		zap.Bool("persisted", persisted),
	)

	doc := buildDocument(uc.engine, uc.settings.Company, number, createdAt, cfg, estimate)
	attachments := uc.attachments(doc, clientPDF, logger)

	if err := uc.notifyOperator(ctx, doc, persisted, attachments); err != nil {
		logger.Error("operator notification failed", deliveryFields("intake", err)...)
		return nil, apperrors.NewNotificationFailedError(number, err)
	}

	if err := uc.notifyClient(ctx, doc, attachments); err != nil {
		logger.Warn("client confirmation failed", deliveryFields("intake", err)...)
	}

	return &dto.SubmitQuoteResult{
		DevisNumber:    number,
		Total:          estimate.Total,
		FormattedTotal: estimate.FormattedTotal,
		MaintenanceFee: estimate.MaintenanceFee,
		Persisted:      persisted,
	}, nil
}

// persist stores the draft. When the store fails the lead gets a provisional
// reference outside the devis number format, so it can never resolve to a
// stored quote.
func (uc *SubmitQuoteUseCase) persist(ctx context.Context, draft domain.QuoteDraft) (string, time.Time, bool) {
	quote, err := uc.repo.Create(ctx, draft)
	if err == nil {
		return quote.DevisNumber, quote.CreatedAt, true
	}

	now := uc.now()
	number := provisionalReference()
	uc.logger.Error("devis not persisted, continuing with notification",
		zap.String("devisNumber", number),
		zap.String("operation", "create"),
		zap.String("clientEmail", draft.ClientInfo.Email),
		zap.Error(err),
	)
	return number, now, false
}

func (uc *SubmitQuoteUseCase) attachments(doc document.QuoteDocument, clientPDF []byte, logger *zap.Logger) []notification.Attachment {
	data := clientPDF
	if data == nil {
		rendered, err := uc.pdf.Render(doc)
		if err != nil {
			logger.Warn("pdf rendering failed, sending without attachment", zap.Error(err))
			return nil
		}
		data = rendered
	}

	return []notification.Attachment{{
		Filename:    fmt.Sprintf("devis-%s.pdf", doc.DevisNumber),
		ContentType: "application/pdf",
		Data:        data,
	}}
}

func (uc *SubmitQuoteUseCase) notifyOperator(ctx context.Context, doc document.QuoteDocument, persisted bool, attachments []notification.Attachment) error {
	data := document.OperatorEmail{Document: doc, Persisted: persisted}
	// An unpersisted number was never reserved in the store and may belong
	// to another quote, so it must not carry action tokens.
	if persisted {
		approveURL, rejectURL, err := actionURLs(uc.links, doc.DevisNumber)
		if err != nil {
			return err
		}
		data.ApproveURL = approveURL
		data.RejectURL = rejectURL
	}

	body, err := uc.templates.Render(document.TemplateOperator, data)
	if err != nil {
		return err
	}

	_, err = uc.notifier.Send(ctx, notification.Message{
		From:        uc.settings.MailFrom,
		To:          []string{uc.settings.OperatorEmail},
		Subject:     fmt.Sprintf("Nouveau devis n° %s - %s", doc.DevisNumber, doc.Client.Name),
		Body:        body,
		Attachments: attachments,
	})
	return err
}

func (uc *SubmitQuoteUseCase) notifyClient(ctx context.Context, doc document.QuoteDocument, attachments []notification.Attachment) error {
	body, err := uc.templates.Render(document.TemplateClient, document.ClientEmail{Document: doc})
	if err != nil {
		return err
	}

	_, err = uc.notifier.Send(ctx, notification.Message{
		From:        uc.settings.MailFrom,
		To:          []string{doc.Client.Email},
		Subject:     fmt.Sprintf("Votre devis n° %s - %s", doc.DevisNumber, uc.settings.Company.Name),
		Body:        body,
		Attachments: attachments,
	})
	return err
}

func provisionalReference() string {
	return "NC-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

func actionURLs(links LinkSigner, number string) (string, string, error) {
	approve, err := links.URL(number, dto.ActionApprove)
	if err != nil {
		return "", "", err
	}
	reject, err := links.URL(number, dto.ActionReject)
	if err != nil {
		return "", "", err
	}
	return approve, reject, nil
}

func decodeClientDocument(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURL(encoded))
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "document",
			Message: "must be a base64 encoded PDF",
		})
	}
	if len(data) > maxClientDocumentBytes {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "document",
			Message: fmt.Sprintf("must not exceed %d bytes", maxClientDocumentBytes),
		})
	}
	return data, nil
}

func deliveryFields(operation string, err error) []zap.Field {
	fields := []zap.Field{zap.String("operation", operation), zap.Error(err)}
	if de, ok := apperrors.IsDeliveryError(err); ok {
		fields = append(fields,
			zap.Int("attempts", de.Attempts),
			zap.String("code", de.Code),
			zap.String("response", de.Response),
			zap.Int("responseCode", de.ResponseCode),
		)
	}
	return fields
}
