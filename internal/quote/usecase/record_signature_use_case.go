package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/document"
	"devis/internal/domain"
	"devis/internal/dto"
	apperrors "devis/internal/errors"
	"devis/internal/notification"
)

var signatureExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// RecordSignatureUseCase archives a client's signature of a pending quote
// along with its provenance. It never changes the quote status.
type RecordSignatureUseCase struct {
	repo      QuoteRepository
	blobs     BlobStore
	validator *ConfigurationValidator
	templates TemplateRenderer
	links     LinkSigner
	notifier  Notifier
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecordSignatureUseCase(
	repo QuoteRepository,
	blobs BlobStore,
	validator *ConfigurationValidator,
	templates TemplateRenderer,
	links LinkSigner,
	notifier Notifier,
	settings Settings,
	logger *zap.Logger,
) *RecordSignatureUseCase {
	return &RecordSignatureUseCase{
		repo:      repo,
		blobs:     blobs,
		validator: validator,
		templates: templates,
		links:     links,
		notifier:  notifier,
		settings:  settings,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *RecordSignatureUseCase) Execute(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error) {
	if err := uc.validator.ValidateClient(in.ClientInfo); err != nil {
		return nil, err
	}

	image, mimeType, err := uc.decodeImage(in.Image)
	if err != nil {
		return nil, err
	}

	quote, err := uc.repo.FindByNumber(ctx, in.DevisNumber)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusPending {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("devis %s already processed", quote.DevisNumber),
			string(quote.Status),
		)
	}

	now := uc.now()
	signedAt := in.SignedAt
	if signedAt.IsZero() || signedAt.After(now) {
		signedAt = now
	}

	id := uuid.New().String()
	key := fmt.Sprintf("signatures/%s/%s%s", quote.DevisNumber, id, signatureExtensions[mimeType])
	if err := uc.blobs.Put(ctx, key, mimeType, image); err != nil {
		return nil, apperrors.NewStorageError("store signature image", err)
	}

	sig := domain.Signature{
		ID:          id,
		DevisNumber: quote.DevisNumber,
		ImageKey:    key,
		MimeType:    mimeType,
		SizeBytes:   int64(len(image)),
		Signer:      in.ClientInfo,
		IPAddress:   truncate(in.IPAddress, domain.MaxIPAddressLength),
		UserAgent:   truncate(in.UserAgent, domain.MaxUserAgentLength),
		SignedAt:    signedAt,
		RecordedAt:  now,
	}

	if _, err := uc.repo.RecordSignature(ctx, sig); err != nil {
		return nil, err
	}

	logger := uc.logger.With(zap.String("devisNumber", quote.DevisNumber), zap.String("signatureId", id))
	logger.Info("devis signed", zap.String("imageKey", key), zap.String("ip", sig.IPAddress))

	if err := uc.notifyOperator(ctx, quote, sig); err != nil {
		logger.Warn("signature notification failed", deliveryFields("signature notification", err)...)
	}

	return &sig, nil
}

func (uc *RecordSignatureUseCase) decodeImage(encoded string) ([]byte, string, error) {
	invalid := func(msg string) error {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "signature",
			Message: msg,
		})
	}

	if strings.TrimSpace(encoded) == "" {
		return nil, "", invalid("is required")
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURL(encoded))
	if err != nil {
		return nil, "", invalid("must be a base64 encoded image")
	}
	if len(data) == 0 {
		return nil, "", invalid("is required")
	}
	if uc.settings.SignatureMaxBytes > 0 && int64(len(data)) > uc.settings.SignatureMaxBytes {
		return nil, "", invalid(fmt.Sprintf("must not exceed %d bytes", uc.settings.SignatureMaxBytes))
	}

	mimeType := http.DetectContentType(data)
	if _, ok := signatureExtensions[mimeType]; !ok {
		return nil, "", invalid("must be a PNG or JPEG image")
	}
	return data, mimeType, nil
}

func (uc *RecordSignatureUseCase) notifyOperator(ctx context.Context, quote *domain.Quote, sig domain.Signature) error {
	approveURL, rejectURL, err := actionURLs(uc.links, quote.DevisNumber)
	if err != nil {
		return err
	}

	body, err := uc.templates.Render(document.TemplateSignature, document.SignatureEmail{
		Company:     uc.settings.Company,
		DevisNumber: quote.DevisNumber,
		Total:       quote.Total,
		Signer:      sig.Signer,
		IPAddress:   sig.IPAddress,
		UserAgent:   sig.UserAgent,
		SignedAt:    sig.SignedAt,
		ApproveURL:  approveURL,
		RejectURL:   rejectURL,
	})
	if err != nil {
		return err
	}

	_, err = uc.notifier.Send(ctx, notification.Message{
		From:    uc.settings.MailFrom,
		To:      []string{uc.settings.OperatorEmail},
		Subject: fmt.Sprintf("Devis n° %s signé par %s", quote.DevisNumber, sig.Signer.Name),
		Body:    body,
	})
	return err
}

// stripDataURL drops a "data:<mime>;base64," prefix if present.
func stripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
