package usecase

import (
	"context"

	"devis/internal/document"
	"devis/internal/domain"
	"devis/internal/notification"
)

type QuoteRepository interface {
	Create(ctx context.Context, draft domain.QuoteDraft) (*domain.Quote, error)
	FindByNumber(ctx context.Context, number string) (*domain.Quote, error)
	UpdateStatus(ctx context.Context, number string, status domain.QuoteStatus) (*domain.Quote, error)
	RecordSignature(ctx context.Context, sig domain.Signature) (*domain.Quote, error)
}

type QuoteReader interface {
	FindByNumber(ctx context.Context, number string) (*domain.Quote, error)
	ListAll(ctx context.Context) ([]domain.Quote, error)
	Stats(ctx context.Context) (domain.QuoteStats, error)
	ListSignatures(ctx context.Context, number string) ([]domain.Signature, error)
}

type Notifier interface {
	Send(ctx context.Context, msg notification.Message) (*notification.Receipt, error)
}

type TemplateRenderer interface {
	Render(name string, data any) (string, error)
}

type PDFRenderer interface {
	Render(doc document.QuoteDocument) ([]byte, error)
}

type LinkSigner interface {
	URL(devisNumber, action string) (string, error)
}

type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// Settings is the per-process company configuration the lifecycle needs.
type Settings struct {
	Company           document.Company
	OperatorEmail     string
	MailFrom          string
	SignatureMaxBytes int64
}
