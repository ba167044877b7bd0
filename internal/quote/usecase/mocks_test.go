package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devis/internal/document"
	"devis/internal/domain"
	"devis/internal/notification"
	"devis/internal/pricing"
)

type mockQuoteRepository struct {
	CreateFunc          func(ctx context.Context, draft domain.QuoteDraft) (*domain.Quote, error)
	FindByNumberFunc    func(ctx context.Context, number string) (*domain.Quote, error)
	UpdateStatusFunc    func(ctx context.Context, number string, status domain.QuoteStatus) (*domain.Quote, error)
	RecordSignatureFunc func(ctx context.Context, sig domain.Signature) (*domain.Quote, error)

	updateCalls int
}

func (m *mockQuoteRepository) Create(ctx context.Context, draft domain.QuoteDraft) (*domain.Quote, error) {
	return m.CreateFunc(ctx, draft)
}

func (m *mockQuoteRepository) FindByNumber(ctx context.Context, number string) (*domain.Quote, error) {
	return m.FindByNumberFunc(ctx, number)
}

func (m *mockQuoteRepository) UpdateStatus(ctx context.Context, number string, status domain.QuoteStatus) (*domain.Quote, error) {
	m.updateCalls++
	return m.UpdateStatusFunc(ctx, number, status)
}

func (m *mockQuoteRepository) RecordSignature(ctx context.Context, sig domain.Signature) (*domain.Quote, error) {
	return m.RecordSignatureFunc(ctx, sig)
}

type mockNotifier struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, msg notification.Message) (*notification.Receipt, error)
	sent     []notification.Message
}

func (m *mockNotifier) Send(ctx context.Context, msg notification.Message) (*notification.Receipt, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.SendFunc == nil {
		return &notification.Receipt{Attempts: 1}, nil
	}
	return m.SendFunc(ctx, msg)
}

type mockPDFRenderer struct {
	RenderFunc func(doc document.QuoteDocument) ([]byte, error)
	calls      int
}

func (m *mockPDFRenderer) Render(doc document.QuoteDocument) ([]byte, error) {
	m.calls++
	if m.RenderFunc == nil {
		return []byte("%PDF-1.7 " + doc.DevisNumber), nil
	}
	return m.RenderFunc(doc)
}

type stubLinks struct{}

func (stubLinks) URL(number, action string) (string, error) {
	return fmt.Sprintf("https://studio.example/devis/%s/action?action=%s&token=t", number, action), nil
}

type recordingLinks struct {
	requested []string
}

func (l *recordingLinks) URL(number, action string) (string, error) {
	l.requested = append(l.requested, number+"/"+action)
	return stubLinks{}.URL(number, action)
}

type mockBlobStore struct {
	PutFunc func(ctx context.Context, key, contentType string, data []byte) error
	keys    []string
}

func (m *mockBlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	m.keys = append(m.keys, key)
	if m.PutFunc == nil {
		return nil
	}
	return m.PutFunc(ctx, key, contentType, data)
}

func testSettings() Settings {
	return Settings{
		Company:           document.Company{Name: "Studio Web", Email: "contact@studio.example", SiteURL: "https://studio.example"},
		OperatorEmail:     "operator@studio.example",
		MailFrom:          "no-reply@studio.example",
		SignatureMaxBytes: 1024,
	}
}

func testEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	e, err := pricing.NewEngine(pricing.DefaultCatalog())
	require.NoError(t, err)
	return e
}

func testTemplates(t *testing.T) *document.Renderer {
	t.Helper()
	r, err := document.NewRenderer()
	require.NoError(t, err)
	return r
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func pendingQuote(number string) *domain.Quote {
	return &domain.Quote{
		ID:          "id-" + number,
		DevisNumber: number,
		ClientInfo:  domain.ClientInfo{Name: "Alice", Email: "alice@example.com"},
		SiteType:    "vitrine",
		DesignType:  "template",
		Features:    []string{},
		Maintenance: "none",
		Amount:      550,
		Total:       "550 €",
		Status:      domain.QuoteStatusPending,
	}
}
