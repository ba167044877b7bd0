package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devis/internal/domain"
	"devis/internal/dto"
	apperrors "devis/internal/errors"
	"devis/internal/pricing"
)

type mockSubmitUseCase struct {
	ExecuteFunc func(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error)
}

func (m *mockSubmitUseCase) Execute(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error) {
	return m.ExecuteFunc(ctx, req)
}

type mockSignatureUseCase struct {
	ExecuteFunc func(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error)
}

func (m *mockSignatureUseCase) Execute(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error) {
	return m.ExecuteFunc(ctx, in)
}

type mockApplyActionUseCase struct {
	ExecuteFunc func(ctx context.Context, number, action string) dto.ActionResult
	calls       int
}

func (m *mockApplyActionUseCase) Execute(ctx context.Context, number, action string) dto.ActionResult {
	m.calls++
	return m.ExecuteFunc(ctx, number, action)
}

type mockVerifier struct {
	VerifyFunc func(token, number, action string) error
}

func (m *mockVerifier) Verify(token, number, action string) error {
	return m.VerifyFunc(token, number, action)
}

type mockPricingUseCase struct {
	EstimateFunc        func(cfg domain.QuoteConfiguration) (*pricing.Estimate, error)
	PreviewDocumentFunc func(cfg domain.QuoteConfiguration) ([]byte, error)
}

func (m *mockPricingUseCase) Catalog() *pricing.Catalog {
	return pricing.DefaultCatalog()
}

func (m *mockPricingUseCase) Estimate(cfg domain.QuoteConfiguration) (*pricing.Estimate, error) {
	return m.EstimateFunc(cfg)
}

func (m *mockPricingUseCase) PreviewDocument(cfg domain.QuoteConfiguration) ([]byte, error) {
	return m.PreviewDocumentFunc(cfg)
}

type mockQueryUseCase struct {
	ListFunc  func(ctx context.Context) ([]domain.Quote, error)
	StatsFunc func(ctx context.Context) (domain.QuoteStats, error)
	GetFunc   func(ctx context.Context, number string) (*domain.Quote, []domain.Signature, error)
}

func (m *mockQueryUseCase) List(ctx context.Context) ([]domain.Quote, error) {
	return m.ListFunc(ctx)
}

func (m *mockQueryUseCase) Stats(ctx context.Context) (domain.QuoteStats, error) {
	return m.StatsFunc(ctx)
}

func (m *mockQueryUseCase) Get(ctx context.Context, number string) (*domain.Quote, []domain.Signature, error) {
	return m.GetFunc(ctx, number)
}

func serve(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestQuoteController_Submit(t *testing.T) {
	var got dto.SubmitQuoteRequest
	uc := &mockSubmitUseCase{ExecuteFunc: func(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error) {
		got = req
		return &dto.SubmitQuoteResult{DevisNumber: "2026-1016-042", Total: 550, FormattedTotal: "550 €", Persisted: true}, nil
	}}
	c := NewQuoteController(uc, nil, zap.NewNop())

	payload := `{"siteType":"vitrine","designType":"template","features":[],"maintenance":"none",
		"clientInfo":{"name":"Alice","email":"alice@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/devis", strings.NewReader(payload))
	rec := serve(t, http.MethodPost, "/api/devis", c.Submit, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "2026-1016-042", body["devisNumber"])
	assert.Equal(t, "550 €", body["total"])
	assert.Equal(t, true, body["persisted"])
	assert.NotEmpty(t, body["traceId"])
	assert.Equal(t, "vitrine", got.SiteType)
	assert.Equal(t, "alice@example.com", got.ClientInfo.Email)
}

func TestQuoteController_SubmitInvalidJSON(t *testing.T) {
	uc := &mockSubmitUseCase{ExecuteFunc: func(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error) {
		t.Fatal("use case must not be called")
		return nil, nil
	}}
	c := NewQuoteController(uc, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/devis", strings.NewReader("{"))
	rec := serve(t, http.MethodPost, "/api/devis", c.Submit, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rec)["error"])
}

func TestQuoteController_SubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "clientInfo.email", Message: "is required"}),
			wantStatus: http.StatusBadRequest,
			wantField:  "error",
			wantValue:  "VALIDATION_ERROR",
		},
		{
			name:       "operator notification failed",
			err:        apperrors.NewNotificationFailedError("2026-1016-042", &apperrors.DeliveryError{Attempts: 3}),
			wantStatus: http.StatusBadGateway,
			wantField:  "devisNumber",
			wantValue:  "2026-1016-042",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantField:  "code",
			wantValue:  "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockSubmitUseCase{ExecuteFunc: func(ctx context.Context, req dto.SubmitQuoteRequest) (*dto.SubmitQuoteResult, error) {
				return nil, tt.err
			}}
			c := NewQuoteController(uc, nil, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/api/devis", strings.NewReader(`{}`))
			rec := serve(t, http.MethodPost, "/api/devis", c.Submit, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValue, decodeBody(t, rec)[tt.wantField])
		})
	}
}

func TestQuoteController_Sign(t *testing.T) {
	var got dto.RecordSignatureInput
	recorded := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	uc := &mockSignatureUseCase{ExecuteFunc: func(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error) {
		got = in
		return &domain.Signature{ID: "sig-1", DevisNumber: in.DevisNumber, RecordedAt: recorded}, nil
	}}
	c := NewQuoteController(nil, uc, zap.NewNop())

	payload, _ := json.Marshal(map[string]any{
		"signature":  "data:image/png;base64,iVBORw0KGgo=",
		"clientInfo": map[string]string{"name": "Alice", "email": "alice@example.com"},
		"signedAt":   "2026-10-16T13:59:00+02:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/devis/2026-1016-042/signature", bytes.NewReader(payload))
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := serve(t, http.MethodPost, "/api/devis/{devisNumber}/signature", c.Sign, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "sig-1", body["signatureId"])
	assert.Equal(t, "2026-1016-042", body["devisNumber"])

	assert.Equal(t, "2026-1016-042", got.DevisNumber)
	assert.Equal(t, "203.0.113.7", got.IPAddress)
	assert.Equal(t, "Mozilla/5.0", got.UserAgent)
	assert.Equal(t, time.Date(2026, 10, 16, 11, 59, 0, 0, time.UTC), got.SignedAt)
}

func TestQuoteController_SignErrors(t *testing.T) {
	t.Run("malformed number", func(t *testing.T) {
		uc := &mockSignatureUseCase{ExecuteFunc: func(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error) {
			t.Fatal("use case must not be called")
			return nil, nil
		}}
		c := NewQuoteController(nil, uc, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/devis/abc/signature", strings.NewReader(`{}`))
		rec := serve(t, http.MethodPost, "/api/devis/{devisNumber}/signature", c.Sign, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("already processed", func(t *testing.T) {
		uc := &mockSignatureUseCase{ExecuteFunc: func(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error) {
			return nil, apperrors.NewConflictError("devis 2026-1016-042 already processed", "approved")
		}}
		c := NewQuoteController(nil, uc, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/devis/2026-1016-042/signature", strings.NewReader(`{}`))
		rec := serve(t, http.MethodPost, "/api/devis/{devisNumber}/signature", c.Sign, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ALREADY_PROCESSED", decodeBody(t, rec)["code"])
	})

	t.Run("not found", func(t *testing.T) {
		uc := &mockSignatureUseCase{ExecuteFunc: func(ctx context.Context, in dto.RecordSignatureInput) (*domain.Signature, error) {
			return nil, apperrors.NewNotFoundError("devis 2026-1016-042 not found")
		}}
		c := NewQuoteController(nil, uc, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/devis/2026-1016-042/signature", strings.NewReader(`{}`))
		rec := serve(t, http.MethodPost, "/api/devis/{devisNumber}/signature", c.Sign, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func actionRequest(number, action, token string) *http.Request {
	q := url.Values{}
	if action != "" {
		q.Set("action", action)
	}
	if token != "" {
		q.Set("token", token)
	}
	return httptest.NewRequest(http.MethodGet, "/devis/"+number+"/action?"+q.Encode(), nil)
}

const actionPattern = "/devis/{devisNumber}/action"

func acceptToken(token, number, action string) error {
	if token != "good" {
		return apperrors.NewForbiddenError("invalid action token")
	}
	return nil
}

func TestActionController_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		outcome    dto.ActionOutcome
		wantStatus int
	}{
		{"approved", "approve", dto.OutcomeApproved, http.StatusOK},
		{"rejected", "reject", dto.OutcomeRejected, http.StatusOK},
		{"already processed", "approve", dto.OutcomeAlreadyProcessed, http.StatusConflict},
		{"not found", "reject", dto.OutcomeNotFound, http.StatusNotFound},
		{"update failed", "approve", dto.OutcomeUpdateFailed, http.StatusInternalServerError},
		{"invalid action", "archive", dto.OutcomeInvalidAction, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockApplyActionUseCase{ExecuteFunc: func(ctx context.Context, number, action string) dto.ActionResult {
				return dto.ActionResult{Outcome: tt.outcome, DevisNumber: number}
			}}
			c := NewActionController(uc, &mockVerifier{VerifyFunc: acceptToken}, "", zap.NewNop())

			rec := serve(t, http.MethodGet, actionPattern, c.Apply, actionRequest("2026-1016-042", tt.action, "good"))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, string(tt.outcome), body["outcome"])
			assert.Equal(t, "2026-1016-042", body["devisNumber"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestActionController_BadTokenNeverReachesStore(t *testing.T) {
	for _, token := range []string{"", "forged"} {
		uc := &mockApplyActionUseCase{ExecuteFunc: func(ctx context.Context, number, action string) dto.ActionResult {
			return dto.ActionResult{Outcome: dto.OutcomeApproved}
		}}
		c := NewActionController(uc, &mockVerifier{VerifyFunc: acceptToken}, "", zap.NewNop())

		rec := serve(t, http.MethodGet, actionPattern, c.Apply, actionRequest("2026-1016-042", "approve", token))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, 0, uc.calls)
	}
}

func TestActionController_UnknownActionSkipsTokenCheck(t *testing.T) {
	uc := &mockApplyActionUseCase{ExecuteFunc: func(ctx context.Context, number, action string) dto.ActionResult {
		return dto.ActionResult{Outcome: dto.OutcomeInvalidAction, DevisNumber: number, CurrentStatus: domain.QuoteStatusPending}
	}}
	verifier := &mockVerifier{VerifyFunc: func(token, number, action string) error {
		t.Fatal("token must not be checked")
		return nil
	}}
	c := NewActionController(uc, verifier, "", zap.NewNop())

	rec := serve(t, http.MethodGet, actionPattern, c.Apply, actionRequest("2026-1016-042", "invalid", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "pending", decodeBody(t, rec)["currentStatus"])
}

func TestActionController_RedirectsToDashboard(t *testing.T) {
	uc := &mockApplyActionUseCase{ExecuteFunc: func(ctx context.Context, number, action string) dto.ActionResult {
		return dto.ActionResult{Outcome: dto.OutcomeApproved, DevisNumber: number}
	}}
	c := NewActionController(uc, &mockVerifier{VerifyFunc: acceptToken}, "https://studio.example/admin?tab=devis", zap.NewNop())

	rec := serve(t, http.MethodGet, actionPattern, c.Apply, actionRequest("2026-1016-042", "approve", "good"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "studio.example", loc.Host)
	assert.Equal(t, "devis", loc.Query().Get("tab"))
	assert.Equal(t, "2026-1016-042", loc.Query().Get("devis"))
	assert.Equal(t, "approved", loc.Query().Get("outcome"))
}

func TestPricingController_Catalog(t *testing.T) {
	c := NewPricingController(&mockPricingUseCase{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/pricing/catalog", nil)
	rec := serve(t, http.MethodGet, "/api/pricing/catalog", c.Catalog, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "EUR", body["currency"])
	assert.NotEmpty(t, body["features"])
}

func TestPricingController_Estimate(t *testing.T) {
	uc := &mockPricingUseCase{EstimateFunc: func(cfg domain.QuoteConfiguration) (*pricing.Estimate, error) {
		assert.Equal(t, []string{"blog"}, cfg.Features)
		return &pricing.Estimate{Total: 850, FormattedTotal: "850 €", Currency: "EUR"}, nil
	}}
	c := NewPricingController(uc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/pricing/estimate",
		strings.NewReader(`{"siteType":"vitrine","designType":"template","features":["blog"],"maintenance":"none"}`))
	rec := serve(t, http.MethodPost, "/api/pricing/estimate", c.Estimate, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(850), body["total"])
	assert.NotEmpty(t, body["traceId"])
}

func TestPricingController_EstimateValidation(t *testing.T) {
	uc := &mockPricingUseCase{EstimateFunc: func(cfg domain.QuoteConfiguration) (*pricing.Estimate, error) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "siteType", Message: "is required"})
	}}
	c := NewPricingController(uc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/pricing/estimate", strings.NewReader(`{}`))
	rec := serve(t, http.MethodPost, "/api/pricing/estimate", c.Estimate, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["details"].([]any)
	assert.Equal(t, "siteType", details[0].(map[string]any)["field"])
}

func TestPricingController_Document(t *testing.T) {
	uc := &mockPricingUseCase{PreviewDocumentFunc: func(cfg domain.QuoteConfiguration) ([]byte, error) {
		return []byte("%PDF-1.7"), nil
	}}
	c := NewPricingController(uc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/pricing/document",
		strings.NewReader(`{"siteType":"vitrine","designType":"template","maintenance":"none"}`))
	rec := serve(t, http.MethodPost, "/api/pricing/document", c.Document, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7", rec.Body.String())
}

func TestAdminController(t *testing.T) {
	uc := &mockQueryUseCase{
		ListFunc: func(ctx context.Context) ([]domain.Quote, error) {
			return nil, nil
		},
		StatsFunc: func(ctx context.Context) (domain.QuoteStats, error) {
			return domain.QuoteStats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, nil
		},
		GetFunc: func(ctx context.Context, number string) (*domain.Quote, []domain.Signature, error) {
			if number != "2026-1016-042" {
				return nil, nil, apperrors.NewNotFoundError("devis " + number + " not found")
			}
			return &domain.Quote{DevisNumber: number, Status: domain.QuoteStatusPending}, nil, nil
		},
	}
	c := NewAdminController(uc, zap.NewNop())

	t.Run("list returns an empty array", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/api/admin/devis", c.List, httptest.NewRequest(http.MethodGet, "/api/admin/devis", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, decodeBody(t, rec)["quotes"])
	})

	t.Run("stats", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/api/admin/devis/stats", c.Stats, httptest.NewRequest(http.MethodGet, "/api/admin/devis/stats", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(3), body["total"])
		assert.Equal(t, float64(1), body["pending"])
	})

	t.Run("get", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/api/admin/devis/{devisNumber}", c.Get, httptest.NewRequest(http.MethodGet, "/api/admin/devis/2026-1016-042", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "2026-1016-042", body["quote"].(map[string]any)["devisNumber"])
		assert.Equal(t, []any{}, body["signatures"])
	})

	t.Run("get unknown", func(t *testing.T) {
		rec := serve(t, http.MethodGet, "/api/admin/devis/{devisNumber}", c.Get, httptest.NewRequest(http.MethodGet, "/api/admin/devis/2026-1016-999", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
