package dto

import (
	"time"

	"devis/internal/domain"
	"devis/internal/pricing"
)

type SubmitQuoteRequest struct {
	SiteType           string            `json:"siteType"`
	DesignType         string            `json:"designType"`
	Features           []string          `json:"features"`
	Maintenance        string            `json:"maintenance"`
	ClientInfo         domain.ClientInfo `json:"clientInfo"`
	ProjectDescription string            `json:"projectDescription,omitempty"`
	// Document is an optional base64 PDF rendered by the browser. When set
	// it is attached instead of the server-rendered document.
	Document string `json:"document,omitempty"`
}

func (r SubmitQuoteRequest) Configuration() domain.QuoteConfiguration {
	return domain.QuoteConfiguration{
		SiteType:           r.SiteType,
		DesignType:         r.DesignType,
		Features:           r.Features,
		Maintenance:        r.Maintenance,
		ClientInfo:         r.ClientInfo,
		ProjectDescription: r.ProjectDescription,
	}
}

type SubmitQuoteResult struct {
	DevisNumber    string
	Total          int
	FormattedTotal string
	MaintenanceFee int
	Persisted      bool
}

type SubmitQuoteResponse struct {
	TraceID        string `json:"traceId"`
	DevisNumber    string `json:"devisNumber"`
	Total          string `json:"total"`
	MaintenanceFee int    `json:"maintenanceFee"`
	Persisted      bool   `json:"persisted"`
}

type EstimateRequest struct {
	SiteType    string   `json:"siteType"`
	DesignType  string   `json:"designType"`
	Features    []string `json:"features"`
	Maintenance string   `json:"maintenance"`
	// ClientInfo is only used by the document preview.
	ClientInfo         domain.ClientInfo `json:"clientInfo"`
	ProjectDescription string            `json:"projectDescription,omitempty"`
}

func (r EstimateRequest) Configuration() domain.QuoteConfiguration {
	return domain.QuoteConfiguration{
		SiteType:           r.SiteType,
		DesignType:         r.DesignType,
		Features:           r.Features,
		Maintenance:        r.Maintenance,
		ClientInfo:         r.ClientInfo,
		ProjectDescription: r.ProjectDescription,
	}
}

type CatalogResponse struct {
	TraceID string `json:"traceId"`
	*pricing.Catalog
}

type EstimateResponse struct {
	TraceID string `json:"traceId"`
	pricing.Estimate
}

type QuoteDetailResponse struct {
	TraceID    string             `json:"traceId"`
	Quote      domain.Quote       `json:"quote"`
	Signatures []domain.Signature `json:"signatures"`
}

type QuoteListResponse struct {
	TraceID string         `json:"traceId"`
	Quotes  []domain.Quote `json:"quotes"`
}

type StatsResponse struct {
	TraceID string `json:"traceId"`
	domain.QuoteStats
}

type ErrorResponse struct {
	TraceID     string    `json:"traceId"`
	Status      int       `json:"status"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	DevisNumber string    `json:"devisNumber,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
