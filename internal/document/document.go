package document

import (
	"time"

	"devis/internal/domain"
	"devis/internal/pricing"
)

type Company struct {
	Name    string
	Email   string
	SiteURL string
}

// QuoteDocument is everything needed to present a priced quote, whether as
// an email body or as the downloadable PDF.
type QuoteDocument struct {
	DevisNumber        string
	Date               time.Time
	Company            Company
	Client             domain.ClientInfo
	SiteType           string
	DesignType         string
	Lines              []pricing.Line
	Total              int
	FormattedTotal     string
	MaintenanceLabel   string
	MaintenanceFee     int
	MaintenancePeriod  string
	ProjectDescription string
}

type OperatorEmail struct {
	Document   QuoteDocument
	ApproveURL string
	RejectURL  string
	Persisted  bool
}

type ClientEmail struct {
	Document QuoteDocument
}

type StatusEmail struct {
	Company     Company
	Client      domain.ClientInfo
	DevisNumber string
	Status      domain.QuoteStatus
	Total       string
}

type SignatureEmail struct {
	Company     Company
	DevisNumber string
	Total       string
	Signer      domain.ClientInfo
	IPAddress   string
	UserAgent   string
	SignedAt    time.Time
	ApproveURL  string
	RejectURL   string
}
