package domain

import "time"

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusApproved, QuoteStatusRejected:
		return true
	}
	return false
}

type ClientInfo struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone,omitempty" validate:"max=40"`
	Company string `json:"company,omitempty" validate:"max=200"`
}

// Quote is the persisted devis. It is only ever built by the store from a
// QuoteDraft, and only its status, signedAt and updatedAt change afterwards.
type Quote struct {
	ID                 string      `json:"id"`
	DevisNumber        string      `json:"devisNumber"`
	ClientInfo         ClientInfo  `json:"clientInfo"`
	SiteType           string      `json:"siteType"`
	DesignType         string      `json:"designType"`
	Features           []string    `json:"features"`
	Maintenance        string      `json:"maintenance"`
	MaintenanceFee     int         `json:"maintenanceFee"`
	ProjectDescription string      `json:"projectDescription,omitempty"`
	Amount             int         `json:"amount"`
	Total              string      `json:"total"`
	Status             QuoteStatus `json:"status"`
	SignedAt           *time.Time  `json:"signedAt,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// QuoteDraft is everything the store needs to create a Quote; the store
// assigns ID, DevisNumber, Status and timestamps.
type QuoteDraft struct {
	ClientInfo         ClientInfo
	SiteType           string
	DesignType         string
	Features           []string
	Maintenance        string
	MaintenanceFee     int
	ProjectDescription string
	Amount             int
	Total              string
}

type QuoteStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func ComputeStats(quotes []Quote) QuoteStats {
	stats := QuoteStats{Total: len(quotes)}
	for _, q := range quotes {
		switch q.Status {
		case QuoteStatusPending:
			stats.Pending++
		case QuoteStatusApproved:
			stats.Approved++
		case QuoteStatusRejected:
			stats.Rejected++
		}
	}
	return stats
}
