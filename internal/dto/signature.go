package dto

import (
	"time"

	"devis/internal/domain"
)

type SignatureRequest struct {
	// Signature is a data URL (data:image/png;base64,...) or bare base64.
	Signature  string            `json:"signature"`
	ClientInfo domain.ClientInfo `json:"clientInfo"`
	SignedAt   *time.Time        `json:"signedAt,omitempty"`
}

type RecordSignatureInput struct {
	DevisNumber string
	Image       string
	ClientInfo  domain.ClientInfo
	SignedAt    time.Time
	IPAddress   string
	UserAgent   string
}

type SignatureResponse struct {
	TraceID     string    `json:"traceId"`
	SignatureID string    `json:"signatureId"`
	DevisNumber string    `json:"devisNumber"`
	RecordedAt  time.Time `json:"recordedAt"`
}
