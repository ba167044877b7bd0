package domain

import "time"

// Provenance fields are capped to the widths of the Signatures table.
const (
	MaxIPAddressLength = 64
	MaxUserAgentLength = 512
)

// Signature is the audit record of a client signing a pending devis. It does
// not change the quote status.
type Signature struct {
	ID          string     `json:"id"`
	DevisNumber string     `json:"devisNumber"`
	ImageKey    string     `json:"imageKey"`
	MimeType    string     `json:"mimeType"`
	SizeBytes   int64      `json:"sizeBytes"`
	Signer      ClientInfo `json:"signer"`
	IPAddress   string     `json:"ipAddress"`
	UserAgent   string     `json:"userAgent"`
	SignedAt    time.Time  `json:"signedAt"`
	RecordedAt  time.Time  `json:"recordedAt"`
}
