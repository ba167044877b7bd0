package dto

import "devis/internal/domain"

// ActionOutcome is what the operator sees after following an action link.
type ActionOutcome string

const (
	OutcomeApproved         ActionOutcome = "approved"
	OutcomeRejected         ActionOutcome = "rejected"
	OutcomeNotFound         ActionOutcome = "not-found"
	OutcomeAlreadyProcessed ActionOutcome = "already-processed"
	OutcomeInvalidAction    ActionOutcome = "invalid-action"
	OutcomeUpdateFailed     ActionOutcome = "update-failed"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type ActionResult struct {
	Outcome       ActionOutcome
	DevisNumber   string
	CurrentStatus domain.QuoteStatus
}

type ActionResponse struct {
	TraceID       string `json:"traceId"`
	Outcome       string `json:"outcome"`
	DevisNumber   string `json:"devisNumber"`
	CurrentStatus string `json:"currentStatus,omitempty"`
	Message       string `json:"message"`
}
