package repository

import (
	"fmt"
	"time"

	"devis/internal/domain"
	"devis/internal/errors"
)

// maxNumberAttempts bounds devis number regeneration when a random suffix
// collides with an existing quote of the same day.
const maxNumberAttempts = 20

func newQuote(draft domain.QuoteDraft, id, number string, now time.Time) domain.Quote {
	features := make([]string, len(draft.Features))
	copy(features, draft.Features)

	return domain.Quote{
		ID:                 id,
		DevisNumber:        number,
		ClientInfo:         draft.ClientInfo,
		SiteType:           draft.SiteType,
		DesignType:         draft.DesignType,
		Features:           features,
		Maintenance:        draft.Maintenance,
		MaintenanceFee:     draft.MaintenanceFee,
		ProjectDescription: draft.ProjectDescription,
		Amount:             draft.Amount,
		Total:              draft.Total,
		Status:             domain.QuoteStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func cloneQuote(q domain.Quote) domain.Quote {
	out := q
	out.Features = append([]string(nil), q.Features...)
	if q.SignedAt != nil {
		t := *q.SignedAt
		out.SignedAt = &t
	}
	return out
}

// validateQuote rejects persisted records that are not well-formed quotes.
func validateQuote(q domain.Quote) error {
	switch {
	case q.ID == "":
		return fmt.Errorf("quote without id")
	case !domain.ValidDevisNumber(q.DevisNumber):
		return fmt.Errorf("quote %s: invalid devis number %q", q.ID, q.DevisNumber)
	case !q.Status.Valid():
		return fmt.Errorf("quote %s: invalid status %q", q.DevisNumber, q.Status)
	case q.ClientInfo.Name == "" || q.ClientInfo.Email == "":
		return fmt.Errorf("quote %s: missing client info", q.DevisNumber)
	case q.CreatedAt.IsZero():
		return fmt.Errorf("quote %s: missing createdAt", q.DevisNumber)
	}
	return nil
}

func terminalStatus(status domain.QuoteStatus) bool {
	return status == domain.QuoteStatusApproved || status == domain.QuoteStatusRejected
}

func notFound(number string) error {
	return errors.NewNotFoundError(fmt.Sprintf("devis %s not found", number))
}

func alreadyProcessed(number string, current domain.QuoteStatus) error {
	return errors.NewConflictError(fmt.Sprintf("devis %s already processed", number), string(current))
}
