package usecase

import (
	"time"

	"devis/internal/document"
	"devis/internal/domain"
	"devis/internal/pricing"
)

func buildDocument(engine *pricing.Engine, company document.Company, number string, date time.Time, cfg domain.QuoteConfiguration, est pricing.Estimate) document.QuoteDocument {
	return document.QuoteDocument{
		DevisNumber:        number,
		Date:               date,
		Company:            company,
		Client:             cfg.ClientInfo,
		SiteType:           engine.SiteTypeLabel(cfg.SiteType),
		DesignType:         engine.DesignTypeLabel(cfg.DesignType),
		Lines:              est.Lines,
		Total:              est.Total,
		FormattedTotal:     est.FormattedTotal,
		MaintenanceLabel:   est.MaintenanceLabel,
		MaintenanceFee:     est.MaintenanceFee,
		MaintenancePeriod:  est.MaintenancePeriod,
		ProjectDescription: cfg.ProjectDescription,
	}
}
