package usecase

import (
	"time"

	"devis/internal/domain"
	"devis/internal/pricing"
)

type PricingUseCase struct {
	engine    *pricing.Engine
	validator *ConfigurationValidator
	pdf       PDFRenderer
	settings  Settings
	now       func() time.Time
}

func NewPricingUseCase(engine *pricing.Engine, validator *ConfigurationValidator, pdf PDFRenderer, settings Settings) *PricingUseCase {
	return &PricingUseCase{
		engine:    engine,
		validator: validator,
		pdf:       pdf,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *PricingUseCase) Catalog() *pricing.Catalog {
	return uc.engine.Catalog()
}

// Estimate prices a selection with the same engine intake uses.
func (uc *PricingUseCase) Estimate(cfg domain.QuoteConfiguration) (*pricing.Estimate, error) {
	if err := uc.validator.ValidateSelection(cfg); err != nil {
		return nil, err
	}
	est := uc.engine.Estimate(cfg)
	return &est, nil
}

// PreviewDocument renders the PDF of a configuration that has not been
// submitted. It carries no devis number.
func (uc *PricingUseCase) PreviewDocument(cfg domain.QuoteConfiguration) ([]byte, error) {
	if err := uc.validator.ValidateSelection(cfg); err != nil {
		return nil, err
	}
	cfg = uc.engine.Normalize(cfg)
	est := uc.engine.Estimate(cfg)
	return uc.pdf.Render(buildDocument(uc.engine, uc.settings.Company, "", uc.now(), cfg, est))
}
