package pricing

import (
	"fmt"

	"devis/internal/domain"
)

type Item struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Price int    `yaml:"price" json:"price"`
}

type MaintenancePlan struct {
	ID     string `yaml:"id" json:"id"`
	Label  string `yaml:"label" json:"label"`
	Fee    int    `yaml:"fee" json:"fee"`
	Period string `yaml:"period" json:"period"`
}

// Catalog holds the price tables. It is static configuration: the same
// values are served to the browser estimator and used for the billed total.
type Catalog struct {
	Currency    string              `yaml:"currency" json:"currency"`
	SiteTypes   []Item              `yaml:"siteTypes" json:"siteTypes"`
	DesignTypes []Item              `yaml:"designTypes" json:"designTypes"`
	Features    []Item              `yaml:"features" json:"features"`
	Maintenance []MaintenancePlan   `yaml:"maintenance" json:"maintenance"`
	Bundles     map[string][]string `yaml:"bundles" json:"bundles"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Currency: "EUR",
		SiteTypes: []Item{
			{ID: domain.SiteTypeVitrine, Label: "Site vitrine", Price: 350},
			{ID: domain.SiteTypeEcommerce, Label: "Site e-commerce", Price: 800},
			{ID: domain.SiteTypeWebapp, Label: "Application web", Price: 1500},
		},
		DesignTypes: []Item{
			{ID: domain.DesignTypeTemplate, Label: "Design basé sur un template", Price: 200},
			{ID: domain.DesignTypeCustom, Label: "Design sur mesure", Price: 500},
		},
		Features: []Item{
			{ID: "blog", Label: "Blog", Price: 300},
			{ID: "analytics", Label: "Statistiques de visite", Price: 80},
			{ID: domain.FeatureUserAccounts, Label: "Comptes utilisateurs", Price: 400},
			{ID: "contact-form", Label: "Formulaire de contact", Price: 50},
			{ID: "seo", Label: "Optimisation SEO", Price: 150},
			{ID: "multilingual", Label: "Site multilingue", Price: 250},
			{ID: "newsletter", Label: "Newsletter", Price: 100},
			{ID: "booking", Label: "Réservation en ligne", Price: 300},
			{ID: "payment", Label: "Paiement en ligne", Price: 350},
			{ID: "chat", Label: "Chat en direct", Price: 200},
		},
		Maintenance: []MaintenancePlan{
			{ID: domain.MaintenanceNone, Label: "Sans maintenance", Fee: 0},
			{ID: domain.MaintenanceMonthly, Label: "Maintenance mensuelle", Fee: 10, Period: "mois"},
			{ID: domain.MaintenanceAnnually, Label: "Maintenance annuelle", Fee: 100, Period: "an"},
		},
		Bundles: map[string][]string{
			domain.SiteTypeWebapp: {domain.FeatureUserAccounts},
		},
	}
}

// Validate checks that every enum value the API accepts has a price and that
// no price is negative.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}

	siteTypes := itemIndex(c.SiteTypes)
	for _, id := range []string{domain.SiteTypeVitrine, domain.SiteTypeEcommerce, domain.SiteTypeWebapp} {
		if _, ok := siteTypes[id]; !ok {
			return fmt.Errorf("catalog: missing site type %q", id)
		}
	}

	designTypes := itemIndex(c.DesignTypes)
	for _, id := range []string{domain.DesignTypeTemplate, domain.DesignTypeCustom} {
		if _, ok := designTypes[id]; !ok {
			return fmt.Errorf("catalog: missing design type %q", id)
		}
	}

	plans := make(map[string]struct{}, len(c.Maintenance))
	for _, p := range c.Maintenance {
		if p.Fee < 0 {
			return fmt.Errorf("catalog: maintenance %q has negative fee", p.ID)
		}
		plans[p.ID] = struct{}{}
	}
	for _, id := range []string{domain.MaintenanceNone, domain.MaintenanceMonthly, domain.MaintenanceAnnually} {
		if _, ok := plans[id]; !ok {
			return fmt.Errorf("catalog: missing maintenance plan %q", id)
		}
	}

	features := itemIndex(c.Features)
	for _, group := range [][]Item{c.SiteTypes, c.DesignTypes, c.Features} {
		for _, it := range group {
			if it.ID == "" {
				return fmt.Errorf("catalog: item with empty id")
			}
			if it.Price < 0 {
				return fmt.Errorf("catalog: item %q has negative price", it.ID)
			}
		}
	}

	for siteType, bundled := range c.Bundles {
		if _, ok := siteTypes[siteType]; !ok {
			return fmt.Errorf("catalog: bundle for unknown site type %q", siteType)
		}
		for _, f := range bundled {
			if _, ok := features[f]; !ok {
				return fmt.Errorf("catalog: bundle of %q references unknown feature %q", siteType, f)
			}
		}
	}

	return nil
}

func itemIndex(items []Item) map[string]Item {
	idx := make(map[string]Item, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}
