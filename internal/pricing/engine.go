package pricing

import (
	"fmt"

	"devis/internal/domain"
)

type LineKind string

const (
	LineSite    LineKind = "site"
	LineDesign  LineKind = "design"
	LineFeature LineKind = "feature"
)

type Line struct {
	Kind     LineKind `json:"kind"`
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Amount   int      `json:"amount"`
	Included bool     `json:"included,omitempty"`
}

type Estimate struct {
	Total             int    `json:"total"`
	FormattedTotal    string `json:"formattedTotal"`
	MaintenanceFee    int    `json:"maintenanceFee"`
	MaintenancePeriod string `json:"maintenancePeriod,omitempty"`
	MaintenanceLabel  string `json:"maintenanceLabel"`
	Currency          string `json:"currency"`
	Lines             []Line `json:"lines"`
}

// Engine prices quote configurations. It has no side effects and is safe for
// concurrent use.
type Engine struct {
	catalog     *Catalog
	siteTypes   map[string]Item
	designTypes map[string]Item
	features    map[string]Item
	plans       map[string]MaintenancePlan
	bundles     map[string]map[string]struct{}
}

func NewEngine(catalog *Catalog) (*Engine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		catalog:     catalog,
		siteTypes:   itemIndex(catalog.SiteTypes),
		designTypes: itemIndex(catalog.DesignTypes),
		features:    itemIndex(catalog.Features),
		plans:       make(map[string]MaintenancePlan, len(catalog.Maintenance)),
		bundles:     make(map[string]map[string]struct{}, len(catalog.Bundles)),
	}
	for _, p := range catalog.Maintenance {
		e.plans[p.ID] = p
	}
	for siteType, ids := range catalog.Bundles {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		e.bundles[siteType] = set
	}
	return e, nil
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) KnownSiteType(id string) bool {
	_, ok := e.siteTypes[id]
	return ok
}

func (e *Engine) KnownDesignType(id string) bool {
	_, ok := e.designTypes[id]
	return ok
}

func (e *Engine) KnownFeature(id string) bool {
	_, ok := e.features[id]
	return ok
}

func (e *Engine) KnownMaintenance(id string) bool {
	_, ok := e.plans[id]
	return ok
}

// IsBundled reports whether feature is included in the base price of siteType.
func (e *Engine) IsBundled(siteType, feature string) bool {
	_, ok := e.bundles[siteType][feature]
	return ok
}

// ComputeTotal returns base(siteType) + base(designType) + the surcharge of
// each distinct feature. Bundled features contribute 0. Unknown ids are
// expected to have been rejected by the caller and contribute 0.
func (e *Engine) ComputeTotal(siteType, designType string, features []string) int {
	total := e.siteTypes[siteType].Price + e.designTypes[designType].Price

	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if e.IsBundled(siteType, f) {
			continue
		}
		total += e.features[f].Price
	}
	return total
}

// ComputeMaintenanceFee returns the recurring fee of a plan. It is never part
// of the one-time total.
func (e *Engine) ComputeMaintenanceFee(maintenance string) int {
	return e.plans[maintenance].Fee
}

// Normalize de-duplicates features and adds the features bundled with the
// site type so they are displayed as included.
func (e *Engine) Normalize(cfg domain.QuoteConfiguration) domain.QuoteConfiguration {
	features := cfg.UniqueFeatures()
	for _, bundled := range e.catalog.Bundles[cfg.SiteType] {
		found := false
		for _, f := range features {
			if f == bundled {
				found = true
				break
			}
		}
		if !found {
			features = append(features, bundled)
		}
	}
	cfg.Features = features
	return cfg
}

func (e *Engine) Estimate(cfg domain.QuoteConfiguration) Estimate {
	cfg = e.Normalize(cfg)

	site := e.siteTypes[cfg.SiteType]
	design := e.designTypes[cfg.DesignType]
	lines := []Line{
		{Kind: LineSite, ID: site.ID, Label: site.Label, Amount: site.Price},
		{Kind: LineDesign, ID: design.ID, Label: design.Label, Amount: design.Price},
	}
	for _, f := range cfg.Features {
		item := e.features[f]
		line := Line{Kind: LineFeature, ID: f, Label: item.Label, Amount: item.Price}
		if e.IsBundled(cfg.SiteType, f) {
			line.Amount = 0
			line.Included = true
		}
		lines = append(lines, line)
	}

	total := e.ComputeTotal(cfg.SiteType, cfg.DesignType, cfg.Features)
	plan := e.plans[cfg.Maintenance]

	return Estimate{
		Total:             total,
		FormattedTotal:    FormatEUR(total),
		MaintenanceFee:    plan.Fee,
		MaintenancePeriod: plan.Period,
		MaintenanceLabel:  plan.Label,
		Currency:          e.catalog.Currency,
		Lines:             lines,
	}
}

// FeatureLabels maps feature ids to the human readable labels persisted on
// the quote. Bundled features are suffixed with "(inclus)".
func (e *Engine) FeatureLabels(siteType string, features []string) []string {
	labels := make([]string, 0, len(features))
	for _, f := range features {
		label := e.features[f].Label
		if label == "" {
			label = f
		}
		if e.IsBundled(siteType, f) {
			label = fmt.Sprintf("%s (inclus)", label)
		}
		labels = append(labels, label)
	}
	return labels
}

func (e *Engine) SiteTypeLabel(id string) string {
	if it, ok := e.siteTypes[id]; ok {
		return it.Label
	}
	return id
}

func (e *Engine) DesignTypeLabel(id string) string {
	if it, ok := e.designTypes[id]; ok {
		return it.Label
	}
	return id
}

func (e *Engine) MaintenancePlan(id string) MaintenancePlan {
	return e.plans[id]
}
