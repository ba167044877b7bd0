package domain

const (
	SiteTypeVitrine   = "vitrine"
	SiteTypeEcommerce = "ecommerce"
	SiteTypeWebapp    = "webapp"

	DesignTypeTemplate = "template"
	DesignTypeCustom   = "custom"

	MaintenanceNone     = "none"
	MaintenanceMonthly  = "monthly"
	MaintenanceAnnually = "annually"

	FeatureUserAccounts = "user-accounts"
)

// QuoteConfiguration is what the visitor submits from the estimator.
type QuoteConfiguration struct {
	SiteType           string     `json:"siteType" validate:"required,oneof=vitrine ecommerce webapp"`
	DesignType         string     `json:"designType" validate:"required,oneof=template custom"`
	Features           []string   `json:"features" validate:"dive,required"`
	Maintenance        string     `json:"maintenance" validate:"required,oneof=none monthly annually"`
	ClientInfo         ClientInfo `json:"clientInfo"`
	ProjectDescription string     `json:"projectDescription,omitempty" validate:"max=5000"`
}

// UniqueFeatures returns the selected feature ids with duplicates removed,
// keeping first-occurrence order.
func (c QuoteConfiguration) UniqueFeatures() []string {
	seen := make(map[string]struct{}, len(c.Features))
	out := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func (c QuoteConfiguration) HasFeature(id string) bool {
	for _, f := range c.Features {
		if f == id {
			return true
		}
	}
	return false
}
