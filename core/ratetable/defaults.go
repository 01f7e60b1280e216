package ratetable

import (
	"sync"

	"github.com/shopspring/decimal"

	"sitecost/core/types"
)

// DefaultVersion labels the built-in tables
const DefaultVersion = "2024.1"

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table. It is built once and shared.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = MustNew(DefaultDefinition())
	})
	return defaultTable
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tier(base, buffer string) TierSpec {
	return TierSpec{BaseHours: d(base), BufferPercent: d(buffer)}
}

func factor(hours string) Factor {
	return Factor{Hours: d(hours), Rate: one}
}

// DefaultDefinition returns the built-in tables as an editable definition
func DefaultDefinition() Definition {
	return Definition{
		Version:        DefaultVersion,
		OverheadFactor: d("1.10"),
		Projects: map[types.ProjectType]ProjectSpec{
			types.ProjectLandingPage: {
				Label: "Landing page",
				Tiers: map[types.Tier]TierSpec{
					types.TierSimple:   tier("24", "5"),
					types.TierStandard: tier("40", "8"),
					types.TierPremium:  tier("64", "10"),
				},
				Addons: []AddonSpec{
					{Key: "analytics_setup", Label: "Analytics & tracking setup", Hours: d("3")},
				},
			},
			types.ProjectMarketingSite: {
				Label: "Marketing site",
				Tiers: map[types.Tier]TierSpec{
					types.TierSimple:   tier("60", "5"),
					types.TierStandard: tier("100", "8"),
					types.TierPremium:  tier("160", "10"),
				},
				Addons: []AddonSpec{
					{Key: "cms_setup", Label: "CMS setup & training", Hours: d("6"), Default: true},
					{Key: "seo_foundation", Label: "SEO foundation", Hours: d("8")},
				},
			},
			types.ProjectEcommerce: {
				Label: "E-commerce store",
				Tiers: map[types.Tier]TierSpec{
					types.TierStarter:    tier("120", "8"),
					types.TierStandard:   tier("200", "10"),
					types.TierEnterprise: tier("360", "12"),
				},
				Addons: []AddonSpec{
					{Key: "payment_gateway", Label: "Payment gateway integration", Hours: d("12"), Default: true},
					{Key: "product_import", Label: "Product catalog import", Hours: d("10")},
				},
			},
			types.ProjectWebApp: {
				Label: "Web application",
				Tiers: map[types.Tier]TierSpec{
					types.TierMVP:          tier("160", "10"),
					types.TierStandardCRUD: tier("240", "12"),
					types.TierComplex:      tier("480", "15"),
				},
				Addons: []AddonSpec{
					{Key: "auth_roles", Label: "Authentication & roles", Hours: d("16"), Default: true},
					{Key: "admin_dashboard", Label: "Admin dashboard", Hours: d("24")},
				},
			},
		},
		Factors: map[types.Axis]map[types.Option]Factor{
			types.AxisDesign: {
				types.DesignStandard: factor("1.0"),
				types.DesignCustom:   factor("1.25"),
				types.DesignPremium:  factor("1.5"),
			},
			types.AxisFunctionality: {
				types.FunctionalityBasic:    factor("1.0"),
				types.FunctionalityModerate: factor("1.2"),
				types.FunctionalityAdvanced: factor("1.45"),
			},
			types.AxisContent: {
				types.ContentExisting:  factor("1.0"),
				types.ContentLightCopy: factor("1.1"),
				types.ContentFullCopy:  factor("1.25"),
			},
			types.AxisTechnical: {
				types.TechnicalBasic:        factor("1.0"),
				types.TechnicalIntegrations: factor("1.15"),
				types.TechnicalComplex:      factor("1.35"),
			},
			types.AxisTimeline: {
				types.TimelineStandard:    {Hours: d("1.0"), Rate: d("1.0")},
				types.TimelineAccelerated: {Hours: d("1.05"), Rate: d("1.10")},
				types.TimelineRush:        {Hours: d("1.10"), Rate: d("1.25")},
			},
		},
		Maintenance: map[types.MaintenanceTier]MaintenanceSpec{
			types.MaintenanceNone:     {},
			types.MaintenanceLight:    {Percent: d("5")},
			types.MaintenanceStandard: {Percent: d("10")},
			types.MaintenanceRetainer: {FlatHours: d("20")},
		},
		Phases: []Phase{
			{Key: "discovery", Label: "Discovery & planning", Share: d("10")},
			{Key: "design", Label: "Design", Share: d("20")},
			{Key: "development", Label: "Development", Share: d("45")},
			{Key: "content_qa", Label: "Content & QA", Share: d("15")},
			{Key: "launch", Label: "Launch & handoff", Share: d("10")},
		},
		Retainers: []RetainerSpec{
			{Name: "Basic", SharePercent: d("5"), MinHours: d("2"), DiscountPercent: d("5")},
			{Name: "Standard", SharePercent: d("10"), MinHours: d("4"), DiscountPercent: d("10")},
			{Name: "Premium", SharePercent: d("20"), MinHours: d("8"), DiscountPercent: d("15")},
		},
	}
}
