// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

// ProjectType identifies the kind of website being estimated
type ProjectType string

const (
	ProjectLandingPage   ProjectType = "landing_page"
	ProjectMarketingSite ProjectType = "marketing_site"
	ProjectEcommerce     ProjectType = "ecommerce"
	ProjectWebApp        ProjectType = "web_app"
)

// String returns the string representation
func (p ProjectType) String() string {
	return string(p)
}

// Tier is a delivery scope level. A tier is only meaningful together with a
// project type; the rate table owns the valid pairs.
type Tier string

const (
	TierSimple       Tier = "simple"
	TierStandard     Tier = "standard"
	TierPremium      Tier = "premium"
	TierStarter      Tier = "starter"
	TierEnterprise   Tier = "enterprise"
	TierMVP          Tier = "mvp"
	TierStandardCRUD Tier = "standard_crud"
	TierComplex      Tier = "complex"
)

// String returns the string representation
func (t Tier) String() string {
	return string(t)
}

// Axis names one of the five complexity dimensions
type Axis string

const (
	AxisDesign        Axis = "design"
	AxisFunctionality Axis = "functionality"
	AxisContent       Axis = "content"
	AxisTechnical     Axis = "technical"
	AxisTimeline      Axis = "timeline"
)

// Axes lists the complexity axes in canonical order
var Axes = []Axis{AxisDesign, AxisFunctionality, AxisContent, AxisTechnical, AxisTimeline}

// Option is an enumerated value on a complexity axis
type Option string

const (
	// design
	DesignStandard Option = "standard"
	DesignCustom   Option = "custom"
	DesignPremium  Option = "premium"

	// functionality
	FunctionalityBasic    Option = "basic"
	FunctionalityModerate Option = "moderate"
	FunctionalityAdvanced Option = "advanced"

	// content
	ContentExisting  Option = "existing"
	ContentLightCopy Option = "light_copy"
	ContentFullCopy  Option = "full_copy"

	// technical
	TechnicalBasic        Option = "basic"
	TechnicalIntegrations Option = "integrations"
	TechnicalComplex      Option = "complex"

	// timeline
	TimelineStandard    Option = "standard"
	TimelineAccelerated Option = "accelerated"
	TimelineRush        Option = "rush"
)

// ComplexityMultipliers holds one option per complexity axis
type ComplexityMultipliers struct {
	Design        Option `json:"design" yaml:"design"`
	Functionality Option `json:"functionality" yaml:"functionality"`
	Content       Option `json:"content" yaml:"content"`
	Technical     Option `json:"technical" yaml:"technical"`
	Timeline      Option `json:"timeline" yaml:"timeline"`
}

// Get returns the option selected on an axis
func (m ComplexityMultipliers) Get(axis Axis) Option {
	switch axis {
	case AxisDesign:
		return m.Design
	case AxisFunctionality:
		return m.Functionality
	case AxisContent:
		return m.Content
	case AxisTechnical:
		return m.Technical
	case AxisTimeline:
		return m.Timeline
	default:
		return ""
	}
}

// BaselineMultipliers returns the cheapest option on every axis
func BaselineMultipliers() ComplexityMultipliers {
	return ComplexityMultipliers{
		Design:        DesignStandard,
		Functionality: FunctionalityBasic,
		Content:       ContentExisting,
		Technical:     TechnicalBasic,
		Timeline:      TimelineStandard,
	}
}

// MaintenanceTier is the ongoing maintenance level
type MaintenanceTier string

const (
	MaintenanceNone     MaintenanceTier = "none"
	MaintenanceLight    MaintenanceTier = "light"
	MaintenanceStandard MaintenanceTier = "standard"
	MaintenanceRetainer MaintenanceTier = "retainer"
)

// Rank orders maintenance tiers: none < light < standard < retainer.
// Unknown tiers rank -1.
func (m MaintenanceTier) Rank() int {
	switch m {
	case MaintenanceNone, "":
		return 0
	case MaintenanceLight:
		return 1
	case MaintenanceStandard:
		return 2
	case MaintenanceRetainer:
		return 3
	default:
		return -1
	}
}

// IsNone reports whether no maintenance was requested. Empty means none.
func (m MaintenanceTier) IsNone() bool {
	return m == MaintenanceNone || m == ""
}

// String returns the string representation
func (m MaintenanceTier) String() string {
	return string(m)
}
