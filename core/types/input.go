package types

import "github.com/shopspring/decimal"

// CalculationInput is a validated questionnaire answer set.
// It is owned by the caller; the engine never mutates it.
type CalculationInput struct {
	ProjectType ProjectType           `json:"projectType" yaml:"projectType"`
	Tier        Tier                  `json:"tier" yaml:"tier"`
	HourlyRate  decimal.Decimal       `json:"hourlyRate" yaml:"hourlyRate"`
	Multipliers ComplexityMultipliers `json:"multipliers" yaml:"multipliers"`
	Maintenance MaintenanceTier       `json:"maintenance" yaml:"maintenance"`

	// Assumptions is free text supplied by the requester
	Assumptions string `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`

	// Addons selects optional addons on top of the project type defaults
	Addons []string `json:"addons,omitempty" yaml:"addons,omitempty"`
}
