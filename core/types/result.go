package types

import "github.com/shopspring/decimal"

// LineItem is one work phase of the estimate
type LineItem struct {
	Label string          `json:"label"`
	Hours decimal.Decimal `json:"hours"`
	Cost  decimal.Decimal `json:"cost"`
}

// Addon is an extra deliverable priced on top of the phases
type Addon struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Hours decimal.Decimal `json:"hours"`
	Cost  decimal.Decimal `json:"cost"`
}

// RetainerPackage is an advisory recurring-support offer. It never
// contributes to the project total.
type RetainerPackage struct {
	Name          string          `json:"name"`
	IncludedHours decimal.Decimal `json:"includedHours"`
	MonthlyFee    decimal.Decimal `json:"monthlyFee"`
}

// DeterministicTotals keeps the rule-engine totals next to any later
// adjustment of the headline figures.
type DeterministicTotals struct {
	TotalHours decimal.Decimal `json:"totalHours"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

// CalculationResult is the itemized estimate. It is a value object: once
// produced it is never mutated, transformations build a new one.
//
// The JSON shape is stored and served as-is, so changes must be additive.
type CalculationResult struct {
	BaseHours           decimal.Decimal      `json:"baseHours"`
	TotalHours          decimal.Decimal      `json:"totalHours"`
	BufferCost          decimal.Decimal      `json:"bufferCost"`
	TotalCost           decimal.Decimal      `json:"totalCost"`
	EffectiveHourlyRate decimal.Decimal      `json:"effectiveHourlyRate"`
	MaintenanceHours    decimal.Decimal      `json:"maintenanceHours"`
	MaintenanceCost     decimal.Decimal      `json:"maintenanceCost"`
	LineItems           []LineItem           `json:"lineItems"`
	Addons              []Addon              `json:"addons"`
	Retainers           []RetainerPackage    `json:"retainers"`
	DeterministicTotals *DeterministicTotals `json:"deterministicTotals,omitempty"`

	// Currency is the currency every monetary field is expressed in
	Currency Currency `json:"currency"`

	// Assumptions lists what the estimate took for granted
	Assumptions []string `json:"assumptions,omitempty"`
}

// LineItemSubtotal sums the cost of every line item
func (r CalculationResult) LineItemSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.LineItems {
		total = total.Add(item.Cost)
	}
	return total
}

// AddonSubtotal sums the cost of every addon
func (r CalculationResult) AddonSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, addon := range r.Addons {
		total = total.Add(addon.Cost)
	}
	return total
}

// Clone returns a copy that shares no slices or pointers with r
func (r CalculationResult) Clone() CalculationResult {
	out := r
	if r.LineItems != nil {
		out.LineItems = append([]LineItem(nil), r.LineItems...)
	}
	if r.Addons != nil {
		out.Addons = append([]Addon(nil), r.Addons...)
	}
	if r.Retainers != nil {
		out.Retainers = append([]RetainerPackage(nil), r.Retainers...)
	}
	if r.Assumptions != nil {
		out.Assumptions = append([]string(nil), r.Assumptions...)
	}
	if r.DeterministicTotals != nil {
		totals := *r.DeterministicTotals
		out.DeterministicTotals = &totals
	}
	return out
}
