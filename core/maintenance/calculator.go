// Package maintenance derives the recurring monthly maintenance allocation.
package maintenance

import (
	"github.com/shopspring/decimal"

	"sitecost/core/determinism"
	"sitecost/core/ratetable"
	"sitecost/core/types"
)

// Estimate is the monthly maintenance allocation
type Estimate struct {
	Hours decimal.Decimal
	Cost  decimal.Decimal
}

// Calculator maps maintenance tiers to hours and cost
type Calculator struct {
	table *ratetable.Table
}

// NewCalculator creates a calculator over table
func NewCalculator(table *ratetable.Table) *Calculator {
	return &Calculator{table: table}
}

// Calculate returns the monthly hours and cost for a tier. Percentage tiers
// apply to base hours and are rounded to the half hour; the none tier yields
// exactly zero.
func (c *Calculator) Calculate(tier types.MaintenanceTier, baseHours, rate decimal.Decimal) (Estimate, error) {
	spec, err := c.table.Maintenance(tier)
	if err != nil {
		return Estimate{}, err
	}

	var hours decimal.Decimal
	switch {
	case spec.FlatHours.IsPositive():
		hours = spec.FlatHours
	case spec.Percent.IsPositive():
		hours = determinism.RoundToStep(baseHours.Mul(determinism.Percent(spec.Percent)), determinism.HalfHour)
		if hours.IsZero() {
			hours = determinism.HalfHour
		}
	default:
		return Estimate{Hours: decimal.Zero, Cost: decimal.Zero}, nil
	}

	return Estimate{
		Hours: hours,
		Cost:  determinism.RoundCents(hours.Mul(rate)),
	}, nil
}
