// Package retainer builds the advisory menu of recurring-support packages.
// Packages are offers only; they never contribute to the project total.
package retainer

import (
	"github.com/shopspring/decimal"

	"sitecost/core/determinism"
	"sitecost/core/ratetable"
	"sitecost/core/types"
)

var hundred = decimal.NewFromInt(100)

// Generator derives packages from the retainer configuration of a table
type Generator struct {
	specs []ratetable.RetainerSpec
}

// NewGenerator creates a generator for the given package specs
func NewGenerator(specs []ratetable.RetainerSpec) *Generator {
	return &Generator{specs: append([]ratetable.RetainerSpec(nil), specs...)}
}

// Generate returns one package per spec, in spec order. Included hours are
// the larger of the spec minimum and share% of totalHours rounded to whole
// hours; the fee is those hours at the effective rate less the discount.
func (g *Generator) Generate(totalHours, rate decimal.Decimal) []types.RetainerPackage {
	packages := make([]types.RetainerPackage, 0, len(g.specs))
	for _, spec := range g.specs {
		hours := totalHours.Mul(determinism.Percent(spec.SharePercent)).Round(0)
		if hours.LessThan(spec.MinHours) {
			hours = spec.MinHours
		}
		fee := monthlyFee(hours, rate, spec.DiscountPercent)

		// keep the menu strictly increasing even when shares round together
		if n := len(packages); n > 0 {
			prev := packages[n-1]
			for !hours.GreaterThan(prev.IncludedHours) || (rate.IsPositive() && !fee.GreaterThan(prev.MonthlyFee)) {
				hours = hours.Add(decimal.NewFromInt(1))
				fee = monthlyFee(hours, rate, spec.DiscountPercent)
			}
		}

		packages = append(packages, types.RetainerPackage{
			Name:          spec.Name,
			IncludedHours: hours,
			MonthlyFee:    fee,
		})
	}
	return packages
}

func monthlyFee(hours, rate, discountPercent decimal.Decimal) decimal.Decimal {
	return determinism.RoundCents(hours.Mul(rate).Mul(hundred.Sub(discountPercent)).Div(hundred))
}
