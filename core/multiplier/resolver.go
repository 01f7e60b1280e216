// Package multiplier resolves the five complexity axes into a composite
// multiplier.
//
// Combination rule: the hours factors of all five axes are multiplied
// together and then by the table's overhead factor. The rate factor is taken
// from the timeline axis alone (every other axis has a rate factor of 1, and
// the product is used so custom tables may surcharge elsewhere too).
package multiplier

import (
	"github.com/shopspring/decimal"

	"sitecost/core/ratetable"
	"sitecost/core/types"
)

// AxisFactor is the resolved factor of one axis
type AxisFactor struct {
	Axis   types.Axis
	Option types.Option
	Factor ratetable.Factor
}

// Composite is the combined effect of all five axes
type Composite struct {
	// Axes lists the per-axis factors in canonical axis order
	Axes []AxisFactor

	// Hours scales base hours into total hours (overhead included)
	Hours decimal.Decimal

	// Rate scales the caller's hourly rate into the effective rate
	Rate decimal.Decimal
}

// Resolver looks up axis factors in a rate table
type Resolver struct {
	table *ratetable.Table
}

// NewResolver creates a resolver over table
func NewResolver(table *ratetable.Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve looks up every axis and combines the factors. An unknown option on
// any axis fails the whole resolution.
func (r *Resolver) Resolve(m types.ComplexityMultipliers) (Composite, error) {
	c := Composite{
		Axes:  make([]AxisFactor, 0, len(types.Axes)),
		Hours: r.table.OverheadFactor(),
		Rate:  decimal.NewFromInt(1),
	}

	for _, axis := range types.Axes {
		option := m.Get(axis)
		f, err := r.table.Factor(axis, option)
		if err != nil {
			return Composite{}, err
		}
		c.Axes = append(c.Axes, AxisFactor{Axis: axis, Option: option, Factor: f})
		c.Hours = c.Hours.Mul(f.Hours)
		c.Rate = c.Rate.Mul(f.Rate)
	}
	return c, nil
}
