// Package determinism provides primitives for guaranteeing deterministic output.
// Every rounding step in the estimate goes through these helpers so that
// identical inputs always yield identical decimals.
package determinism

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the default number of decimal places for money
const MoneyPlaces int32 = 2

var (
	// HalfHour is the step total hours are rounded to
	HalfHour = decimal.RequireFromString("0.5")

	// QuarterHour is the step phase hours are rounded to
	QuarterHour = decimal.RequireFromString("0.25")

	hundred = decimal.NewFromInt(100)
)

// RoundMoney rounds half away from zero to places decimal places
func RoundMoney(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// RoundCents rounds to two decimal places
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundToStep rounds d to the nearest multiple of step (half away from zero).
// A non-positive step returns d unchanged.
func RoundToStep(d, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return d
	}
	return d.Div(step).Round(0).Mul(step)
}

// Percent converts a percentage such as 15 into the fraction 0.15
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// SortedKeys returns map keys in a stable order
func SortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}
