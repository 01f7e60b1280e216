// Package currency re-expresses calculation results in another currency using
// a caller-supplied rate snapshot. Conversion never fails: missing or unusable
// rate data degrades to returning the original amount.
package currency

import (
	"github.com/shopspring/decimal"

	"sitecost/core/determinism"
	"sitecost/core/types"
)

// StaticRates is the fallback table, relative to USD. Snapshot rates are
// overlaid on top of it.
var StaticRates = map[types.Currency]decimal.Decimal{
	types.CurrencyUSD: decimal.NewFromInt(1),
	types.CurrencyEUR: decimal.RequireFromString("0.92"),
	types.CurrencyGBP: decimal.RequireFromString("0.79"),
	types.CurrencyCAD: decimal.RequireFromString("1.36"),
	types.CurrencyAUD: decimal.RequireFromString("1.52"),
	types.CurrencyINR: decimal.RequireFromString("83.1"),
	types.CurrencyJPY: decimal.RequireFromString("149.5"),
}

// zero-decimal currencies
var precision = map[types.Currency]int32{
	types.CurrencyJPY: 0,
}

// Precision returns the number of decimal places amounts in c are rounded to
func Precision(c types.Currency) int32 {
	if p, ok := precision[c]; ok {
		return p
	}
	return determinism.MoneyPlaces
}

// StaticSnapshot returns the built-in table as a snapshot
func StaticSnapshot() types.CurrencyRatesSnapshot {
	rates := make(map[types.Currency]decimal.Decimal, len(StaticRates))
	for c, r := range StaticRates {
		rates[c] = r
	}
	return types.CurrencyRatesSnapshot{
		Base:   types.CurrencyUSD,
		Rates:  rates,
		Source: types.RateSourceStatic,
	}
}

// EnsureRates resolves the working rate table: the static defaults, overlaid
// with the snapshot's rates, with the snapshot's base pinned to 1. A nil
// snapshot yields the static table. The snapshot is not modified.
func EnsureRates(snapshot *types.CurrencyRatesSnapshot) map[types.Currency]decimal.Decimal {
	rates := make(map[types.Currency]decimal.Decimal, len(StaticRates))
	for c, r := range StaticRates {
		rates[c] = r
	}
	if snapshot == nil {
		return rates
	}
	for c, r := range snapshot.Rates {
		rates[types.NormalizeCurrency(string(c))] = r
	}
	if base := types.NormalizeCurrency(string(snapshot.Base)); base != "" {
		rates[base] = decimal.NewFromInt(1)
	}
	return rates
}
