package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a lower-case ISO 4217 code
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyGBP Currency = "gbp"
	CurrencyCAD Currency = "cad"
	CurrencyAUD Currency = "aud"
	CurrencyINR Currency = "inr"
	CurrencyJPY Currency = "jpy"
)

// NormalizeCurrency trims and lower-cases a currency code
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToLower(strings.TrimSpace(code)))
}

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// RateSource records where a rate snapshot came from. It is metadata only.
type RateSource string

const (
	RateSourceLive   RateSource = "live"
	RateSourceCache  RateSource = "cache"
	RateSourceStatic RateSource = "static"
)

// CurrencyRatesSnapshot is a point-in-time table of conversion factors
// relative to Base. It is supplied by the caller and never modified.
type CurrencyRatesSnapshot struct {
	Base      Currency                     `json:"base" yaml:"base"`
	Rates     map[Currency]decimal.Decimal `json:"rates" yaml:"rates"`
	FetchedAt time.Time                    `json:"fetchedAt" yaml:"fetchedAt"`
	Source    RateSource                   `json:"source" yaml:"source"`
	Stale     bool                         `json:"stale,omitempty" yaml:"stale,omitempty"`
}
