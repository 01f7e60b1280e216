package currency

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sitecost/core/determinism"
	"sitecost/core/types"
	"sitecost/internal/logging"
)

// Converter converts amounts against one resolved rate table
type Converter struct {
	rates  map[types.Currency]decimal.Decimal
	logger *zap.Logger
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger degraded conversions are reported to
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// NewConverter creates a converter over EnsureRates(snapshot)
func NewConverter(snapshot *types.CurrencyRatesSnapshot, opts ...Option) *Converter {
	c := &Converter{rates: EnsureRates(snapshot)}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDefault(c.logger)
	return c
}

// Rate returns the working rate of a currency, if usable
func (c *Converter) Rate(cur types.Currency) (decimal.Decimal, bool) {
	r, ok := c.rates[cur]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

// Amount converts value from one currency to another and rounds it to the
// target precision. The second return is false when rate data was missing
// and the rounded original value was returned instead.
func (c *Converter) Amount(value decimal.Decimal, from, to types.Currency) (decimal.Decimal, bool) {
	from, to = types.NormalizeCurrency(string(from)), types.NormalizeCurrency(string(to))
	places := Precision(to)
	if from == to {
		return determinism.RoundMoney(value, places), true
	}

	fromRate, okFrom := c.Rate(from)
	toRate, okTo := c.Rate(to)
	if !okFrom || !okTo {
		return determinism.RoundMoney(value, places), false
	}

	factor := toRate.Div(fromRate)
	return determinism.RoundMoney(value.Mul(factor), places), true
}

// Result returns a copy of result with every monetary field expressed in to.
// Hour quantities are never converted. When from equals to the result is
// returned as is.
func (c *Converter) Result(result types.CalculationResult, from, to types.Currency) types.CalculationResult {
	from, to = types.NormalizeCurrency(string(from)), types.NormalizeCurrency(string(to))
	if from == to {
		return result
	}

	degraded := false
	convert := func(v decimal.Decimal) decimal.Decimal {
		out, ok := c.Amount(v, from, to)
		if !ok {
			degraded = true
		}
		return out
	}

	out := result.Clone()
	out.TotalCost = convert(result.TotalCost)
	out.MaintenanceCost = convert(result.MaintenanceCost)
	out.EffectiveHourlyRate = convert(result.EffectiveHourlyRate)
	out.BufferCost = convert(result.BufferCost)
	for i := range out.LineItems {
		out.LineItems[i].Cost = convert(out.LineItems[i].Cost)
	}
	for i := range out.Addons {
		out.Addons[i].Cost = convert(out.Addons[i].Cost)
	}
	for i := range out.Retainers {
		out.Retainers[i].MonthlyFee = convert(out.Retainers[i].MonthlyFee)
	}
	if out.DeterministicTotals != nil {
		out.DeterministicTotals.TotalCost = convert(out.DeterministicTotals.TotalCost)
	}
	out.Currency = to

	if degraded {
		c.logger.Debug("missing rate data, amounts left unconverted",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}
	return out
}

// ConvertAmount converts a single value using EnsureRates(snapshot)
func ConvertAmount(value decimal.Decimal, from, to types.Currency, snapshot *types.CurrencyRatesSnapshot) decimal.Decimal {
	out, _ := NewConverter(snapshot).Amount(value, from, to)
	return out
}

// ConvertCalculationResult converts every monetary field of result
func ConvertCalculationResult(result types.CalculationResult, from, to types.Currency, snapshot *types.CurrencyRatesSnapshot) types.CalculationResult {
	if types.NormalizeCurrency(string(from)) == types.NormalizeCurrency(string(to)) {
		return result
	}
	return NewConverter(snapshot).Result(result, from, to)
}
