// Package engine provides the deterministic cost-calculation engine.
// CLI and HTTP are thin wrappers around this engine.
//
// Calculate is a pure function of its input and the rate table: it performs
// no I/O, holds no mutable state and is safe for concurrent use.
package engine

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sitecost/core/determinism"
	"sitecost/core/lineitem"
	"sitecost/core/maintenance"
	"sitecost/core/multiplier"
	"sitecost/core/ratetable"
	"sitecost/core/retainer"
	"sitecost/core/types"
	"sitecost/internal/errors"
	"sitecost/internal/logging"
)

// Engine turns a questionnaire answer set into an itemized estimate
type Engine struct {
	table       *ratetable.Table
	resolver    *multiplier.Resolver
	lines       *lineitem.Builder
	maintenance *maintenance.Calculator
	retainers   *retainer.Generator
	currency    types.Currency
	logger      *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithCurrency sets the currency hourly rates are quoted in (default usd)
func WithCurrency(c types.Currency) Option {
	return func(e *Engine) {
		e.currency = c
	}
}

// New creates an engine over table
func New(table *ratetable.Table, opts ...Option) *Engine {
	e := &Engine{
		table:       table,
		resolver:    multiplier.NewResolver(table),
		lines:       lineitem.NewBuilder(table.Phases()),
		maintenance: maintenance.NewCalculator(table),
		retainers:   retainer.NewGenerator(table.Retainers()),
		currency:    types.CurrencyUSD,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrDefault(e.logger)
	return e
}

// Table returns the rate table the engine prices against
func (e *Engine) Table() *ratetable.Table {
	return e.table
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return New(ratetable.Default())
})

// CalculateCost prices input against the built-in rate table
func CalculateCost(input types.CalculationInput) (types.CalculationResult, error) {
	return defaultEngine().Calculate(input)
}

// Calculate produces the full breakdown for input. It fails on an invalid
// (project type, tier) pair, a non-positive hourly rate, or an unknown
// option, and never returns a partial result.
func (e *Engine) Calculate(input types.CalculationInput) (types.CalculationResult, error) {
	tierSpec, err := e.table.Tier(input.ProjectType, input.Tier)
	if err != nil {
		return types.CalculationResult{}, err
	}
	if !input.HourlyRate.IsPositive() {
		return types.CalculationResult{}, errors.InvalidNumeric("hourlyRate", "must be a positive number").
			WithContext("value", input.HourlyRate.String())
	}

	composite, err := e.resolver.Resolve(input.Multipliers)
	if err != nil {
		return types.CalculationResult{}, err
	}

	baseHours := tierSpec.BaseHours
	totalHours := determinism.RoundToStep(baseHours.Mul(composite.Hours), determinism.HalfHour)
	if totalHours.LessThan(baseHours) {
		totalHours = baseHours
	}
	rate := determinism.RoundCents(input.HourlyRate.Mul(composite.Rate))
	if !rate.IsPositive() {
		return types.CalculationResult{}, errors.InvalidNumeric("hourlyRate", "effective hourly rate rounds to zero").
			WithContext("value", input.HourlyRate.String())
	}

	addons, err := e.addons(input.ProjectType, input.Addons, rate)
	if err != nil {
		return types.CalculationResult{}, err
	}

	var maint maintenance.Estimate
	if input.Maintenance.IsNone() {
		maint = maintenance.Estimate{Hours: decimal.Zero, Cost: decimal.Zero}
	} else {
		maint, err = e.maintenance.Calculate(input.Maintenance, baseHours, rate)
		if err != nil {
			return types.CalculationResult{}, err
		}
	}

	lineItems := e.lines.Build(totalHours, rate)
	subtotal := lineitem.Subtotal(lineItems)
	buffer := determinism.RoundCents(subtotal.Mul(determinism.Percent(tierSpec.BufferPercent)))

	totalCost := subtotal.Add(buffer)
	for _, addon := range addons {
		totalCost = totalCost.Add(addon.Cost)
	}

	result := types.CalculationResult{
		BaseHours:           baseHours,
		TotalHours:          totalHours,
		BufferCost:          buffer,
		TotalCost:           totalCost,
		EffectiveHourlyRate: rate,
		MaintenanceHours:    maint.Hours,
		MaintenanceCost:     maint.Cost,
		LineItems:           lineItems,
		Addons:              addons,
		Retainers:           e.retainers.Generate(totalHours, rate),
		DeterministicTotals: &types.DeterministicTotals{
			TotalHours: totalHours,
			TotalCost:  totalCost,
		},
		Currency:    e.currency,
		Assumptions: e.assumptions(input, tierSpec, composite),
	}

	e.logger.Debug("calculated estimate",
		zap.String("project_type", string(input.ProjectType)),
		zap.String("tier", string(input.Tier)),
		zap.String("composite", composite.Hours.String()),
		zap.String("total_hours", totalHours.String()),
		zap.String("total_cost", totalCost.String()),
	)
	return result, nil
}

// addons returns the project type's default addons followed by the selected
// optional ones, both in table order
func (e *Engine) addons(pt types.ProjectType, selected []string, rate decimal.Decimal) ([]types.Addon, error) {
	offered := e.table.Addons(pt)

	want := make(map[string]bool, len(selected))
	for _, key := range selected {
		found := false
		for _, spec := range offered {
			if spec.Key == key {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Inputf("addon %q is not offered for project type %q", key, string(pt))
		}
		want[key] = true
	}

	addons := make([]types.Addon, 0, len(offered))
	for _, spec := range offered {
		if !spec.Default && !want[spec.Key] {
			continue
		}
		addons = append(addons, types.Addon{
			Key:   spec.Key,
			Label: spec.Label,
			Hours: spec.Hours,
			Cost:  determinism.RoundCents(spec.Hours.Mul(rate)),
		})
	}
	return addons, nil
}

func (e *Engine) assumptions(input types.CalculationInput, tier ratetable.TierSpec, c multiplier.Composite) []string {
	out := []string{
		fmt.Sprintf("%s (%s) starts from %s base hours", e.table.ProjectLabel(input.ProjectType), input.Tier, tier.BaseHours),
		fmt.Sprintf("Complexity and project management overhead scale hours by %s", c.Hours.StringFixed(4)),
	}
	if !c.Rate.Equal(decimal.NewFromInt(1)) {
		out = append(out, fmt.Sprintf("%s timeline is billed at %s× the hourly rate", input.Multipliers.Timeline, c.Rate))
	}
	if tier.BufferPercent.IsPositive() {
		out = append(out, fmt.Sprintf("A %s%% contingency buffer is added to phase costs", tier.BufferPercent))
	}
	if !input.Maintenance.IsNone() {
		out = append(out, "Maintenance is billed monthly and is not included in the project total")
	}
	if input.Assumptions != "" {
		out = append(out, input.Assumptions)
	}
	return out
}
