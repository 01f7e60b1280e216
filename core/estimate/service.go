// Package estimate ties the engine, currency conversion and report metadata
// together for the CLI, the HTTP API and the batch runner.
package estimate

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitecost/core/currency"
	"sitecost/core/determinism"
	"sitecost/core/engine"
	"sitecost/core/output"
	"sitecost/core/ratetable"
	"sitecost/core/types"
	"sitecost/internal/errors"
	"sitecost/internal/logging"
)

// Request is one estimate request
type Request struct {
	// Input is the questionnaire answer set
	Input types.CalculationInput `json:"input" yaml:"input"`

	// Currency converts the result when set and different from the base
	Currency types.Currency `json:"currency,omitempty" yaml:"currency,omitempty"`

	// Rates overrides the service's snapshot for this request
	Rates *types.CurrencyRatesSnapshot `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// Service produces reports
type Service struct {
	engine *engine.Engine
	base   types.Currency
	rates  *types.CurrencyRatesSnapshot
	newID  func() string
	logger *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithBaseCurrency sets the currency hourly rates are quoted in
func WithBaseCurrency(c types.Currency) Option {
	return func(s *Service) {
		s.base = c
	}
}

// WithRates sets the default rate snapshot used for conversion
func WithRates(snapshot *types.CurrencyRatesSnapshot) Option {
	return func(s *Service) {
		s.rates = snapshot
	}
}

// WithIDGenerator replaces the estimate ID source
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a service pricing against table
func NewService(table *ratetable.Table, opts ...Option) *Service {
	s := &Service{
		base:  types.CurrencyUSD,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.base = types.NormalizeCurrency(string(s.base)); s.base == "" {
		s.base = types.CurrencyUSD
	}
	s.logger = logging.OrDefault(s.logger)
	s.engine = engine.New(table,
		engine.WithLogger(s.logger),
		engine.WithCurrency(s.base),
	)
	return s
}

// Table returns the rate table in use
func (s *Service) Table() *ratetable.Table {
	return s.engine.Table()
}

// BaseCurrency returns the currency results are calculated in
func (s *Service) BaseCurrency() types.Currency {
	return s.base
}

// Estimate normalizes req, calculates, optionally converts, and wraps the
// result in a report
func (s *Service) Estimate(req Request) (*output.Report, error) {
	req = Normalize(req)

	hash, err := InputHash(req.Input)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Calculate(req.Input)
	if err != nil {
		return nil, err
	}

	report := &output.Report{
		ID:               s.newID(),
		InputHash:        hash,
		RateTableVersion: s.Table().Version(),
		Input:            req.Input,
		Result:           result,
	}

	if target := req.Currency; target != "" && target != s.base {
		rates := req.Rates
		if rates == nil {
			rates = s.rates
		}
		report.Result = s.Convert(result, s.base, target, rates)
		report.Rates = rates
	}

	s.logger.Info("estimate produced",
		zap.String("id", report.ID),
		zap.String("input_hash", hash),
		zap.String("currency", string(report.Result.Currency)),
		zap.String("total_cost", report.Result.TotalCost.String()),
	)
	return report, nil
}

// Convert re-expresses result in another currency. A nil snapshot falls back
// to the service's snapshot and then to the static table.
func (s *Service) Convert(result types.CalculationResult, from, to types.Currency, rates *types.CurrencyRatesSnapshot) types.CalculationResult {
	if rates == nil {
		rates = s.rates
	}
	from = types.NormalizeCurrency(string(from))
	to = types.NormalizeCurrency(string(to))
	if from == to {
		return result
	}
	return currency.NewConverter(rates, currency.WithLogger(s.logger)).Result(result, from, to)
}

// InputHash fingerprints an input. Equal inputs share a hash.
func InputHash(input types.CalculationInput) (string, error) {
	h, err := determinism.HashJSON(input)
	if err != nil {
		return "", errors.Internal("failed to hash input", err)
	}
	return h.Hex(), nil
}
