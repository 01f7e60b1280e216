package estimate

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sitecost/core/ratetable"
	"sitecost/core/types"
	"sitecost/internal/errors"
)

func testService(opts ...Option) *Service {
	opts = append([]Option{
		WithLogger(zap.NewNop()),
		WithIDGenerator(func() string { return "est-1" }),
	}, opts...)
	return NewService(ratetable.Default(), opts...)
}

func landingPage() types.CalculationInput {
	return types.CalculationInput{
		ProjectType: types.ProjectLandingPage,
		Tier:        types.TierSimple,
		HourlyRate:  decimal.NewFromInt(95),
		Multipliers: types.BaselineMultipliers(),
		Maintenance: types.MaintenanceLight,
	}
}

func TestEstimateReport(t *testing.T) {
	report, err := testService().Estimate(Request{Input: landingPage()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.ID != "est-1" {
		t.Errorf("expected injected id, got %s", report.ID)
	}
	if len(report.InputHash) != 64 {
		t.Errorf("expected a sha256 hex hash, got %q", report.InputHash)
	}
	if report.RateTableVersion != ratetable.DefaultVersion {
		t.Errorf("expected version %s, got %s", ratetable.DefaultVersion, report.RateTableVersion)
	}
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("2643.38")) {
		t.Errorf("unexpected total %s", report.Result.TotalCost)
	}
	if report.Result.Currency != types.CurrencyUSD || report.Rates != nil {
		t.Errorf("expected an unconverted usd result, got %s", report.Result.Currency)
	}
}

func TestEstimateConvertsCurrency(t *testing.T) {
	snapshot := &types.CurrencyRatesSnapshot{
		Base:  types.CurrencyUSD,
		Rates: map[types.Currency]decimal.Decimal{types.CurrencyEUR: decimal.RequireFromString("0.5")},
	}

	report, err := testService().Estimate(Request{Input: landingPage(), Currency: "EUR", Rates: snapshot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Result.Currency != types.CurrencyEUR {
		t.Errorf("expected eur, got %s", report.Result.Currency)
	}
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("1321.69")) {
		t.Errorf("expected 1321.69, got %s", report.Result.TotalCost)
	}
	if !report.Result.TotalHours.Equal(decimal.RequireFromString("26.5")) {
		t.Errorf("hours must not be converted, got %s", report.Result.TotalHours)
	}
	if report.Rates != snapshot {
		t.Error("expected the snapshot to be recorded on the report")
	}
}

func TestEstimateUsesServiceRates(t *testing.T) {
	snapshot := &types.CurrencyRatesSnapshot{
		Base:  types.CurrencyUSD,
		Rates: map[types.Currency]decimal.Decimal{types.CurrencyGBP: decimal.NewFromInt(2)},
	}
	s := testService(WithRates(snapshot))

	report, err := s.Estimate(Request{Input: landingPage(), Currency: types.CurrencyGBP})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("5286.76")) {
		t.Errorf("expected 5286.76, got %s", report.Result.TotalCost)
	}
}

func TestEstimateSameCurrencyIsNotConverted(t *testing.T) {
	s := testService(WithBaseCurrency("EUR"))

	report, err := s.Estimate(Request{Input: landingPage(), Currency: types.CurrencyEUR})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Result.Currency != types.CurrencyEUR || report.Rates != nil {
		t.Errorf("expected an unconverted eur result, got %s", report.Result.Currency)
	}
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("2643.38")) {
		t.Errorf("unexpected total %s", report.Result.TotalCost)
	}
}

func TestEstimatePropagatesErrors(t *testing.T) {
	input := landingPage()
	input.Tier = types.TierStandardCRUD

	report, err := testService().Estimate(Request{Input: input})
	if !errors.IsType(err, errors.TypeTierMismatch) {
		t.Fatalf("expected TIER_MISMATCH, got %v", err)
	}
	if report != nil {
		t.Errorf("expected no report, got %+v", report)
	}
}

func TestInputHashStable(t *testing.T) {
	a := landingPage()
	b := landingPage()
	b.HourlyRate = decimal.RequireFromString("95.00")

	ha, _ := InputHash(a)
	hb, _ := InputHash(b)
	if ha != hb {
		t.Errorf("expected equal inputs to hash equally: %s vs %s", ha, hb)
	}

	b.Tier = types.TierStandard
	hc, _ := InputHash(b)
	if hc == ha {
		t.Error("expected different inputs to hash differently")
	}
}

func TestConvertIdentity(t *testing.T) {
	s := testService()
	report, _ := s.Estimate(Request{Input: landingPage()})

	out := s.Convert(report.Result, "USD", types.CurrencyUSD, nil)
	if !out.TotalCost.Equal(report.Result.TotalCost) || out.Currency != types.CurrencyUSD {
		t.Errorf("expected identity conversion, got %+v", out)
	}
}
