package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sitecost/core/estimate"
	"sitecost/core/output"
	"sitecost/core/ratetable"
	"sitecost/core/types"
	"sitecost/internal/config"
	"sitecost/internal/errors"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeReport(t *testing.T, data string) output.Report {
	t.Helper()
	var report output.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		t.Fatalf("failed to decode report: %v\n%s", err, data)
	}
	return report
}

// storeConfig writes a config whose store lives in a temp directory
func storeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sitecost.yaml")
	content := fmt.Sprintf(`storage:
  driver: sqlite
  dsn: %s
logging:
  level: error
`, filepath.Join(dir, "estimates.db"))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEstimateJSON(t *testing.T) {
	stdout, _, err := execute(t, "estimate",
		"--project-type", "landing_page", "--tier", "simple", "--rate", "95",
		"--maintenance", "light", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := decodeReport(t, stdout)
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("2643.38")) {
		t.Errorf("expected total 2643.38, got %s", report.Result.TotalCost)
	}
	if !report.Result.TotalHours.Equal(decimal.RequireFromString("26.5")) {
		t.Errorf("expected 26.5 hours, got %s", report.Result.TotalHours)
	}
	if report.Result.Currency != types.CurrencyUSD {
		t.Errorf("expected usd, got %s", report.Result.Currency)
	}
}

func TestEstimateMarkdown(t *testing.T) {
	stdout, _, err := execute(t, "estimate", "-p", "landing_page", "-t", "simple", "-r", "95", "-f", "markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "| **Total** | **26.50** | **USD 2643.38** |") {
		t.Errorf("expected a markdown total row, got:\n%s", stdout)
	}
}

func TestEstimateFlagsAndAddons(t *testing.T) {
	stdout, _, err := execute(t, "estimate",
		"-p", "web_app", "-t", "standard_crud", "-r", "120",
		"--design", "custom", "--functionality", "moderate", "--timeline", "rush",
		"-m", "standard", "--addon", "admin_dashboard", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := decodeReport(t, stdout)
	if !report.Result.TotalCost.Equal(decimal.NewFromInt(79164)) {
		t.Errorf("expected total 79164, got %s", report.Result.TotalCost)
	}
	if len(report.Result.Addons) != 2 || report.Result.Addons[1].Key != "admin_dashboard" {
		t.Errorf("unexpected addons %+v", report.Result.Addons)
	}
}

func TestEstimateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.Type
	}{
		{"tier mismatch", []string{"-p", "landing_page", "-t", "standard_crud", "-r", "95"}, errors.TypeTierMismatch},
		{"zero rate", []string{"-p", "landing_page", "-t", "simple", "-r", "0"}, errors.TypeInvalidNumeric},
		{"unknown option", []string{"-p", "landing_page", "-t", "simple", "--design", "baroque"}, errors.TypeInput},
		{"unknown format", []string{"-p", "landing_page", "-t", "simple", "-f", "html"}, errors.TypeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"estimate"}, tt.args...)...)
			if !errors.IsType(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestEstimateRequiresProjectType(t *testing.T) {
	_, _, err := execute(t, "estimate", "--tier", "simple")
	if err == nil || !strings.Contains(err.Error(), "--project-type") {
		t.Errorf("expected a missing project type error, got %v", err)
	}
}

func TestEstimateInputFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.yaml")
	content := `input:
  projectType: landing_page
  tier: simple
  hourlyRate: 95
  multipliers:
    design: standard
    functionality: basic
    content: existing
    technical: basic
    timeline: standard
  maintenance: light
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "estimate", "--input", path, "--currency", "EUR", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := decodeReport(t, stdout)
	if report.Result.Currency != types.CurrencyEUR {
		t.Errorf("expected eur, got %s", report.Result.Currency)
	}
	if report.Input.Maintenance != types.MaintenanceLight {
		t.Errorf("expected the file's maintenance tier to survive, got %s", report.Input.Maintenance)
	}
	if !report.Result.TotalHours.Equal(decimal.RequireFromString("26.5")) {
		t.Errorf("hours must not change with currency, got %s", report.Result.TotalHours)
	}
}

func TestEstimateWritesOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.pdf")
	stdout, _, err := execute(t, "estimate", "-p", "landing_page", "-t", "simple", "-r", "95", "-f", "pdf", "-o", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected nothing on stdout, got %q", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected a PDF document")
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--amount", "100", "--from", "usd", "--to", "eur"}, "USD 100.00 = EUR 92.00"},
		{[]string{"--amount", "10", "--to", "JPY"}, "USD 10.00 = JPY 1495"},
		{[]string{"--amount", "42.5", "--from", "eur", "--to", "eur"}, "EUR 42.50 = EUR 42.50"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"convert"}, tt.args...)...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.TrimSpace(stdout) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	stdout, stderr, err := execute(t, "convert", "--amount", "12.345", "--to", "xyz", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		Amount    decimal.Decimal `json:"amount"`
		Converted bool            `json:"converted"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if got.Converted || !got.Amount.Equal(decimal.RequireFromString("12.35")) {
		t.Errorf("expected the rounded original, got %+v", got)
	}
	if !strings.Contains(stderr, "no rate") {
		t.Errorf("expected a warning, got %q", stderr)
	}
}

func TestTables(t *testing.T) {
	stdout, _, err := execute(t, "tables")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"landing_page/simple", "web_app/admin_dashboard", "rush", "retainer"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestTablesJSON(t *testing.T) {
	stdout, _, err := execute(t, "tables", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var summary ratetable.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if summary.Version != ratetable.DefaultVersion {
		t.Errorf("expected version %s, got %s", ratetable.DefaultVersion, summary.Version)
	}
	if len(summary.Projects) != 4 || len(summary.Axes) != len(types.Axes) {
		t.Errorf("unexpected summary shape: %d projects, %d axes", len(summary.Projects), len(summary.Axes))
	}
}

func TestRatesShow(t *testing.T) {
	stdout, _, err := execute(t, "rates", "show", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snapshot types.CurrencyRatesSnapshot
	if err := json.Unmarshal([]byte(stdout), &snapshot); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if snapshot.Base != types.CurrencyUSD || snapshot.Source != types.RateSourceStatic {
		t.Errorf("expected the static usd snapshot, got %s/%s", snapshot.Base, snapshot.Source)
	}

	table, _, err := execute(t, "rates", "show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(table, "149.5") {
		t.Errorf("expected the jpy rate in the table, got:\n%s", table)
	}
}

func TestBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.json")
	reqs := []estimate.Request{
		{Input: types.CalculationInput{
			ProjectType: types.ProjectLandingPage,
			Tier:        types.TierSimple,
			HourlyRate:  decimal.NewFromInt(95),
			Multipliers: types.BaselineMultipliers(),
			Maintenance: types.MaintenanceLight,
		}},
		{Input: types.CalculationInput{
			ProjectType: types.ProjectLandingPage,
			Tier:        types.TierComplex,
			HourlyRate:  decimal.NewFromInt(95),
			Multipliers: types.BaselineMultipliers(),
		}},
	}
	data, _ := json.Marshal(reqs)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "batch", path, "-q", "--format", "json")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("expected a partial failure error, got %v", err)
	}

	var result estimate.BatchResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to decode: %v\n%s", err, stdout)
	}
	if result.SuccessCount != 1 || result.FailureCount != 1 {
		t.Errorf("expected 1/1, got %d/%d", result.SuccessCount, result.FailureCount)
	}
	if result.Items[1].ErrorCode != string(errors.TypeTierMismatch) {
		t.Errorf("expected TIER_MISMATCH, got %q", result.Items[1].ErrorCode)
	}

	table, _, _ := execute(t, "batch", path, "-q")
	if !strings.Contains(table, "USD 2643.38") || !strings.Contains(table, "1 succeeded, 1 failed") {
		t.Errorf("unexpected table output:\n%s", table)
	}
}

func TestBatchRejectsMarkdown(t *testing.T) {
	_, _, err := execute(t, "batch", "requests.json", "--format", "markdown")
	if err == nil || !strings.Contains(err.Error(), "cli and json") {
		t.Errorf("expected a format error, got %v", err)
	}
}

func TestSaveAndHistory(t *testing.T) {
	cfg := storeConfig(t)

	stdout, stderr, err := execute(t, "--config", cfg, "estimate",
		"-p", "marketing_site", "-t", "standard", "-r", "110", "--save", "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := decodeReport(t, stdout)
	if !strings.Contains(stderr, saved.ID) {
		t.Errorf("expected the saved id on stderr, got %q", stderr)
	}

	listed, _, err := execute(t, "--config", cfg, "history", "list", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(listed, saved.ID) {
		t.Errorf("expected %s in listing:\n%s", saved.ID, listed)
	}

	shown, _, err := execute(t, "--config", cfg, "history", "show", saved.ID, "-f", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := decodeReport(t, shown)
	if !report.Result.TotalCost.Equal(saved.Result.TotalCost) || report.InputHash != saved.InputHash {
		t.Errorf("stored report differs from the original")
	}

	_, _, err = execute(t, "--config", cfg, "history", "show", "missing-id")
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestHistoryEmpty(t *testing.T) {
	stdout, _, err := execute(t, "--config", storeConfig(t), "history", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No saved estimates") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitecost.toml")

	if _, _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Pricing.Currency != types.CurrencyUSD {
		t.Errorf("expected usd, got %s", cfg.Pricing.Currency)
	}

	if _, _, err := execute(t, "config", "init", path); err == nil {
		t.Errorf("expected init to refuse an existing file")
	}

	stdout, _, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "hourly_rate: 100") {
		t.Errorf("expected the hourly rate in output:\n%s", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, Version) {
		t.Errorf("expected version %s, got %q", Version, stdout)
	}
}
