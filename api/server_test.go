package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sitecost/core/estimate"
	"sitecost/core/output"
	"sitecost/core/ratetable"
	"sitecost/core/types"
	"sitecost/internal/store"
)

const landingPageBody = `{
	"input": {
		"projectType": "landing_page",
		"tier": "simple",
		"hourlyRate": 95,
		"multipliers": {
			"design": "standard",
			"functionality": "basic",
			"content": "existing",
			"technical": "basic",
			"timeline": "standard"
		},
		"maintenance": "light"
	}
}`

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	service := estimate.NewService(ratetable.Default(), estimate.WithLogger(zap.NewNop()))

	opts := []Option{WithLogger(zap.NewNop())}
	if withStore {
		st, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { st.Close() })
		opts = append(opts, WithStore(st))
	}
	return NewServer("test", service, opts...)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestEstimateEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/estimate", landingPageBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report output.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(report.ID) != 36 {
		t.Errorf("expected a uuid estimate id, got %q", report.ID)
	}
	if report.InputHash == "" {
		t.Error("expected an input hash")
	}
	if len(report.Result.LineItems) != 5 {
		t.Errorf("expected 5 line items, got %d", len(report.Result.LineItems))
	}
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("2643.38")) {
		t.Errorf("unexpected total %s", report.Result.TotalCost)
	}

	// JSON field names are part of the stored wire format
	for _, field := range []string{`"totalCost"`, `"effectiveHourlyRate"`, `"lineItems"`, `"deterministicTotals"`} {
		if !strings.Contains(rec.Body.String(), field) {
			t.Errorf("expected response to contain %s", field)
		}
	}
}

func TestEstimateEndpointSameInputSameHash(t *testing.T) {
	s := newTestServer(t, false)

	var a, b output.Report
	_ = json.Unmarshal(do(t, s, http.MethodPost, "/estimate", landingPageBody).Body.Bytes(), &a)
	_ = json.Unmarshal(do(t, s, http.MethodPost, "/estimate", landingPageBody).Body.Bytes(), &b)

	if a.InputHash != b.InputHash {
		t.Errorf("expected equal hashes, got %s and %s", a.InputHash, b.InputHash)
	}
	if a.ID == b.ID {
		t.Error("expected distinct estimate ids")
	}
}

func TestEstimateEndpointErrors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
		msg    string
	}{
		{
			name:   "tier mismatch",
			body:   strings.Replace(landingPageBody, `"simple"`, `"standard_crud"`, 1),
			status: http.StatusBadRequest,
			code:   "TIER_MISMATCH",
			msg:    `Tier "standard_crud"`,
		},
		{
			name:   "negative rate",
			body:   strings.Replace(landingPageBody, `"hourlyRate": 95`, `"hourlyRate": -5`, 1),
			status: http.StatusBadRequest,
			code:   "INVALID_NUMERIC_INPUT",
			msg:    "hourlyRate",
		},
		{
			name:   "unknown option",
			body:   strings.Replace(landingPageBody, `"design": "standard"`, `"design": "baroque"`, 1),
			status: http.StatusBadRequest,
			code:   "INPUT_ERROR",
			msg:    "baroque",
		},
		{
			name:   "malformed json",
			body:   `{"input": `,
			status: http.StatusBadRequest,
			code:   "PARSING_ERROR",
			msg:    "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/estimate", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			detail := decodeError(t, rec)
			if detail.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, detail.Code)
			}
			if !strings.Contains(detail.Message, tt.msg) {
				t.Errorf("expected message to contain %q, got %q", tt.msg, detail.Message)
			}
		})
	}
}

func TestEstimateEndpointCurrency(t *testing.T) {
	s := newTestServer(t, false)
	body := strings.Replace(landingPageBody, `"maintenance": "light"
	}`, `"maintenance": "light"
	},
	"currency": "eur",
	"rates": {"base": "usd", "rates": {"eur": 0.5}}`, 1)

	rec := do(t, s, http.MethodPost, "/estimate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report output.Report
	_ = json.Unmarshal(rec.Body.Bytes(), &report)
	if report.Result.Currency != types.CurrencyEUR {
		t.Errorf("expected eur, got %s", report.Result.Currency)
	}
	if !report.Result.TotalCost.Equal(decimal.RequireFromString("1321.69")) {
		t.Errorf("expected 1321.69, got %s", report.Result.TotalCost)
	}
}

func TestConvertEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	var report output.Report
	_ = json.Unmarshal(do(t, s, http.MethodPost, "/estimate", landingPageBody).Body.Bytes(), &report)

	payload, _ := json.Marshal(ConvertRequest{
		Result: report.Result,
		To:     types.CurrencyGBP,
		Rates: &types.CurrencyRatesSnapshot{
			Base:  types.CurrencyUSD,
			Rates: map[types.Currency]decimal.Decimal{types.CurrencyGBP: decimal.NewFromInt(2)},
		},
	})
	rec := do(t, s, http.MethodPost, "/convert", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var converted types.CalculationResult
	_ = json.Unmarshal(rec.Body.Bytes(), &converted)
	if converted.Currency != types.CurrencyGBP || !converted.TotalCost.Equal(decimal.RequireFromString("5286.76")) {
		t.Errorf("unexpected conversion %s %s", converted.Currency, converted.TotalCost)
	}

	rec = do(t, s, http.MethodPost, "/convert", `{"result": {}, "to": "eur"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a source currency, got %d", rec.Code)
	}
}

func TestTablesEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/tables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summary ratetable.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(summary.Projects) != 4 || len(summary.Axes) != 5 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestStoredEstimates(t *testing.T) {
	s := newTestServer(t, true)

	body := strings.Replace(landingPageBody, "{\n\t\"input\"", "{\n\t\"save\": true,\n\t\"input\"", 1)
	rec := do(t, s, http.MethodPost, "/estimate", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var saved output.Report
	_ = json.Unmarshal(rec.Body.Bytes(), &saved)
	if loc := rec.Header().Get("Location"); loc != "/estimates/"+saved.ID {
		t.Errorf("unexpected location %q", loc)
	}

	rec = do(t, s, http.MethodGet, "/estimates/"+saved.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loaded output.Report
	_ = json.Unmarshal(rec.Body.Bytes(), &loaded)
	if loaded.ID != saved.ID || !loaded.Result.TotalCost.Equal(saved.Result.TotalCost) {
		t.Errorf("loaded report differs: %+v", loaded)
	}

	rec = do(t, s, http.MethodGet, "/estimates?inputHash="+saved.InputHash, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), saved.ID) {
		t.Errorf("expected listing to include %s, got %d %s", saved.ID, rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/estimates/does-not-exist", "")
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "NOT_FOUND" {
		t.Errorf("expected 404 NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/estimates?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad limit, got %d", rec.Code)
	}
}

func TestStorageDisabled(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/estimates/abc", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	body := strings.Replace(landingPageBody, "{\n\t\"input\"", "{\n\t\"save\": true,\n\t\"input\"", 1)
	rec = do(t, s, http.MethodPost, "/estimate", body)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when saving without storage, got %d", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/health", "")
	var health HealthResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &health)
	if rec.Code != http.StatusOK || health.Status != "healthy" || health.Storage != "disabled" {
		t.Errorf("unexpected health %d %+v", rec.Code, health)
	}

	rec = do(t, s, http.MethodGet, "/version", "")
	var version VersionResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &version)
	if version.Version != "test" || version.RateTableVersion != ratetable.DefaultVersion {
		t.Errorf("unexpected version %+v", version)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/estimate", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

type recordingAudit struct {
	entries []AuditEntry
}

func (r *recordingAudit) Log(e AuditEntry) {
	r.entries = append(r.entries, e)
}

func TestEstimateAudit(t *testing.T) {
	audit := &recordingAudit{}
	service := estimate.NewService(ratetable.Default(), estimate.WithLogger(zap.NewNop()))
	s := NewServer("test", service, WithLogger(zap.NewNop()), WithAuditLogger(audit))

	ok := do(t, s, http.MethodPost, "/estimate", landingPageBody)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", ok.Code)
	}
	bad := do(t, s, http.MethodPost, "/estimate", `{"input": {"projectType": "landing_page", "tier": "mvp", "hourlyRate": 95}}`)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.Code)
	}
	unsaved := do(t, s, http.MethodPost, "/estimate", strings.Replace(landingPageBody, `"input"`, `"save": true, "input"`, 1))
	if unsaved.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", unsaved.Code)
	}

	if len(audit.entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(audit.entries))
	}
	first := audit.entries[0]
	if !first.Success || first.EstimateID == "" || len(first.InputHash) != 64 || first.RequestID == "" {
		t.Errorf("unexpected success entry %+v", first)
	}
	if e := audit.entries[1]; e.Success || e.ErrorCode != "TIER_MISMATCH" {
		t.Errorf("unexpected failure entry %+v", e)
	}
	if e := audit.entries[2]; e.Success || e.Saved || e.ErrorCode != codeStorageDisabled {
		t.Errorf("unexpected storage entry %+v", e)
	}
}
