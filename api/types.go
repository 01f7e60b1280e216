// Package api - API types for website estimation
// These types define the contract for the HTTP endpoints.
package api

import (
	"sitecost/core/estimate"
	"sitecost/core/types"
)

// EstimateRequest is the input to POST /estimate
type EstimateRequest struct {
	estimate.Request

	// Save stores the report when the server has storage configured
	Save bool `json:"save,omitempty"`
}

// ConvertRequest is the input to POST /convert
type ConvertRequest struct {
	Result types.CalculationResult       `json:"result"`
	From   types.Currency                `json:"from"`
	To     types.Currency                `json:"to"`
	Rates  *types.CurrencyRatesSnapshot `json:"rates,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Storage string `json:"storage"`
	Time    string `json:"time"`
}

// VersionResponse is returned by GET /version
type VersionResponse struct {
	Version          string `json:"version"`
	Engine           string `json:"engine"`
	APIVersion       string `json:"api_version"`
	RateTableVersion string `json:"rate_table_version"`
}
