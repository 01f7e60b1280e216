// Package output renders estimates for people and machines.
package output

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"sitecost/core/currency"
	"sitecost/core/types"
	"sitecost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatPDF is a printable proposal
	FormatPDF Format = "pdf"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is an estimate together with what produced it
type Report struct {
	// ID identifies this estimate
	ID string `json:"id"`

	// InputHash fingerprints the input; equal inputs share it
	InputHash string `json:"inputHash"`

	// RateTableVersion is the version of the rate table used
	RateTableVersion string `json:"rateTableVersion"`

	// Input is the questionnaire answer set
	Input types.CalculationInput `json:"input"`

	// Result is the itemized estimate
	Result types.CalculationResult `json:"result"`

	// Rates is the snapshot the result was converted with, if any
	Rates *types.CurrencyRatesSnapshot `json:"rates,omitempty"`
}

// Options tunes what the human-readable formats include
type Options struct {
	HideAssumptions bool
	HideRetainers   bool
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCLI, FormatJSON, FormatMarkdown, FormatPDF:
		return f, nil
	case "":
		return FormatCLI, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", errors.Inputf("unknown output format %q", name)
	}
}

// NewFormatter returns the formatter for f
func NewFormatter(f Format, opts Options) (Formatter, error) {
	switch f {
	case FormatCLI:
		return &CLIFormatter{opts: opts}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}, nil
	case FormatMarkdown:
		return &MarkdownFormatter{opts: opts}, nil
	case FormatPDF:
		return &PDFFormatter{opts: opts}, nil
	default:
		return nil, errors.Inputf("unknown output format %q", string(f))
	}
}

// Money formats an amount in the precision of its currency
func Money(d decimal.Decimal, c types.Currency) string {
	code := strings.ToUpper(string(c))
	if code == "" {
		code = "USD"
	}
	return code + " " + d.StringFixed(currency.Precision(c))
}

// Hours formats an hour quantity
func Hours(d decimal.Decimal) string {
	return d.StringFixed(2) + " h"
}
