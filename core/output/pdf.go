package output

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFFormatter renders a one-page proposal
type PDFFormatter struct {
	opts Options
}

// Format returns the format type
func (f *PDFFormatter) Format() Format {
	return FormatPDF
}

// Render produces output for the given report
func (f *PDFFormatter) Render(w io.Writer, report *Report) error {
	r := report.Result
	cur := r.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Website estimate", true)
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 12, tr(fmt.Sprintf("Website estimate: %s / %s", report.Input.ProjectType, report.Input.Tier)), "", 1, "L", true, 0, "")
	pdf.Ln(4)

	row := func(label, hours, cost string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(110, 7, tr(label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, hours, "B", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, cost, "B", 1, "R", false, 0, "")
	}

	pdf.SetTextColor(50, 50, 50)
	pdf.SetDrawColor(200, 200, 200)
	row("Phase", "Hours", "Cost", true)
	for _, item := range r.LineItems {
		row(item.Label, item.Hours.StringFixed(2), Money(item.Cost, cur), false)
	}
	for _, addon := range r.Addons {
		row(addon.Label+" (addon)", addon.Hours.StringFixed(2), Money(addon.Cost, cur), false)
	}
	row("Contingency buffer", "", Money(r.BufferCost, cur), false)
	row("Total", r.TotalHours.StringFixed(2), Money(r.TotalCost, cur), true)
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, "Effective hourly rate: "+Money(r.EffectiveHourlyRate, cur), "", 1, "L", false, 0, "")
	if r.MaintenanceCost.IsPositive() {
		line := fmt.Sprintf("Maintenance (%s): %s h / %s per month, not included in the total",
			report.Input.Maintenance, r.MaintenanceHours.StringFixed(2), Money(r.MaintenanceCost, cur))
		pdf.CellFormat(190, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if !f.opts.HideRetainers && len(r.Retainers) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Retainer options")
		pdf.Ln(8)
		row("Package", "Hours", "Monthly fee", true)
		for _, p := range r.Retainers {
			row(p.Name, p.IncludedHours.StringFixed(0), Money(p.MonthlyFee, cur), false)
		}
		pdf.Ln(6)
	}

	if !f.opts.HideAssumptions && len(r.Assumptions) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Assumptions")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		for _, a := range r.Assumptions {
			pdf.MultiCell(190, 5, tr("- "+a), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.Cell(0, 5, fmt.Sprintf("Estimate %s, rate table %s, input %s", report.ID, report.RateTableVersion, shortHash(report.InputHash)))

	return pdf.Output(w)
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}
