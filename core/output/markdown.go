package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter renders a report suitable for proposals and PR comments
type MarkdownFormatter struct {
	opts Options
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render produces output for the given report
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	r := report.Result
	cur := r.Currency
	var b strings.Builder

	fmt.Fprintf(&b, "## Website estimate: %s / %s\n\n", report.Input.ProjectType, report.Input.Tier)
	fmt.Fprintf(&b, "**Total:** %s for %s\n\n", Money(r.TotalCost, cur), Hours(r.TotalHours))

	b.WriteString("| Phase | Hours | Cost |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, item := range r.LineItems {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(item.Label), item.Hours.StringFixed(2), Money(item.Cost, cur))
	}
	for _, addon := range r.Addons {
		fmt.Fprintf(&b, "| %s (addon) | %s | %s |\n", escape(addon.Label), addon.Hours.StringFixed(2), Money(addon.Cost, cur))
	}
	fmt.Fprintf(&b, "| Contingency buffer | | %s |\n", Money(r.BufferCost, cur))
	fmt.Fprintf(&b, "| **Total** | **%s** | **%s** |\n\n", r.TotalHours.StringFixed(2), Money(r.TotalCost, cur))

	fmt.Fprintf(&b, "- Base hours: %s\n", r.BaseHours.StringFixed(2))
	fmt.Fprintf(&b, "- Effective hourly rate: %s\n", Money(r.EffectiveHourlyRate, cur))
	if r.MaintenanceCost.IsPositive() {
		fmt.Fprintf(&b, "- Maintenance (%s): %s h / %s per month, not included in the total\n",
			report.Input.Maintenance, r.MaintenanceHours.StringFixed(2), Money(r.MaintenanceCost, cur))
	}
	b.WriteString("\n")

	if !f.opts.HideRetainers && len(r.Retainers) > 0 {
		b.WriteString("### Retainer options\n\n")
		b.WriteString("| Package | Included hours | Monthly fee |\n")
		b.WriteString("|---|---:|---:|\n")
		for _, p := range r.Retainers {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(p.Name), p.IncludedHours.StringFixed(0), Money(p.MonthlyFee, cur))
		}
		b.WriteString("\n")
	}

	if !f.opts.HideAssumptions && len(r.Assumptions) > 0 {
		b.WriteString("### Assumptions\n\n")
		for _, a := range r.Assumptions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "<sub>Estimate `%s` · rate table %s · input `%s`</sub>\n", report.ID, report.RateTableVersion, report.InputHash)

	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
