package output

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// CLIFormatter renders boxed terminal tables
type CLIFormatter struct {
	opts Options
}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render produces output for the given report
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	r := report.Result
	cur := r.Currency

	header := fmt.Sprintf("%s / %s", report.Input.ProjectType, report.Input.Tier)
	if _, err := fmt.Fprintln(w, pterm.FgLightCyan.Sprint(header)); err != nil {
		return err
	}

	phases := pterm.TableData{{"Phase", "Hours", "Cost"}}
	for _, item := range r.LineItems {
		phases = append(phases, []string{item.Label, Hours(item.Hours), Money(item.Cost, cur)})
	}
	for _, addon := range r.Addons {
		phases = append(phases, []string{"+ " + addon.Label, Hours(addon.Hours), Money(addon.Cost, cur)})
	}
	phases = append(phases,
		[]string{"Contingency buffer", "", Money(r.BufferCost, cur)},
		[]string{pterm.Bold.Sprint("Total"), Hours(r.TotalHours), pterm.Bold.Sprint(Money(r.TotalCost, cur))},
	)
	if err := renderTable(w, phases); err != nil {
		return err
	}

	summary := pterm.TableData{
		{"Base hours", Hours(r.BaseHours)},
		{"Effective hourly rate", Money(r.EffectiveHourlyRate, cur)},
	}
	if r.MaintenanceCost.IsPositive() {
		summary = append(summary, []string{
			fmt.Sprintf("Maintenance (%s, monthly)", report.Input.Maintenance),
			fmt.Sprintf("%s / %s", Hours(r.MaintenanceHours), Money(r.MaintenanceCost, cur)),
		})
	}
	if err := renderTable(w, summary); err != nil {
		return err
	}

	if !f.opts.HideRetainers && len(r.Retainers) > 0 {
		retainers := pterm.TableData{{"Retainer", "Included hours", "Monthly fee"}}
		for _, p := range r.Retainers {
			retainers = append(retainers, []string{p.Name, Hours(p.IncludedHours), Money(p.MonthlyFee, cur)})
		}
		if err := renderTable(w, retainers); err != nil {
			return err
		}
	}

	if !f.opts.HideAssumptions {
		for _, a := range r.Assumptions {
			if _, err := fmt.Fprintf(w, "  • %s\n", a); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "%s\n", pterm.FgGray.Sprintf("estimate %s · input %s", report.ID, report.InputHash))
	return err
}

func renderTable(w io.Writer, data pterm.TableData) error {
	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// RenderTables prints the project types, tiers and multiplier options
func RenderTables(w io.Writer, rows [][]string) error {
	return renderTable(w, append(pterm.TableData{{"Kind", "Key", "Detail"}}, rows...))
}
