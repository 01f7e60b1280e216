package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"sitecost/core/output"
	"sitecost/core/ratetable"
)

func newTablesCmd(a *app) *cobra.Command {
	var (
		rateTable string
		asJSON    bool
	)

	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "List project types, tiers, addons and complexity options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table(rateTable)
			if err != nil {
				return err
			}
			summary := table.Summarize()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate table %s\n", summary.Version)
			return output.RenderTables(cmd.OutOrStdout(), tableRows(summary))
		},
	}

	tablesCmd.Flags().StringVar(&rateTable, "rate-table", "", "HCL rate table replacing the built-in one")
	tablesCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return tablesCmd
}

func tableRows(s ratetable.Summary) [][]string {
	var rows [][]string
	for _, p := range s.Projects {
		for _, t := range p.Tiers {
			rows = append(rows, []string{
				"tier",
				fmt.Sprintf("%s/%s", p.Key, t.Key),
				fmt.Sprintf("%s, %s base hours, %s%% buffer", p.Label, t.BaseHours, t.BufferPercent),
			})
		}
		for _, addon := range p.Addons {
			detail := fmt.Sprintf("%s, %s hours", addon.Label, addon.Hours)
			if addon.Default {
				detail += ", included"
			}
			rows = append(rows, []string{"addon", fmt.Sprintf("%s/%s", p.Key, addon.Key), detail})
		}
	}
	for _, axis := range s.Axes {
		for _, opt := range axis.Options {
			rows = append(rows, []string{
				string(axis.Axis),
				string(opt.Key),
				fmt.Sprintf("hours x%s, rate x%s", opt.HoursFactor, opt.RateFactor),
			})
		}
	}
	for _, m := range s.Maintenance {
		detail := "not included"
		switch {
		case m.FlatHours.IsPositive():
			detail = fmt.Sprintf("%s hours monthly", m.FlatHours)
		case m.Percent.IsPositive():
			detail = fmt.Sprintf("%s%% of base hours monthly", m.Percent)
		}
		rows = append(rows, []string{"maintenance", string(m.Tier), detail})
	}
	for _, p := range s.Phases {
		rows = append(rows, []string{"phase", p.Key, fmt.Sprintf("%s, %s%% of hours", p.Label, p.Share)})
	}
	rows = append(rows, []string{"overhead", "project_management", fmt.Sprintf("hours x%s", s.OverheadFactor)})
	return rows
}
