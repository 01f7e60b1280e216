package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sitecost/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		inputHash string
		limit     int
		asJSON    bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved estimates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(cmd.Context(), inputHash, limit)
			if err != nil {
				return err
			}
			if asJSON {
				if summaries == nil {
					summaries = []store.Summary{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			if len(summaries) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No saved estimates.")
				return err
			}

			data := pterm.TableData{{"ID", "Created", "Project", "Tier", "Total", "Rate table"}}
			for _, s := range summaries {
				data = append(data, []string{
					s.ID,
					s.CreatedAt.UTC().Format("2006-01-02 15:04"),
					s.ProjectType,
					s.Tier,
					strings.ToUpper(s.Currency) + " " + s.TotalCost,
					s.RateTableVersion,
				})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
	listCmd.Flags().StringVar(&inputHash, "input-hash", "", "only estimates of this input")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of estimates")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var (
		format string
		out    string
	)
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render a saved estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a, format, out, report)
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "", "output format (cli, json, markdown, pdf)")
	showCmd.Flags().StringVarP(&out, "output", "o", "", "write output to a file instead of stdout")

	historyCmd.AddCommand(listCmd, showCmd)
	return historyCmd
}
