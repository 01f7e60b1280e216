package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sitecost/core/currency"
	"sitecost/core/types"
)

func newRatesCmd(a *app) *cobra.Command {
	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Currency rate management",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		ratesFile string
		asJSON    bool
	)
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the working currency rates",
		Long: `Print the rates conversions use: the static table overlaid with the
snapshot from --rates-file or the configured rates file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := a.rates(ratesFile)
			if err != nil {
				return err
			}
			if snapshot == nil {
				static := currency.StaticSnapshot()
				snapshot = &static
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}
			return renderRates(cmd.OutOrStdout(), snapshot)
		},
	}
	showCmd.Flags().StringVar(&ratesFile, "rates-file", "", "JSON or YAML currency rate snapshot")
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")

	ratesCmd.AddCommand(showCmd)
	return ratesCmd
}

func renderRates(w io.Writer, snapshot *types.CurrencyRatesSnapshot) error {
	rates := currency.EnsureRates(snapshot)
	codes := make([]types.Currency, 0, len(rates))
	for c := range rates {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	data := pterm.TableData{{"Currency", "Rate", "Decimals"}}
	for _, c := range codes {
		data = append(data, []string{string(c), rates[c].String(), fmt.Sprint(currency.Precision(c))})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}

	header := fmt.Sprintf("Base %s, source %s", snapshot.Base, snapshot.Source)
	if !snapshot.FetchedAt.IsZero() {
		header += ", fetched " + snapshot.FetchedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	if snapshot.Stale {
		header += " " + warningText("(stale)")
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", header, table)
	return err
}
