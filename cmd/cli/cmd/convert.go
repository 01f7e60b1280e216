package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sitecost/core/currency"
	"sitecost/core/output"
	"sitecost/core/types"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		amount    string
		from      string
		to        string
		ratesFile string
		asJSON    bool
	)

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an amount between currencies",
		Long: `Convert an amount using the static rate table, optionally overlaid
with a rate snapshot. A currency without a usable rate leaves the amount
unchanged apart from rounding.

Examples:
  sitecost convert --amount 2643.38 --to eur
  sitecost convert --amount 1000 --from gbp --to jpy --rates-file rates.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			snapshot, err := a.rates(ratesFile)
			if err != nil {
				return err
			}

			src := types.NormalizeCurrency(from)
			if src == "" {
				src = a.cfg.Pricing.Currency
			}
			dst := types.NormalizeCurrency(to)

			converted, ok := currency.NewConverter(snapshot, currency.WithLogger(a.logger)).Amount(value, src, dst)
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s no rate between %s and %s, amount left unconverted\n",
					warningText("!"), src, dst)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"amount":    converted,
					"from":      src,
					"to":        dst,
					"converted": ok,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", output.Money(value, src), output.Money(converted, dst))
			return err
		},
	}

	f := convertCmd.Flags()
	f.StringVarP(&amount, "amount", "a", "", "amount to convert")
	f.StringVar(&from, "from", "", "source currency (default from config)")
	f.StringVar(&to, "to", "", "target currency")
	f.StringVar(&ratesFile, "rates-file", "", "JSON or YAML currency rate snapshot")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	_ = convertCmd.MarkFlagRequired("amount")
	_ = convertCmd.MarkFlagRequired("to")

	return convertCmd
}
