package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitecost/core/estimate"
	"sitecost/core/output"
	"sitecost/core/types"
)

type batchOptions struct {
	parallel  int
	ratesFile string
	rateTable string
	format    string
	output    string
	save      bool
	quiet     bool
}

func newBatchCmd(a *app) *cobra.Command {
	o := &batchOptions{}

	batchCmd := &cobra.Command{
		Use:   "batch <requests-file>",
		Short: "Estimate many projects from a JSON or YAML list",
		Long: `Estimate every request in a JSON or YAML list concurrently.

A failing request does not stop the batch; its error code is reported in
its row. The command exits non-zero when any request failed.

Examples:
  sitecost batch requests.yaml
  sitecost batch requests.json --parallel 8 --format json --output results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, o, args[0])
		},
	}

	f := batchCmd.Flags()
	f.IntVarP(&o.parallel, "parallel", "j", 4, "number of estimates computed concurrently")
	f.StringVar(&o.ratesFile, "rates-file", "", "JSON or YAML currency rate snapshot")
	f.StringVar(&o.rateTable, "rate-table", "", "HCL rate table replacing the built-in one")
	f.StringVarP(&o.format, "format", "f", "cli", "output format (cli, json)")
	f.StringVarP(&o.output, "output", "o", "", "write output to a file instead of stdout")
	f.BoolVar(&o.save, "save", false, "save successful estimates to the configured store")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "hide the progress bar")

	return batchCmd
}

func runBatch(cmd *cobra.Command, a *app, o *batchOptions, path string) error {
	format, err := output.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if format != output.FormatCLI && format != output.FormatJSON {
		return fmt.Errorf("batch output supports cli and json, not %s", format)
	}

	reqs, err := estimate.LoadRequests(path)
	if err != nil {
		return err
	}
	service, err := a.service(o.rateTable, o.ratesFile)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(reqs),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("estimating"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(!o.quiet),
	)
	result := service.Batch(cmd.Context(), reqs, o.parallel, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	if o.save && result.SuccessCount > 0 {
		st, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		for _, item := range result.Items {
			if item.Report == nil {
				continue
			}
			if err := st.Save(cmd.Context(), item.Report); err != nil {
				return err
			}
		}
	}

	a.logger.Info("batch finished",
		zap.String("file", path),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
	)

	err = writeOutput(cmd.OutOrStdout(), o.output, func(w io.Writer) error {
		if format == output.FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		return renderBatch(w, result)
	})
	if err != nil {
		return err
	}

	if result.FailureCount > 0 {
		return fmt.Errorf("%d of %d estimates failed", result.FailureCount, len(result.Items))
	}
	return nil
}

func renderBatch(w io.Writer, result *estimate.BatchResult) error {
	data := pterm.TableData{{"#", "Project", "Tier", "Hours", "Total", "Status"}}
	for _, item := range result.Items {
		row := []string{fmt.Sprint(item.Index + 1), "", "", "", "", ""}
		if item.Report == nil {
			row[5] = errorText(item.ErrorCode)
		} else {
			r := item.Report.Result
			row[1] = string(item.Report.Input.ProjectType)
			row[2] = string(item.Report.Input.Tier)
			row[3] = output.Hours(r.TotalHours)
			row[4] = output.Money(r.TotalCost, r.Currency)
			row[5] = successText("ok")
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)

	currencies := make([]types.Currency, 0, len(result.Totals))
	for c := range result.Totals {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	for _, c := range currencies {
		fmt.Fprintf(w, "Total %s\n", output.Money(result.Totals[c], c))
	}

	summary := fmt.Sprintf("%d succeeded, %d failed", result.SuccessCount, result.FailureCount)
	if result.FailureCount > 0 {
		summary = warningText(summary)
	}
	_, err = fmt.Fprintln(w, summary)
	return err
}
