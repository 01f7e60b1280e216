package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sitecost/core/estimate"
	"sitecost/core/output"
	"sitecost/core/types"
)

type estimateOptions struct {
	input string

	projectType   string
	tier          string
	rate          string
	design        string
	functionality string
	content       string
	technical     string
	timeline      string
	maintenance   string
	addons        []string
	assumptions   string

	currency  string
	ratesFile string
	rateTable string
	format    string
	output    string
	save      bool
}

func newEstimateCmd(a *app) *cobra.Command {
	o := &estimateOptions{}

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of a website project",
		Long: `Price a website project from questionnaire answers.

Answers come from flags or from a JSON/YAML request file (--input). Omitted
complexity answers default to the cheapest option on each axis, and an
omitted rate falls back to the configured hourly rate.

Examples:
  sitecost estimate --project-type landing_page --tier simple --rate 95
  sitecost estimate --project-type web_app --tier mvp --timeline rush --addon auth_roles
  sitecost estimate --input request.yaml --currency eur --format pdf --output quote.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, a, o)
		},
	}

	f := estimateCmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "JSON or YAML request file")
	f.StringVarP(&o.projectType, "project-type", "p", "", "project type (landing_page, marketing_site, ecommerce, web_app)")
	f.StringVarP(&o.tier, "tier", "t", "", "tier for the project type")
	f.StringVarP(&o.rate, "rate", "r", "", "hourly rate (default from config)")
	f.StringVar(&o.design, "design", string(types.DesignStandard), "design complexity")
	f.StringVar(&o.functionality, "functionality", string(types.FunctionalityBasic), "functionality complexity")
	f.StringVar(&o.content, "content", string(types.ContentExisting), "content complexity")
	f.StringVar(&o.technical, "technical", string(types.TechnicalBasic), "technical complexity")
	f.StringVar(&o.timeline, "timeline", string(types.TimelineStandard), "delivery timeline")
	f.StringVarP(&o.maintenance, "maintenance", "m", string(types.MaintenanceNone), "maintenance tier (none, light, standard, retainer)")
	f.StringSliceVar(&o.addons, "addon", nil, "optional addon key (repeatable)")
	f.StringVar(&o.assumptions, "assumptions", "", "free-text assumptions to carry into the estimate")
	f.StringVarP(&o.currency, "currency", "c", "", "currency to report in (default from config)")
	f.StringVar(&o.ratesFile, "rates-file", "", "JSON or YAML currency rate snapshot")
	f.StringVar(&o.rateTable, "rate-table", "", "HCL rate table replacing the built-in one")
	f.StringVarP(&o.format, "format", "f", "", "output format (cli, json, markdown, pdf)")
	f.StringVarP(&o.output, "output", "o", "", "write output to a file instead of stdout")
	f.BoolVar(&o.save, "save", false, "save the estimate to the configured store")

	return estimateCmd
}

func runEstimate(cmd *cobra.Command, a *app, o *estimateOptions) error {
	req, err := o.request(cmd, a)
	if err != nil {
		return err
	}

	service, err := a.service(o.rateTable, o.ratesFile)
	if err != nil {
		return err
	}

	report, err := service.Estimate(req)
	if err != nil {
		return err
	}

	if o.save {
		st, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(cmd.Context(), report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s saved estimate %s\n", successText("✓"), report.ID)
	}

	return render(cmd.OutOrStdout(), a, o.format, o.output, report)
}

// request builds the estimate request from --input or from flags. Flags
// that were set explicitly override the file.
func (o *estimateOptions) request(cmd *cobra.Command, a *app) (estimate.Request, error) {
	var req estimate.Request
	if o.input != "" {
		loaded, err := estimate.LoadRequest(o.input)
		if err != nil {
			return req, err
		}
		req = loaded
	} else {
		req.Input = types.CalculationInput{
			Multipliers: types.BaselineMultipliers(),
			Maintenance: types.MaintenanceNone,
		}
	}

	flags := cmd.Flags()
	override := func(name string, apply func()) {
		if o.input == "" || flags.Changed(name) {
			apply()
		}
	}

	override("project-type", func() { req.Input.ProjectType = types.ProjectType(o.projectType) })
	override("tier", func() { req.Input.Tier = types.Tier(o.tier) })
	override("design", func() { req.Input.Multipliers.Design = types.Option(o.design) })
	override("functionality", func() { req.Input.Multipliers.Functionality = types.Option(o.functionality) })
	override("content", func() { req.Input.Multipliers.Content = types.Option(o.content) })
	override("technical", func() { req.Input.Multipliers.Technical = types.Option(o.technical) })
	override("timeline", func() { req.Input.Multipliers.Timeline = types.Option(o.timeline) })
	override("maintenance", func() { req.Input.Maintenance = types.MaintenanceTier(o.maintenance) })
	override("addon", func() { req.Input.Addons = o.addons })
	override("assumptions", func() { req.Input.Assumptions = o.assumptions })

	if o.input == "" && req.Input.ProjectType == "" {
		return req, fmt.Errorf("--project-type is required without --input")
	}
	if o.input == "" && req.Input.Tier == "" {
		return req, fmt.Errorf("--tier is required without --input")
	}

	switch {
	case o.rate != "":
		rate, err := decimal.NewFromString(o.rate)
		if err != nil {
			return req, fmt.Errorf("invalid --rate %q: %w", o.rate, err)
		}
		req.Input.HourlyRate = rate
	case o.input == "":
		req.Input.HourlyRate = a.cfg.Pricing.HourlyRateDecimal()
	}

	if o.currency != "" {
		req.Currency = types.NormalizeCurrency(o.currency)
	}
	return req, nil
}

// render writes report in format, falling back to the configured format
func render(w io.Writer, a *app, format, path string, report *output.Report) error {
	if format == "" {
		format = a.cfg.Output.Format
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(f, output.Options{
		HideAssumptions: a.cfg.Output.HideAssumptions,
		HideRetainers:   a.cfg.Output.HideRetainers,
	})
	if err != nil {
		return err
	}
	return writeOutput(w, path, func(w io.Writer) error {
		return formatter.Render(w, report)
	})
}
